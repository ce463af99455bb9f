//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkaadapter "github.com/cropcompass/crop-recommendation-service/internal/adapter/kafka"
	"github.com/cropcompass/crop-recommendation-service/internal/config"
	"github.com/cropcompass/crop-recommendation-service/internal/domain"
	"github.com/cropcompass/crop-recommendation-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-crop-recommendations"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func sampleRecommendation(farmID, cropID int64, recID string) domain.Recommendation {
	return domain.Recommendation{
		ID:               recID,
		FarmID:           farmID,
		CropID:           cropID,
		CropName:         "Wheat",
		SuitabilityScore: 92,
		RiskScore:        12.5,
		RiskLevel:        domain.RiskLow,
		ConfidenceScore:  90,
		ProfitProjection: 36432.18,
		PlantingDate:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		HarvestDate:      time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC),
		GeneratedAt:      time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
}

// TestPublishRecommendations verifies the writer round-trips a scoring run's
// events through real Kafka with the expected key, headers, and payload.
func TestPublishRecommendations(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testSinkTopic,
	}

	writer := kafkaadapter.NewWriter(cfg, discardLogger(), observability.NewMetricsForTesting())
	t.Cleanup(func() { _ = writer.Close() })

	recs := []domain.Recommendation{
		sampleRecommendation(42, 1, "rec-1a2b3c4d"),
		sampleRecommendation(42, 3, "rec-5e6f7a8b"),
	}
	require.NoError(t, writer.PublishRecommendations(ctx, recs))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make(map[string]domain.Recommendation, len(recs))
	for len(received) < len(recs) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "42", headers["farm_id"])
		assert.Equal(t, "low", headers["risk_level"])
		_, err = time.Parse(time.RFC3339, headers["generated_at"])
		assert.NoError(t, err, "generated_at should be valid RFC3339")

		var rec domain.Recommendation
		require.NoError(t, json.Unmarshal(msg.Value, &rec))
		assert.Equal(t, string(msg.Key), rec.ID, "message keyed by recommendation id")
		received[rec.ID] = rec
	}

	require.Contains(t, received, "rec-1a2b3c4d")
	require.Contains(t, received, "rec-5e6f7a8b")
	assert.Equal(t, int64(1), received["rec-1a2b3c4d"].CropID)
	assert.Equal(t, int64(3), received["rec-5e6f7a8b"].CropID)
}
