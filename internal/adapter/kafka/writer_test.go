package kafka

import (
	"testing"
	"time"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	generated := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	rec := domain.Recommendation{
		ID:               "rec-1a2b3c4d",
		FarmID:           42,
		CropID:           1,
		CropName:         "Wheat",
		SuitabilityScore: 92,
		RiskScore:        12.5,
		RiskLevel:        domain.RiskLow,
		ConfidenceScore:  90,
		GeneratedAt:      generated,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("rec-1a2b3c4d"), msg.Key)
	assert.Contains(t, string(msg.Value), `"crop_name":"Wheat"`)
	assert.Contains(t, string(msg.Value), `"confidence_score":90`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "farm_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("42"), msg.Headers[0].Value)
	assert.Equal(t, "risk_level", msg.Headers[1].Key)
	assert.Equal(t, []byte("low"), msg.Headers[1].Value)
	assert.Equal(t, "generated_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(generated.Format(time.RFC3339)), msg.Headers[2].Value)
}
