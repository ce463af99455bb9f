package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/cropcompass/crop-recommendation-service/internal/adapter/http"
	kafkaadapter "github.com/cropcompass/crop-recommendation-service/internal/adapter/kafka"
	"github.com/cropcompass/crop-recommendation-service/internal/adapter/store"
	"github.com/cropcompass/crop-recommendation-service/internal/adapter/weather"
	"github.com/cropcompass/crop-recommendation-service/internal/config"
	"github.com/cropcompass/crop-recommendation-service/internal/engine"
	"github.com/cropcompass/crop-recommendation-service/internal/observability"
	"github.com/cropcompass/crop-recommendation-service/internal/refstore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Crop reference data: embedded seed table unless a path is configured.
	var crops *refstore.Store
	if cfg.CropDataPath != "" {
		crops, err = refstore.LoadFile(cfg.CropDataPath)
	} else {
		crops, err = refstore.Load()
	}
	if err != nil {
		logger.Error("failed to load crop reference data", "error", err)
		os.Exit(1)
	}
	logger.Info("crop reference data loaded", "crops", crops.Len())

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	client := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, cfg.WeatherHistoryDays, logger, metrics)
	cached := weather.NewCachedSource(client, cfg.WeatherCacheSize, cfg.WeatherCacheMaxAge, metrics)

	// Event publishing is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var pub engine.Publisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger, metrics)
		pub = kafkaWriter
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	eng := engine.New(crops, logger, metrics, engine.Options{
		Workers:                    cfg.ScoringWorkers,
		DroughtRainfallThresholdMM: cfg.DroughtRainfallThresholdMM,
	})
	svc := engine.NewService(eng, db, cached, pub, logger, cfg.TopN)

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, crops, db, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
