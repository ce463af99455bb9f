package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Persistence.
	DBPath string

	// Crop reference data. Empty means the embedded seed table.
	CropDataPath string

	// Weather collaborator.
	WeatherBaseURL     string
	WeatherTimeout     time.Duration
	WeatherCacheSize   int
	WeatherCacheMaxAge time.Duration
	WeatherHistoryDays int

	// Scoring.
	DroughtRainfallThresholdMM float64
	TopN                       int // 0 returns all qualifying candidates
	ScoringWorkers             int

	// Kafka event publishing.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	weatherCacheMaxAge, err := parseDuration("WEATHER_CACHE_MAX_AGE", "15m")
	if err != nil {
		return nil, err
	}

	weatherCacheSize, err := parseInt("WEATHER_CACHE_SIZE", 1000, 1)
	if err != nil {
		return nil, err
	}
	weatherHistoryDays, err := parseInt("WEATHER_HISTORY_DAYS", 90, 1)
	if err != nil {
		return nil, err
	}
	topN, err := parseInt("TOP_N", 0, 0)
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("SCORING_WORKERS", 4, 1)
	if err != nil {
		return nil, err
	}

	droughtThreshold, err := parseFloat("DROUGHT_RAINFALL_MM", 40, 0)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DBPath:       envOrDefault("DB_PATH", "cropcompass.db"),
		CropDataPath: os.Getenv("CROP_DATA_PATH"),

		WeatherBaseURL:     envOrDefault("WEATHER_BASE_URL", "http://localhost:3001/api"),
		WeatherTimeout:     weatherTimeout,
		WeatherCacheSize:   weatherCacheSize,
		WeatherCacheMaxAge: weatherCacheMaxAge,
		WeatherHistoryDays: weatherHistoryDays,

		DroughtRainfallThresholdMM: droughtThreshold,
		TopN:                       topN,
		ScoringWorkers:             workers,

		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_SINK_TOPIC", "crop-recommendations"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.WeatherBaseURL == "" {
		return nil, errors.New("WEATHER_BASE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseInt(key string, fallback, min int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

func parseFloat(key string, fallback, min float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < min {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return f, nil
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
