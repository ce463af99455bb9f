package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
	"github.com/google/uuid"
)

// FarmStore provides farm lookup and append-only recommendation
// persistence.
type FarmStore interface {
	GetFarm(ctx context.Context, id int64) (domain.Farm, error)
	SaveRun(ctx context.Context, run domain.ScoringRun) error
	ListByFarm(ctx context.Context, farmID int64) ([]domain.Recommendation, error)
}

// WeatherSource fetches the weather profile for a location.
type WeatherSource interface {
	FetchProfile(ctx context.Context, lat, lon float64) (domain.WeatherProfile, error)
}

// Publisher delivers recommendation events to downstream consumers.
type Publisher interface {
	PublishRecommendations(ctx context.Context, recs []domain.Recommendation) error
}

// Service wires the engine to its collaborators: it loads the farm, fetches
// weather, runs a scoring pass, persists the run, and publishes events.
type Service struct {
	engine  *Engine
	farms   FarmStore
	weather WeatherSource
	pub     Publisher // nil disables publishing
	logger  *slog.Logger
	topN    int
}

// NewService creates a Service. pub may be nil when event publishing is
// disabled.
func NewService(engine *Engine, farms FarmStore, weather WeatherSource, pub Publisher, logger *slog.Logger, topN int) *Service {
	return &Service{
		engine:  engine,
		farms:   farms,
		weather: weather,
		pub:     pub,
		logger:  logger,
		topN:    topN,
	}
}

// RunForFarm executes one scoring run for a farm and persists the result as
// a new append-only run. The returned slice is in ranked order.
func (s *Service) RunForFarm(ctx context.Context, farmID int64) ([]domain.Recommendation, error) {
	farm, err := s.farms.GetFarm(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("load farm %d: %w", farmID, err)
	}

	weather, err := s.weather.FetchProfile(ctx, farm.Lat, farm.Lon)
	if err != nil {
		return nil, fmt.Errorf("fetch weather for farm %d: %w", farmID, err)
	}

	today := domain.Now().UTC().Truncate(24 * time.Hour)
	recs, err := s.engine.Recommend(ctx, farm, weather, today, s.topN)
	if err != nil {
		return nil, err
	}

	run := domain.ScoringRun{
		RunID:           uuid.NewString(),
		FarmID:          farmID,
		Today:           today,
		Recommendations: recs,
	}
	if err := s.farms.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("persist scoring run: %w", err)
	}

	// Publishing is best-effort: a broker outage must not fail the run the
	// caller already has persisted.
	if s.pub != nil && len(recs) > 0 {
		if err := s.pub.PublishRecommendations(ctx, recs); err != nil {
			s.logger.Warn("publish recommendations failed",
				"farm_id", farmID,
				"run_id", run.RunID,
				"error", err,
			)
		}
	}

	s.logger.Info("scoring run persisted",
		"farm_id", farmID,
		"run_id", run.RunID,
		"recommendations", len(recs),
	)
	return recs, nil
}

// History returns previously persisted recommendations for a farm, newest
// run first.
func (s *Service) History(ctx context.Context, farmID int64) ([]domain.Recommendation, error) {
	return s.farms.ListByFarm(ctx, farmID)
}
