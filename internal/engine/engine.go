// Package engine orchestrates scoring runs: it filters candidate crops,
// scores the survivors concurrently, ranks them, and assembles the final
// recommendation records.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
	"github.com/cropcompass/crop-recommendation-service/internal/observability"
)

// CandidateSource provides the immutable crop reference table.
type CandidateSource interface {
	AllCandidates() []domain.CropReference
	Lookup(id int64) (domain.CropReference, error)
}

// Options tunes a scoring engine.
type Options struct {
	// Workers bounds concurrent candidate scoring. Zero means one worker
	// per CPU.
	Workers int

	// DroughtRainfallThresholdMM is forwarded to profile derivation.
	DroughtRainfallThresholdMM float64
}

// Engine scores one farm against all candidate crops. It holds no mutable
// state beyond readiness, so concurrent Recommend calls are safe.
type Engine struct {
	refs    CandidateSource
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    Options
	ready   atomic.Bool
}

// New creates an Engine over the given reference source.
func New(refs CandidateSource, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Engine {
	e := &Engine{
		refs:    refs,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
	if len(refs.AllCandidates()) > 0 {
		e.ready.Store(true)
		metrics.EngineReady.Set(1)
	}
	return e
}

// CheckReadiness returns nil when the engine has a non-empty reference table.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("crop reference table is empty")
	}
	return nil
}

// scored pairs a candidate with its computed scores before ranking.
type scored struct {
	crop        domain.CropReference
	suitability domain.SuitabilityResult
	risk        float64
	confidence  int
	profit      float64
}

// Recommend scores the farm against every candidate crop and returns the
// ranked recommendations. today anchors all date-dependent fields so the
// computation stays deterministic; topN <= 0 returns every qualifying
// candidate. Zero qualifying candidates is a valid empty result, not an
// error.
func (e *Engine) Recommend(ctx context.Context, farm domain.Farm, weather domain.WeatherProfile, today time.Time, topN int) ([]domain.Recommendation, error) {
	start := time.Now()
	e.metrics.ScoringRuns.Inc()

	profile, err := domain.BuildProfile(farm, weather, domain.ProfileConfig{
		DroughtRainfallThresholdMM: e.opts.DroughtRainfallThresholdMM,
	})
	if err != nil {
		e.metrics.ScoringErrors.Inc()
		return nil, err
	}

	// Soil is a hard filter: crops that reject the farm's soil never reach
	// the scorers.
	candidates := e.refs.AllCandidates()
	pass := make([]domain.CropReference, 0, len(candidates))
	for _, c := range candidates {
		if c.AcceptsSoil(profile.SoilType) {
			pass = append(pass, c)
			continue
		}
		e.metrics.CandidatesFiltered.Inc()
	}

	results := e.scoreAll(ctx, profile, pass)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Deterministic total order: confidence desc, profit desc, id asc.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.confidence != b.confidence {
			return a.confidence > b.confidence
		}
		if a.profit != b.profit {
			return a.profit > b.profit
		}
		return a.crop.ID < b.crop.ID
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}

	recs := make([]domain.Recommendation, len(results))
	for i, r := range results {
		recs[i] = e.assemble(farm, weather, today, r)
	}

	e.metrics.CandidatesScored.Add(float64(len(pass)))
	e.metrics.RecommendationsReturned.Observe(float64(len(recs)))
	e.metrics.ScoringDuration.Observe(time.Since(start).Seconds())

	e.logger.Debug("scoring run complete",
		"farm_id", farm.ID,
		"candidates", len(candidates),
		"filtered", len(candidates)-len(pass),
		"returned", len(recs),
	)

	return recs, nil
}

// scoreAll evaluates candidates across a bounded worker pool. Workers share
// only read-only inputs and write to disjoint slice slots, so no locking is
// needed; ordering is imposed afterwards by the sort.
func (e *Engine) scoreAll(ctx context.Context, profile domain.EnvironmentalProfile, pass []domain.CropReference) []scored {
	results := make([]scored, len(pass))
	if len(pass) == 0 {
		return results
	}

	workers := e.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pass) {
		workers = len(pass)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = scoreCandidate(profile, pass[i])
			}
		}()
	}

	for i := range pass {
		select {
		case indexes <- i:
		case <-ctx.Done():
			close(indexes)
			wg.Wait()
			return results
		}
	}
	close(indexes)
	wg.Wait()
	return results
}

func scoreCandidate(profile domain.EnvironmentalProfile, crop domain.CropReference) scored {
	suit := domain.ScoreSuitability(profile, crop)
	risk := domain.ScoreRisk(profile, crop, suit.Total)
	return scored{
		crop:        crop,
		suitability: suit,
		risk:        risk,
		confidence:  domain.ConfidenceScore(suit.Total, risk),
		profit:      domain.ProfitProjection(crop, suit.Total, risk),
	}
}

func (e *Engine) assemble(farm domain.Farm, weather domain.WeatherProfile, today time.Time, r scored) domain.Recommendation {
	planting := domain.PlantingDate(r.crop, today)
	return domain.Recommendation{
		ID:               domain.RecommendationID(farm.ID, r.crop.ID, today, r.confidence),
		FarmID:           farm.ID,
		CropID:           r.crop.ID,
		CropName:         r.crop.Name("en"),
		SuitabilityScore: r.suitability.Total,
		RiskScore:        r.risk,
		RiskLevel:        domain.LevelForRisk(r.risk),
		ConfidenceScore:  r.confidence,
		ProfitProjection: r.profit,
		PlantingDate:     planting,
		HarvestDate:      domain.HarvestDate(r.crop, planting),
		Scores: domain.ScoreBreakdown{
			PHMatch:      r.suitability.PHMatch,
			ClimateMatch: r.suitability.ClimateMatch,
			WaterMatch:   r.suitability.WaterMatch,
		},
		Weather:     weather,
		GeneratedAt: today,
	}
}
