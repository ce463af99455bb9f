// Package store persists farms and scoring runs in SQLite via GORM.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
)

// FarmRecord is the farms table row.
type FarmRecord struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	OwnerID     int64   `gorm:"index"`
	Name        string  `gorm:"not null"`
	SizeAcres   float64
	SoilType    string
	PHLevel     *float64
	WaterSource string
	Lat         float64
	Lon         float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (FarmRecord) TableName() string { return "farms" }

// RecommendationRecord is one recommendation row. Rows are append-only: each
// scoring run inserts a fresh batch under a new RunID and never edits old
// rows. RecID is deterministic and repeats across same-day reruns, so
// uniqueness is scoped to the run.
type RecommendationRecord struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	RecID            string `gorm:"uniqueIndex:idx_run_rec;not null"`
	RunID            string `gorm:"uniqueIndex:idx_run_rec;index;not null"`
	FarmID           int64  `gorm:"index;not null"`
	CropID           int64  `gorm:"not null"`
	CropName         string
	SuitabilityScore int
	RiskScore        float64
	RiskLevel        string
	ConfidenceScore  int
	ProfitProjection float64
	PlantingDate     time.Time
	HarvestDate      time.Time
	Scores           datatypes.JSON // domain.ScoreBreakdown
	Weather          datatypes.JSON // domain.WeatherProfile snapshot
	GeneratedAt      time.Time
	CreatedAt        time.Time
}

func (RecommendationRecord) TableName() string { return "recommendations" }

// Store wraps a GORM handle over the service's SQLite database.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&FarmRecord{}, &RecommendationRecord{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateFarm inserts a farm and returns it with the assigned id.
func (s *Store) CreateFarm(ctx context.Context, farm domain.Farm) (domain.Farm, error) {
	rec := FarmRecord{
		OwnerID:     farm.OwnerID,
		Name:        farm.Name,
		SizeAcres:   farm.SizeAcres,
		SoilType:    string(farm.SoilType),
		PHLevel:     farm.PHLevel,
		WaterSource: farm.WaterSource,
		Lat:         farm.Lat,
		Lon:         farm.Lon,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Farm{}, fmt.Errorf("create farm: %w", err)
	}
	farm.ID = rec.ID
	return farm, nil
}

// GetFarm loads a farm by id.
func (s *Store) GetFarm(ctx context.Context, id int64) (domain.Farm, error) {
	var rec FarmRecord
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Farm{}, fmt.Errorf("farm %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Farm{}, fmt.Errorf("load farm %d: %w", id, err)
	}
	return farmFromRecord(rec), nil
}

// SaveRun inserts every recommendation of a scoring run in one transaction.
func (s *Store) SaveRun(ctx context.Context, run domain.ScoringRun) error {
	rows := make([]RecommendationRecord, 0, len(run.Recommendations))
	for _, r := range run.Recommendations {
		row, err := recordFromRecommendation(run.RunID, r)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert scoring run %s: %w", run.RunID, err)
		}
		return nil
	})
}

// ListByFarm returns all persisted recommendations for a farm, most recent
// run first, ranked order preserved within a run.
func (s *Store) ListByFarm(ctx context.Context, farmID int64) ([]domain.Recommendation, error) {
	var rows []RecommendationRecord
	err := s.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("created_at DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list recommendations for farm %d: %w", farmID, err)
	}

	recs := make([]domain.Recommendation, 0, len(rows))
	for _, row := range rows {
		rec, err := recommendationFromRecord(row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func farmFromRecord(rec FarmRecord) domain.Farm {
	return domain.Farm{
		ID:          rec.ID,
		OwnerID:     rec.OwnerID,
		Name:        rec.Name,
		SizeAcres:   rec.SizeAcres,
		SoilType:    domain.SoilType(rec.SoilType),
		PHLevel:     rec.PHLevel,
		WaterSource: rec.WaterSource,
		Lat:         rec.Lat,
		Lon:         rec.Lon,
	}
}

func recordFromRecommendation(runID string, r domain.Recommendation) (RecommendationRecord, error) {
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return RecommendationRecord{}, fmt.Errorf("marshal scores for %s: %w", r.ID, err)
	}
	weather, err := json.Marshal(r.Weather)
	if err != nil {
		return RecommendationRecord{}, fmt.Errorf("marshal weather snapshot for %s: %w", r.ID, err)
	}
	return RecommendationRecord{
		RecID:            r.ID,
		RunID:            runID,
		FarmID:           r.FarmID,
		CropID:           r.CropID,
		CropName:         r.CropName,
		SuitabilityScore: r.SuitabilityScore,
		RiskScore:        r.RiskScore,
		RiskLevel:        string(r.RiskLevel),
		ConfidenceScore:  r.ConfidenceScore,
		ProfitProjection: r.ProfitProjection,
		PlantingDate:     r.PlantingDate,
		HarvestDate:      r.HarvestDate,
		Scores:           datatypes.JSON(scores),
		Weather:          datatypes.JSON(weather),
		GeneratedAt:      r.GeneratedAt,
	}, nil
}

func recommendationFromRecord(row RecommendationRecord) (domain.Recommendation, error) {
	rec := domain.Recommendation{
		ID:               row.RecID,
		FarmID:           row.FarmID,
		CropID:           row.CropID,
		CropName:         row.CropName,
		SuitabilityScore: row.SuitabilityScore,
		RiskScore:        row.RiskScore,
		RiskLevel:        domain.RiskLevel(row.RiskLevel),
		ConfidenceScore:  row.ConfidenceScore,
		ProfitProjection: row.ProfitProjection,
		PlantingDate:     row.PlantingDate,
		HarvestDate:      row.HarvestDate,
		GeneratedAt:      row.GeneratedAt,
	}
	if len(row.Scores) > 0 {
		if err := json.Unmarshal(row.Scores, &rec.Scores); err != nil {
			return domain.Recommendation{}, fmt.Errorf("unmarshal scores for %s: %w", row.RecID, err)
		}
	}
	if len(row.Weather) > 0 {
		if err := json.Unmarshal(row.Weather, &rec.Weather); err != nil {
			return domain.Recommendation{}, fmt.Errorf("unmarshal weather snapshot for %s: %w", row.RecID, err)
		}
	}
	return rec, nil
}
