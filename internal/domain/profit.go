package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// ConfidenceScore blends suitability and risk into the 0–100 recommendation
// strength shown to the user: round(0.6·suitability + 0.4·(100 − risk)).
func ConfidenceScore(suitability int, risk float64) int {
	score := 0.6*float64(suitability) + 0.4*(100-risk)
	return int(clamp(math.Round(score), 0, 100))
}

// ProfitProjection estimates revenue per acre. The crop's baseline yield is
// scaled proportionally by suitability and discounted by up to 50% at
// maximum risk.
func ProfitProjection(c CropReference, suitability int, risk float64) float64 {
	yieldFactor := c.ProfitabilityScore * (float64(suitability) / 100) * (1 - risk/200)
	return c.MarketPrice * yieldFactor
}

// PlantingDate returns today when it falls inside the crop's planting
// window, otherwise the first day of the window's next occurrence. Windows
// may wrap year-end (e.g. October–February). Crops without a recorded
// window plant immediately.
func PlantingDate(c CropReference, today time.Time) time.Time {
	today = today.UTC().Truncate(24 * time.Hour)
	if c.PlantingStart == 0 || c.PlantingEnd == 0 {
		return today
	}
	if monthInWindow(today.Month(), c.PlantingStart, c.PlantingEnd) {
		return today
	}

	next := time.Date(today.Year(), c.PlantingStart, 1, 0, 0, 0, 0, time.UTC)
	if !next.After(today) {
		next = next.AddDate(1, 0, 0)
	}
	return next
}

// HarvestDate is the planting date plus the crop's maximum growing days.
func HarvestDate(c CropReference, planting time.Time) time.Time {
	return planting.AddDate(0, 0, c.GrowingDaysMax)
}

func monthInWindow(m, start, end time.Month) bool {
	if start <= end {
		return m >= start && m <= end
	}
	// Window wraps year-end.
	return m >= start || m <= end
}

// RecommendationID produces a deterministic ID from a scoring run's key
// fields. Identical inputs reproduce identical IDs, so same-day reruns can
// be correlated across the append-only store's runs.
func RecommendationID(farmID, cropID int64, today time.Time, confidence int) string {
	input := fmt.Sprintf("%d|%d|%s|%d", farmID, cropID, today.UTC().Format("2006-01-02"), confidence)
	hash := sha256.Sum256([]byte(input))
	return "rec-" + hex.EncodeToString(hash[:8])
}
