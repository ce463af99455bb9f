package domain

import "math"

// Sub-score weights and decay widths. Soil carries no weight because it is
// a hard filter, not a scored dimension.
const (
	phWeight      = 0.30
	climateWeight = 0.40
	waterWeight   = 0.30

	phDecayWidth    = 2.0  // pH units beyond the band at which the score hits 0
	waterDecayWidth = 50.0 // mm beyond the band at which the score hits 0

	climatePenaltyPerDegree = 10.0
)

// SuitabilityResult holds the sub-scores and weighted total for one crop.
type SuitabilityResult struct {
	PHMatch      float64
	ClimateMatch float64
	WaterMatch   float64
	Total        int
}

// ScoreSuitability computes how well a crop's tolerance ranges match the
// environmental profile. The caller is responsible for the soil hard filter;
// this function assumes the crop already passed it.
//
// A farm with no recorded pH is scored on the remaining evidence: the pH
// dimension contributes a full match rather than penalizing missing data.
func ScoreSuitability(p EnvironmentalProfile, c CropReference) SuitabilityResult {
	r := SuitabilityResult{
		PHMatch:      100,
		ClimateMatch: climateMatch(p.AvgTempNext30d, c.TempMin, c.TempMax),
		WaterMatch:   bandScore(p.RainfallNext30d, c.RainfallMin, c.RainfallMax, waterDecayWidth),
	}
	if p.PH != nil {
		r.PHMatch = bandScore(*p.PH, c.PHMin, c.PHMax, phDecayWidth)
	}

	weighted := phWeight*r.PHMatch + climateWeight*r.ClimateMatch + waterWeight*r.WaterMatch
	r.Total = int(math.Round(weighted))
	return r
}

// bandScore returns 100 inside [min, max] and decays linearly to 0 at
// decayWidth beyond either bound.
func bandScore(value, min, max, decayWidth float64) float64 {
	dist := distanceOutside(value, min, max)
	if dist <= 0 {
		return 100
	}
	if dist >= decayWidth {
		return 0
	}
	return 100 * (1 - dist/decayWidth)
}

// climateMatch deducts a fixed penalty per °C outside the crop's band,
// floored at 0.
func climateMatch(avgTemp, tempMin, tempMax float64) float64 {
	dist := distanceOutside(avgTemp, tempMin, tempMax)
	if dist <= 0 {
		return 100
	}
	score := 100 - climatePenaltyPerDegree*dist
	if score < 0 {
		return 0
	}
	return score
}

func distanceOutside(value, min, max float64) float64 {
	switch {
	case value < min:
		return min - value
	case value > max:
		return value - max
	default:
		return 0
	}
}
