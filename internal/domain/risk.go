package domain

// Risk composition constants. Base risk scales inverse suitability: crops
// poorly matched to their environment carry inherent extra risk.
const (
	baseRiskFactor = 0.5
	frostPenalty   = 25.0
	droughtPenalty = 20.0
)

// Risk level thresholds, boundaries inclusive.
const (
	riskLowMax    = 25.0
	riskMediumMax = 50.0
)

// ScoreRisk computes the 0–100 risk score for a crop under the given
// environment. suitability is the crop's weighted suitability total.
func ScoreRisk(p EnvironmentalProfile, c CropReference, suitability int) float64 {
	risk := baseRiskFactor * float64(100-suitability)

	if p.FrostRisk && !c.FrostTolerant() {
		risk += frostPenalty
	}
	if p.DroughtRisk && c.RainfallMin > p.RainfallNext30d {
		risk += droughtPenalty
	}

	return clamp(risk, 0, 100)
}

// LevelForRisk maps a risk score to its level: ≤25 low, ≤50 medium,
// otherwise high.
func LevelForRisk(score float64) RiskLevel {
	switch {
	case score <= riskLowMax:
		return RiskLow
	case score <= riskMediumMax:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
