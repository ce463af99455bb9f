// Package domain models the CropCompass recommendation data and implements
// the scoring rules that turn a farm's environment into ranked crop
// suggestions.
//
// # Data Sources
//
// Farm records come from the persistence layer and carry the grower's static
// attributes: soil type, pH, acreage, water source, and coordinates. Weather
// profiles come from the weather collaborator service per farm location:
// a current snapshot, an ordered daily forecast, and trailing historical
// aggregates. Crop references are read-only agronomic tolerance data loaded
// once at startup (see the refstore package).
//
// # Scoring Conventions
//
// All scores live on a 0–100 scale. Scoring a farm proceeds in stages:
//
//	profile     := BuildProfile(farm, weather)     // merged environment
//	suitability := ScoreSuitability(profile, crop) // ph/climate/water
//	risk        := ScoreRisk(profile, crop, suitability)
//	confidence  := ConfidenceScore(suitability, risk)
//
// Soil is a hard filter: a crop whose accepted soil set does not contain the
// farm's soil type is excluded from output entirely, never scored down.
//
// Sub-score rules:
//
//	ph_match:      100 inside [ph_min, ph_max], linear decay to 0 at
//	               2.0 pH units beyond either bound.
//	climate_match: 100 minus 10 points per °C the 30-day average temperature
//	               falls outside [temp_min, temp_max], floored at 0.
//	water_match:   same linear-decay rule as ph_match against
//	               [rainfall_min, rainfall_max], decay width 50 mm.
//	suitability:   round(0.30·ph + 0.40·climate + 0.30·water).
//
// Risk combines an inherent component with weather hazards:
//
//	base:    (100 − suitability) · 0.5
//	frost:   +25 when the forecast shows a low ≤ 0 °C and the crop is not
//	         frost tolerant. Frost tolerance is implicit: temp_min ≤ 0 °C.
//	drought: +20 when the drought flag is set and the crop needs more rain
//	         than the 30-day outlook provides.
//	level:   ≤25 low | ≤50 medium | >50 high (fixed thresholds).
//
// The ranker blends the two into a confidence score,
// round(0.6·suitability + 0.4·(100 − risk)), and a per-acre profit
// projection, market_price · profitability_score · (suitability/100) ·
// (1 − risk/200). profitability_score acts as the crop's baseline yield
// multiplier, so maximum risk discounts projected profit by half.
//
// # Determinism
//
// Scoring is a pure function of (farm, weather, reference data, today).
// Date-dependent fields, the generated-at stamp included, take "today" as an
// explicit parameter, so fixed inputs always reproduce byte-identical
// output, ordering included. The service layer derives "today" from the
// injectable package clock; see [Now] and [SetClock].
//
// # ID Generation
//
// Recommendation IDs are deterministic SHA-256 hashes of
// farm|crop|date|confidence, so a same-day rerun with identical inputs
// reproduces the same IDs and its rows can be correlated across the
// append-only store's runs. See [RecommendationID].
package domain
