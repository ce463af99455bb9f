package domain

import "time"

// SoilType identifies one of the soil classes tracked by the reference data.
type SoilType string

const (
	SoilLoam     SoilType = "loam"
	SoilClay     SoilType = "clay"
	SoilSandy    SoilType = "sandy"
	SoilSilt     SoilType = "silt"
	SoilBlack    SoilType = "black"
	SoilRed      SoilType = "red"
	SoilAlluvial SoilType = "alluvial"
)

// KnownSoilTypes lists every soil class the reference data may use.
var KnownSoilTypes = []SoilType{
	SoilLoam, SoilClay, SoilSandy, SoilSilt, SoilBlack, SoilRed, SoilAlluvial,
}

// Farm holds a grower's static attributes. SoilType is empty and PHLevel nil
// when the grower has not supplied them.
type Farm struct {
	ID          int64    `json:"id"`
	OwnerID     int64    `json:"owner_id"`
	Name        string   `json:"name"`
	SizeAcres   float64  `json:"size_acres"`
	SoilType    SoilType `json:"soil_type,omitempty"`
	PHLevel     *float64 `json:"ph_level,omitempty"`
	WaterSource string   `json:"water_source,omitempty"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
}

// CropReference is the read-only agronomic tolerance record for one crop.
// Temperature is °C, rainfall mm per season, market price currency per yield
// unit, and ProfitabilityScore the baseline yield multiplier per acre.
type CropReference struct {
	ID                 int64             `json:"id"`
	Names              map[string]string `json:"names"` // language code → name, "en" always present
	SoilTypes          []SoilType        `json:"soil_types"`
	PHMin              float64           `json:"ph_min"`
	PHMax              float64           `json:"ph_max"`
	TempMin            float64           `json:"temp_min"`
	TempMax            float64           `json:"temp_max"`
	RainfallMin        float64           `json:"rainfall_min"`
	RainfallMax        float64           `json:"rainfall_max"`
	GrowingDaysMin     int               `json:"growing_days_min"`
	GrowingDaysMax     int               `json:"growing_days_max"`
	PlantingStart      time.Month        `json:"planting_start_month"`
	PlantingEnd        time.Month        `json:"planting_end_month"`
	MarketPrice        float64           `json:"market_price"`
	ProfitabilityScore float64           `json:"profitability_score"`
}

// Name returns the crop name for a language code, falling back to English.
func (c CropReference) Name(lang string) string {
	if name, ok := c.Names[lang]; ok && name != "" {
		return name
	}
	return c.Names["en"]
}

// AcceptsSoil reports whether the crop tolerates the given soil type.
func (c CropReference) AcceptsSoil(s SoilType) bool {
	for _, accepted := range c.SoilTypes {
		if accepted == s {
			return true
		}
	}
	return false
}

// FrostTolerant reports implicit frost tolerance: crops that grow at or
// below 0 °C take no frost penalty.
func (c CropReference) FrostTolerant() bool {
	return c.TempMin <= 0
}

// CurrentWeather is the point-in-time snapshot for a location.
type CurrentWeather struct {
	Temperature   float64 `json:"temperature"` // °C
	Humidity      float64 `json:"humidity"`    // percent
	Precipitation float64 `json:"precipitation"` // mm
	WindSpeed     float64 `json:"wind_speed"`  // km/h
	Condition     string  `json:"condition"`
}

// ForecastDay is one day of the ordered forecast sequence.
type ForecastDay struct {
	Date              time.Time `json:"date"`
	High              float64   `json:"high"` // °C
	Low               float64   `json:"low"`  // °C
	Humidity          float64   `json:"humidity"`
	PrecipitationMM   float64   `json:"precipitation_mm"`
	PrecipProbability float64   `json:"precip_probability"` // percent
	Condition         string    `json:"condition"`
}

// HistoricalSummary aggregates weather over a trailing window of WindowDays.
type HistoricalSummary struct {
	WindowDays    int     `json:"window_days"`
	AvgTemp       float64 `json:"avg_temp"`       // °C
	TotalRainfall float64 `json:"total_rainfall"` // mm over the window
	AvgHumidity   float64 `json:"avg_humidity"`
}

// WeatherProfile is the full weather input for one scoring run. The engine
// treats it as read-only and snapshots it verbatim onto each recommendation.
type WeatherProfile struct {
	Current    CurrentWeather    `json:"current"`
	Forecast   []ForecastDay     `json:"forecast"`
	Historical HistoricalSummary `json:"historical"`
}

// EnvironmentalProfile is the normalized merge of farm attributes and
// weather used by the scorers.
type EnvironmentalProfile struct {
	SoilType        SoilType
	PH              *float64
	AvgTempNext30d  float64
	RainfallNext30d float64
	FrostRisk       bool
	DroughtRisk     bool
}

// RiskLevel buckets a risk score via fixed thresholds; see LevelForRisk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ScoreBreakdown carries the per-dimension sub-scores behind a
// recommendation, for transparency in the API and audit trail.
type ScoreBreakdown struct {
	PHMatch      float64 `json:"ph_match"`
	ClimateMatch float64 `json:"climate_match"`
	WaterMatch   float64 `json:"water_match"`
}

// Recommendation is one ranked crop suggestion produced by a scoring run.
// Records are append-only: a new run inserts new rows and never edits old
// ones.
type Recommendation struct {
	ID               string         `json:"id"`
	FarmID           int64          `json:"farm_id"`
	CropID           int64          `json:"crop_id"`
	CropName         string         `json:"crop_name"`
	SuitabilityScore int            `json:"suitability_score"`
	RiskScore        float64        `json:"risk_score"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	ConfidenceScore  int            `json:"confidence_score"`
	ProfitProjection float64        `json:"profit_projection"` // currency per acre
	PlantingDate     time.Time      `json:"planting_date"`
	HarvestDate      time.Time      `json:"harvest_date"`
	Scores           ScoreBreakdown `json:"scores"`
	Weather          WeatherProfile `json:"weather"` // exact profile used, for audit
	GeneratedAt      time.Time      `json:"generated_at"`
}

// ScoringRun groups the recommendations produced by one engine invocation
// for persistence.
type ScoringRun struct {
	RunID           string           `json:"run_id"`
	FarmID          int64            `json:"farm_id"`
	Today           time.Time        `json:"today"`
	Recommendations []Recommendation `json:"recommendations"`
}
