package domain

import (
	"fmt"
)

// forecastHorizonDays is the outlook window the scorers reason about.
const forecastHorizonDays = 30

// Physical sanity bounds for weather validation. Slightly wider than any
// recorded surface observation so legitimate extremes still pass.
const (
	minPhysicalTempC = -90.0
	maxPhysicalTempC = 60.0
)

// ProfileConfig carries the operator-tunable thresholds for profile
// derivation.
type ProfileConfig struct {
	// DroughtRainfallThresholdMM flags drought risk when trailing
	// historical rainfall falls below it.
	DroughtRainfallThresholdMM float64
}

// BuildProfile merges a farm's static attributes with a weather profile into
// the normalized environment used for scoring.
//
// Fallback policy: with an empty forecast both the average temperature and
// the rainfall outlook come from historical aggregates and the frost/drought
// flags stay false (cannot assess). A forecast shorter than the 30-day
// horizon still drives the flags and the temperature average, but rainfall
// falls back to the historical rate scaled to 30 days.
func BuildProfile(farm Farm, weather WeatherProfile, cfg ProfileConfig) (EnvironmentalProfile, error) {
	if farm.SoilType == "" && farm.PHLevel == nil {
		return EnvironmentalProfile{}, fmt.Errorf("farm %d has neither soil type nor pH: %w", farm.ID, ErrInvalidProfile)
	}
	if err := ValidateWeather(weather); err != nil {
		return EnvironmentalProfile{}, err
	}

	p := EnvironmentalProfile{
		SoilType: farm.SoilType,
		PH:       farm.PHLevel,
	}

	horizon := weather.Forecast
	if len(horizon) > forecastHorizonDays {
		horizon = horizon[:forecastHorizonDays]
	}

	if len(horizon) == 0 {
		p.AvgTempNext30d = weather.Historical.AvgTemp
		p.RainfallNext30d = historicalRainfall30d(weather.Historical)
		return p, nil
	}

	var tempSum, rainSum, probSum float64
	for _, day := range horizon {
		tempSum += (day.High + day.Low) / 2
		rainSum += day.PrecipitationMM
		probSum += day.PrecipProbability
		if day.Low <= 0 {
			p.FrostRisk = true
		}
	}
	p.AvgTempNext30d = tempSum / float64(len(horizon))

	if len(weather.Forecast) >= forecastHorizonDays {
		p.RainfallNext30d = rainSum
	} else {
		p.RainfallNext30d = historicalRainfall30d(weather.Historical)
	}

	avgProb := probSum / float64(len(horizon))
	if weather.Historical.TotalRainfall < cfg.DroughtRainfallThresholdMM && avgProb < 20 {
		p.DroughtRisk = true
	}

	return p, nil
}

// historicalRainfall30d scales the trailing-window rainfall total to a
// 30-day equivalent so windows of any length normalize to the same horizon.
func historicalRainfall30d(h HistoricalSummary) float64 {
	if h.WindowDays <= 0 {
		return 0
	}
	return h.TotalRainfall / float64(h.WindowDays) * forecastHorizonDays
}

// ValidateWeather rejects profiles with physically impossible values.
func ValidateWeather(weather WeatherProfile) error {
	if err := checkTemp("current temperature", weather.Current.Temperature); err != nil {
		return err
	}
	if weather.Current.Humidity < 0 || weather.Current.Humidity > 100 {
		return fmt.Errorf("current humidity %.1f out of range: %w", weather.Current.Humidity, ErrInvalidInput)
	}
	if weather.Current.Precipitation < 0 {
		return fmt.Errorf("current precipitation %.1f negative: %w", weather.Current.Precipitation, ErrInvalidInput)
	}
	for i, day := range weather.Forecast {
		if err := checkTemp(fmt.Sprintf("forecast day %d high", i), day.High); err != nil {
			return err
		}
		if err := checkTemp(fmt.Sprintf("forecast day %d low", i), day.Low); err != nil {
			return err
		}
		if day.High < day.Low {
			return fmt.Errorf("forecast day %d high %.1f below low %.1f: %w", i, day.High, day.Low, ErrInvalidInput)
		}
		if day.PrecipitationMM < 0 {
			return fmt.Errorf("forecast day %d precipitation %.1f negative: %w", i, day.PrecipitationMM, ErrInvalidInput)
		}
		if day.PrecipProbability < 0 || day.PrecipProbability > 100 {
			return fmt.Errorf("forecast day %d precip probability %.1f out of range: %w", i, day.PrecipProbability, ErrInvalidInput)
		}
	}
	if weather.Historical.WindowDays < 0 {
		return fmt.Errorf("historical window %d days negative: %w", weather.Historical.WindowDays, ErrInvalidInput)
	}
	if weather.Historical.TotalRainfall < 0 {
		return fmt.Errorf("historical rainfall %.1f negative: %w", weather.Historical.TotalRainfall, ErrInvalidInput)
	}
	return nil
}

func checkTemp(field string, v float64) error {
	if v < minPhysicalTempC || v > maxPhysicalTempC {
		return fmt.Errorf("%s %.1f°C outside physical bounds: %w", field, v, ErrInvalidInput)
	}
	return nil
}
