package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFarm() Farm {
	return Farm{
		ID:       42,
		SoilType: SoilLoam,
		PHLevel:  ptr(6.5),
		Lat:      26.85,
		Lon:      80.94,
	}
}

func forecastDays(n int, high, low, rainMM, prob float64) []ForecastDay {
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	days := make([]ForecastDay, n)
	for i := range days {
		days[i] = ForecastDay{
			Date:              base.AddDate(0, 0, i),
			High:              high,
			Low:               low,
			Humidity:          60,
			PrecipitationMM:   rainMM,
			PrecipProbability: prob,
		}
	}
	return days
}

func TestBuildProfile_FullForecast(t *testing.T) {
	weather := WeatherProfile{
		Current:  CurrentWeather{Temperature: 28, Humidity: 60},
		Forecast: forecastDays(30, 30, 20, 15, 50),
		Historical: HistoricalSummary{
			WindowDays:    90,
			AvgTemp:       24,
			TotalRainfall: 300,
		},
	}

	p, err := BuildProfile(testFarm(), weather, ProfileConfig{DroughtRainfallThresholdMM: 40})
	require.NoError(t, err)

	assert.Equal(t, SoilLoam, p.SoilType)
	require.NotNil(t, p.PH)
	assert.Equal(t, 6.5, *p.PH)
	assert.InDelta(t, 25.0, p.AvgTempNext30d, 0.001, "mean of daily (high+low)/2")
	assert.InDelta(t, 450.0, p.RainfallNext30d, 0.001, "sum of 30 forecast days")
	assert.False(t, p.FrostRisk)
	assert.False(t, p.DroughtRisk)
}

func TestBuildProfile_EmptyForecastFallsBackToHistorical(t *testing.T) {
	weather := WeatherProfile{
		Current: CurrentWeather{Temperature: 28, Humidity: 60},
		Historical: HistoricalSummary{
			WindowDays:    60,
			AvgTemp:       18,
			TotalRainfall: 120,
		},
	}

	p, err := BuildProfile(testFarm(), weather, ProfileConfig{DroughtRainfallThresholdMM: 500})
	require.NoError(t, err)

	assert.Equal(t, 18.0, p.AvgTempNext30d)
	assert.InDelta(t, 60.0, p.RainfallNext30d, 0.001, "120mm/60d scaled to 30d")
	assert.False(t, p.FrostRisk, "cannot assess without forecast")
	assert.False(t, p.DroughtRisk, "cannot assess without forecast")
}

func TestBuildProfile_ShortForecastRainfallFallback(t *testing.T) {
	weather := WeatherProfile{
		Current:  CurrentWeather{Temperature: 28, Humidity: 60},
		Forecast: forecastDays(7, 32, 22, 5, 60),
		Historical: HistoricalSummary{
			WindowDays:    90,
			AvgTemp:       24,
			TotalRainfall: 450,
		},
	}

	p, err := BuildProfile(testFarm(), weather, ProfileConfig{DroughtRainfallThresholdMM: 40})
	require.NoError(t, err)

	assert.InDelta(t, 27.0, p.AvgTempNext30d, 0.001, "temperature still from forecast")
	assert.InDelta(t, 150.0, p.RainfallNext30d, 0.001, "rainfall from historical rate")
}

func TestBuildProfile_FrostFlag(t *testing.T) {
	weather := WeatherProfile{
		Current:    CurrentWeather{Temperature: 5, Humidity: 70},
		Forecast:   forecastDays(10, 8, -1, 0, 10),
		Historical: HistoricalSummary{WindowDays: 90, AvgTemp: 6, TotalRainfall: 200},
	}

	p, err := BuildProfile(testFarm(), weather, ProfileConfig{DroughtRainfallThresholdMM: 40})
	require.NoError(t, err)
	assert.True(t, p.FrostRisk)
}

func TestBuildProfile_DroughtFlag(t *testing.T) {
	cfg := ProfileConfig{DroughtRainfallThresholdMM: 40}

	t.Run("set when dry history and dry outlook", func(t *testing.T) {
		weather := WeatherProfile{
			Current:    CurrentWeather{Temperature: 35, Humidity: 20},
			Forecast:   forecastDays(14, 38, 26, 0, 5),
			Historical: HistoricalSummary{WindowDays: 90, AvgTemp: 33, TotalRainfall: 12},
		}
		p, err := BuildProfile(testFarm(), weather, cfg)
		require.NoError(t, err)
		assert.True(t, p.DroughtRisk)
	})

	t.Run("clear when rain is likely", func(t *testing.T) {
		weather := WeatherProfile{
			Current:    CurrentWeather{Temperature: 35, Humidity: 20},
			Forecast:   forecastDays(14, 38, 26, 0, 45),
			Historical: HistoricalSummary{WindowDays: 90, AvgTemp: 33, TotalRainfall: 12},
		}
		p, err := BuildProfile(testFarm(), weather, cfg)
		require.NoError(t, err)
		assert.False(t, p.DroughtRisk)
	})

	t.Run("clear when history is wet", func(t *testing.T) {
		weather := WeatherProfile{
			Current:    CurrentWeather{Temperature: 35, Humidity: 20},
			Forecast:   forecastDays(14, 38, 26, 0, 5),
			Historical: HistoricalSummary{WindowDays: 90, AvgTemp: 33, TotalRainfall: 600},
		}
		p, err := BuildProfile(testFarm(), weather, cfg)
		require.NoError(t, err)
		assert.False(t, p.DroughtRisk)
	})
}

func TestBuildProfile_InvalidFarm(t *testing.T) {
	farm := Farm{ID: 7}
	weather := WeatherProfile{Current: CurrentWeather{Temperature: 20, Humidity: 50}}

	_, err := BuildProfile(farm, weather, ProfileConfig{})
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestBuildProfile_SoilTypeAloneIsEnough(t *testing.T) {
	farm := Farm{ID: 7, SoilType: SoilClay}
	weather := WeatherProfile{
		Current:    CurrentWeather{Temperature: 20, Humidity: 50},
		Historical: HistoricalSummary{WindowDays: 30, AvgTemp: 20, TotalRainfall: 80},
	}

	p, err := BuildProfile(farm, weather, ProfileConfig{})
	require.NoError(t, err)
	assert.Nil(t, p.PH)
}

func TestValidateWeather(t *testing.T) {
	valid := WeatherProfile{
		Current:    CurrentWeather{Temperature: 20, Humidity: 50},
		Forecast:   forecastDays(3, 25, 15, 2, 30),
		Historical: HistoricalSummary{WindowDays: 90, AvgTemp: 22, TotalRainfall: 200},
	}

	tests := []struct {
		name   string
		mutate func(*WeatherProfile)
	}{
		{"impossible current temperature", func(w *WeatherProfile) { w.Current.Temperature = -120 }},
		{"humidity over 100", func(w *WeatherProfile) { w.Current.Humidity = 130 }},
		{"negative current precipitation", func(w *WeatherProfile) { w.Current.Precipitation = -3 }},
		{"forecast high below low", func(w *WeatherProfile) { w.Forecast[1].High = 10; w.Forecast[1].Low = 14 }},
		{"impossible forecast high", func(w *WeatherProfile) { w.Forecast[0].High = 75 }},
		{"negative forecast rain", func(w *WeatherProfile) { w.Forecast[2].PrecipitationMM = -1 }},
		{"precip probability over 100", func(w *WeatherProfile) { w.Forecast[0].PrecipProbability = 150 }},
		{"negative historical rainfall", func(w *WeatherProfile) { w.Historical.TotalRainfall = -10 }},
	}

	require.NoError(t, ValidateWeather(valid))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			w.Forecast = append([]ForecastDay(nil), valid.Forecast...)
			tt.mutate(&w)
			assert.ErrorIs(t, ValidateWeather(w), ErrInvalidInput)
		})
	}
}
