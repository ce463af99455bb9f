// Package weather talks to the CropCompass weather collaborator service and
// assembles the full profile a scoring run needs.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
	"github.com/cropcompass/crop-recommendation-service/internal/observability"
)

// forecastDays is how many days of forecast the client asks for. It matches
// the scoring horizon.
const forecastDays = 30

// Source fetches the weather profile for a location.
type Source interface {
	FetchProfile(ctx context.Context, lat, lon float64) (domain.WeatherProfile, error)
}

// Client fetches current, forecast, and historical weather over HTTP.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	historyDays int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewClient creates a weather client. baseURL is the collaborator's API root,
// e.g. "http://localhost:3001/api". historyDays sets the trailing window
// requested from the historical endpoint.
func NewClient(baseURL string, timeout time.Duration, historyDays int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		historyDays: historyDays,
		logger:      logger,
		metrics:     metrics,
	}
}

// FetchProfile gathers the three weather views for a coordinate into one
// profile. All three requests must succeed; the caller decides how to degrade
// when the forecast inside the profile is empty.
func (c *Client) FetchProfile(ctx context.Context, lat, lon float64) (domain.WeatherProfile, error) {
	var profile domain.WeatherProfile

	var cur currentResponse
	if err := c.get(ctx, "current", lat, lon, nil, &cur); err != nil {
		return domain.WeatherProfile{}, err
	}
	profile.Current = domain.CurrentWeather{
		Temperature:   cur.Temperature,
		Humidity:      cur.Humidity,
		Precipitation: cur.Precipitation,
		WindSpeed:     cur.WindSpeed,
		Condition:     cur.Condition,
	}

	var fc forecastResponse
	params := url.Values{"days": {strconv.Itoa(forecastDays)}}
	if err := c.get(ctx, "forecast", lat, lon, params, &fc); err != nil {
		return domain.WeatherProfile{}, err
	}
	profile.Forecast = make([]domain.ForecastDay, 0, len(fc.Days))
	for _, d := range fc.Days {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return domain.WeatherProfile{}, fmt.Errorf("forecast day %q: %w", d.Date, err)
		}
		profile.Forecast = append(profile.Forecast, domain.ForecastDay{
			Date:              date,
			High:              d.High,
			Low:               d.Low,
			Humidity:          d.Humidity,
			PrecipitationMM:   d.PrecipitationMM,
			PrecipProbability: d.PrecipProbability,
			Condition:         d.Condition,
		})
	}

	var hist historicalResponse
	params = url.Values{"days": {strconv.Itoa(c.historyDays)}}
	if err := c.get(ctx, "historical", lat, lon, params, &hist); err != nil {
		return domain.WeatherProfile{}, err
	}
	profile.Historical = domain.HistoricalSummary{
		WindowDays:    hist.WindowDays,
		AvgTemp:       hist.AvgTemp,
		TotalRainfall: hist.TotalRainfall,
		AvgHumidity:   hist.AvgHumidity,
	}

	return profile, nil
}

func (c *Client) get(ctx context.Context, endpoint string, lat, lon float64, extra url.Values, out any) error {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', 6, 64)},
	}
	for k, vs := range extra {
		params[k] = vs
	}
	fullURL := fmt.Sprintf("%s/weather/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("weather %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.WeatherRequests.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("weather API error: %s: status %d: %s", endpoint, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.WeatherRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.metrics.WeatherRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}

// Weather collaborator response types.

type currentResponse struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
	WindSpeed     float64 `json:"wind_speed"`
	Condition     string  `json:"condition"`
}

type forecastResponse struct {
	Days []forecastDayResponse `json:"days"`
}

type forecastDayResponse struct {
	Date              string  `json:"date"` // YYYY-MM-DD
	High              float64 `json:"high"`
	Low               float64 `json:"low"`
	Humidity          float64 `json:"humidity"`
	PrecipitationMM   float64 `json:"precipitation_mm"`
	PrecipProbability float64 `json:"precip_probability"`
	Condition         string  `json:"condition"`
}

type historicalResponse struct {
	WindowDays    int     `json:"window_days"`
	AvgTemp       float64 `json:"avg_temp"`
	TotalRainfall float64 `json:"total_rainfall"`
	AvgHumidity   float64 `json:"avg_humidity"`
}
