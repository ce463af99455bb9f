package weather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cropcompass/crop-recommendation-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, 2*time.Second, 90, discardLogger(), observability.NewMetricsForTesting())
}

func collaboratorStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/weather/current", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "26.850000", r.URL.Query().Get("lat"))
		assert.Equal(t, "80.940000", r.URL.Query().Get("lon"))
		w.Write([]byte(`{"temperature":26,"humidity":65,"precipitation":0,"wind_speed":12,"condition":"Partly Cloudy"}`))
	})
	mux.HandleFunc("GET /api/weather/forecast", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		w.Write([]byte(`{"days":[
			{"date":"2026-08-30","high":28,"low":18,"humidity":65,"precipitation_mm":20,"precip_probability":55,"condition":"Rain"},
			{"date":"2026-08-31","high":29,"low":19,"humidity":60,"precipitation_mm":5,"precip_probability":30,"condition":"Clear"}
		]}`))
	})
	mux.HandleFunc("GET /api/weather/historical", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "90", r.URL.Query().Get("days"))
		w.Write([]byte(`{"window_days":90,"avg_temp":25,"total_rainfall":500,"avg_humidity":60}`))
	})
	return httptest.NewServer(mux)
}

func TestFetchProfile(t *testing.T) {
	srv := collaboratorStub(t)
	defer srv.Close()

	c := newTestClient(srv.URL + "/api")
	profile, err := c.FetchProfile(context.Background(), 26.85, 80.94)
	require.NoError(t, err)

	assert.Equal(t, 26.0, profile.Current.Temperature)
	assert.Equal(t, "Partly Cloudy", profile.Current.Condition)

	require.Len(t, profile.Forecast, 2)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), profile.Forecast[0].Date)
	assert.Equal(t, 28.0, profile.Forecast[0].High)
	assert.Equal(t, 55.0, profile.Forecast[0].PrecipProbability)

	assert.Equal(t, 90, profile.Historical.WindowDays)
	assert.Equal(t, 500.0, profile.Historical.TotalRainfall)
}

func TestFetchProfile_CollaboratorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream provider unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL + "/api")
	_, err := c.FetchProfile(context.Background(), 26.85, 80.94)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestFetchProfile_MalformedForecastDate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/weather/current", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"temperature":26}`))
	})
	mux.HandleFunc("GET /api/weather/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"days":[{"date":"30/08/2026","high":28,"low":18}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv.URL + "/api")
	_, err := c.FetchProfile(context.Background(), 26.85, 80.94)
	require.Error(t, err)
}

func TestFetchProfile_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL + "/api")
	_, err := c.FetchProfile(context.Background(), 26.85, 80.94)
	require.Error(t, err)
}
