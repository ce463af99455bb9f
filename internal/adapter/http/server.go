// Package http exposes the recommendation API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// CropSource lists the crop reference catalog.
type CropSource interface {
	AllCandidates() []domain.CropReference
}

// FarmStore creates and loads farms.
type FarmStore interface {
	CreateFarm(ctx context.Context, farm domain.Farm) (domain.Farm, error)
	GetFarm(ctx context.Context, id int64) (domain.Farm, error)
}

// Recommender runs scoring and serves history.
type Recommender interface {
	RunForFarm(ctx context.Context, farmID int64) ([]domain.Recommendation, error)
	History(ctx context.Context, farmID int64) ([]domain.Recommendation, error)
}

// Server exposes the service's HTTP API.
type Server struct {
	httpServer *http.Server
	crops      CropSource
	farms      FarmStore
	recs       Recommender
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API, health, readiness, and
// metrics routes.
func NewServer(addr string, ready ReadinessChecker, crops CropSource, farms FarmStore, recs Recommender, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		crops:  crops,
		farms:  farms,
		recs:   recs,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/crops", s.handleListCrops)
	mux.HandleFunc("POST /api/farms", s.handleCreateFarm)
	mux.HandleFunc("GET /api/farms/{id}", s.handleGetFarm)
	mux.HandleFunc("POST /api/recommendations/farm/{id}", s.handleRunRecommendations)
	mux.HandleFunc("GET /api/recommendations/farm/{id}", s.handleRecommendationHistory)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// cropSummary is the catalog view of a crop, with the name resolved for the
// requested language.
type cropSummary struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	SoilTypes          []domain.SoilType `json:"soil_types"`
	PlantingStartMonth time.Month        `json:"planting_start_month"`
	PlantingEndMonth   time.Month        `json:"planting_end_month"`
	GrowingDaysMin     int               `json:"growing_days_min"`
	GrowingDaysMax     int               `json:"growing_days_max"`
	MarketPrice        float64           `json:"market_price"`
}

func (s *Server) handleListCrops(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = "en"
	}

	crops := s.crops.AllCandidates()
	out := make([]cropSummary, 0, len(crops))
	for _, c := range crops {
		out = append(out, cropSummary{
			ID:                 c.ID,
			Name:               c.Name(lang),
			SoilTypes:          c.SoilTypes,
			PlantingStartMonth: c.PlantingStart,
			PlantingEndMonth:   c.PlantingEnd,
			GrowingDaysMin:     c.GrowingDaysMin,
			GrowingDaysMax:     c.GrowingDaysMax,
			MarketPrice:        c.MarketPrice,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFarm(w http.ResponseWriter, r *http.Request) {
	var farm domain.Farm
	if err := json.NewDecoder(r.Body).Decode(&farm); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateFarm(farm); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.farms.CreateFarm(r.Context(), farm)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetFarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	farm, err := s.farms.GetFarm(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, farm)
}

func (s *Server) handleRunRecommendations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	recs, err := s.recs.RunForFarm(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleRecommendationHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	recs, err := s.recs.History(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func validateFarm(farm domain.Farm) string {
	if farm.Name == "" {
		return "name is required"
	}
	if farm.SizeAcres <= 0 {
		return "size_acres must be positive"
	}
	if farm.SoilType != "" {
		known := false
		for _, s := range domain.KnownSoilTypes {
			if farm.SoilType == s {
				known = true
				break
			}
		}
		if !known {
			return "unknown soil_type"
		}
	}
	if farm.PHLevel != nil && (*farm.PHLevel < 0 || *farm.PHLevel > 14) {
		return "ph_level must be between 0 and 14"
	}
	if farm.Lat < -90 || farm.Lat > 90 || farm.Lon < -180 || farm.Lon > 180 {
		return "coordinates out of range"
	}
	return ""
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid farm id")
		return 0, false
	}
	return id, true
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidProfile):
		writeError(w, http.StatusUnprocessableEntity, "farm profile incomplete: soil type or ph level required")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
