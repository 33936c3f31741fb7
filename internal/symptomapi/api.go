// Package symptomapi serves the triage and facility lookup HTTP API.
package symptomapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/carepath/internal/facility"
	"github.com/linnemanlabs/carepath/internal/triage"
)

// HealthPath is served without authentication.
const HealthPath = "/api/health"

// TriageService defines the business operations symptomapi needs.
type TriageService interface {
	Predict(ctx context.Context, q triage.Query) (*triage.Result, error)
	Disclaimer() string
}

// FacilityFinder looks up healthcare facilities and place names.
type FacilityFinder interface {
	Nearby(ctx context.Context, lat, lon float64, radius int) ([]facility.Place, error)
	Search(ctx context.Context, query string) ([]facility.Location, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger     log.Logger
	svc        TriageService
	facilities FacilityFinder
}

// New creates a new API handler. A nil finder leaves the facility routes
// unregistered.
func New(logger log.Logger, svc TriageService, finder FacilityFinder) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	return &API{
		logger:     logger,
		svc:        svc,
		facilities: finder,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get(HealthPath, a.handleHealth)
	r.Post("/api/predict-symptoms", a.handlePredict)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/triage", a.handlePredict)
		if a.facilities != nil {
			r.Get("/facilities/nearby", a.handleNearby)
			r.Post("/facilities/nearby", a.handleNearby)
			r.Get("/facilities/search", a.handleSearch)
		}
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Carepath triage API is running",
	})
}

func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already out; all that is left is a trace
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Debug(r.Context(), "encode response failed", "status", status, "error", err.Error())
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	a.writeJSON(w, r, status, map[string]string{"error": msg})
}
