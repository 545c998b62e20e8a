package api

import (
	"context"
	"net/http"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/types"
)

// EvaluationDependencies defines the interface for read-only scoring views.
type EvaluationDependencies interface {
	Evaluate(ctx context.Context, companyID string) (types.CompanyEvaluation, error)
	Trend(ctx context.Context, companyID string) (types.Trend, error)
}

// EvaluationHandler handles metrics and trend requests.
type EvaluationHandler struct {
	deps EvaluationDependencies
}

// NewEvaluationHandler creates a new evaluation handler.
func NewEvaluationHandler(deps EvaluationDependencies) *EvaluationHandler {
	return &EvaluationHandler{deps: deps}
}

// HandleMetrics handles GET /companies/{id}/metrics.
func (h *EvaluationHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	eval, err := h.deps.Evaluate(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, Wrap("api.metrics", err))
		return
	}
	writeJSON(w, http.StatusOK, eval)
}

// HandleTrend handles GET /companies/{id}/trend.
func (h *EvaluationHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.deps.Trend(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, Wrap("api.trend", err))
		return
	}
	writeJSON(w, http.StatusOK, trend)
}
