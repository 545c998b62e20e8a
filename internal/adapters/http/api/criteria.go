package api

import (
	"context"
	"net/http"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/types"
)

// CriteriaDependencies defines the interface for criteria operations.
type CriteriaDependencies interface {
	Criteria(ctx context.Context) []model.Criterion
	AddCriterion(ctx context.Context, c model.Criterion) (model.Criterion, error)
	UpdateCriterion(ctx context.Context, id string, p model.CriterionPatch) (model.Criterion, error)
	RemoveCriterion(ctx context.Context, id string) error
	Fingerprint(ctx context.Context) types.Fingerprint
}

// CriteriaHandler handles criteria requests.
type CriteriaHandler struct {
	deps CriteriaDependencies
}

// NewCriteriaHandler creates a new criteria handler.
func NewCriteriaHandler(deps CriteriaDependencies) *CriteriaHandler {
	return &CriteriaHandler{deps: deps}
}

// HandleList handles GET /criteria. ?dimension= filters by dimension.
func (h *CriteriaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	criteria := h.deps.Criteria(r.Context())
	if dim := r.URL.Query().Get("dimension"); dim != "" {
		want := model.ParseDimension(dim)
		filtered := make([]model.Criterion, 0, len(criteria))
		for _, c := range criteria {
			if c.Dimension == want {
				filtered = append(filtered, c)
			}
		}
		criteria = filtered
	}
	writeJSON(w, http.StatusOK, criteria)
}

// HandleCreate handles POST /criteria. Omitted fields take their defaults.
func (h *CriteriaHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_criterion"
	var c model.Criterion
	if err := decodeBody(op, r, &c); err != nil {
		respondError(w, err)
		return
	}
	out, err := h.deps.AddCriterion(r.Context(), c)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// HandleUpdate handles PATCH /criteria/{id}.
func (h *CriteriaHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_criterion"
	var p model.CriterionPatch
	if err := decodeBody(op, r, &p); err != nil {
		respondError(w, err)
		return
	}
	out, err := h.deps.UpdateCriterion(r.Context(), r.PathValue("id"), p)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /criteria/{id}.
func (h *CriteriaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.RemoveCriterion(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, Wrap("api.delete_criterion", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFingerprint handles GET /criteria/fingerprint.
func (h *CriteriaHandler) HandleFingerprint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Fingerprint(r.Context()))
}
