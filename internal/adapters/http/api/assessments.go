package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

// AssessmentDependencies defines the interface for score and note edits.
type AssessmentDependencies interface {
	Assessment(ctx context.Context, companyID string) (*model.Assessment, error)
	SetScore(ctx context.Context, companyID, criterionID string, score *float64) error
	SetNote(ctx context.Context, companyID, criterionID, note string) error
	ClearAssessment(ctx context.Context, companyID string) error
}

// AssessmentHandler handles assessment requests.
type AssessmentHandler struct {
	deps AssessmentDependencies
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(deps AssessmentDependencies) *AssessmentHandler {
	return &AssessmentHandler{deps: deps}
}

// scoreRequest keeps the raw value so a missing field can be told apart
// from an explicit null.
type scoreRequest struct {
	Score json.RawMessage `json:"score"`
}

func (s scoreRequest) value() (*float64, error) {
	if len(s.Score) == 0 {
		return nil, errors.New("missing score")
	}
	if string(s.Score) == "null" {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(s.Score, &v); err != nil {
		return nil, errors.New("score must be a number or null")
	}
	return &v, nil
}

type noteRequest struct {
	Note string `json:"note"`
}

// HandleGet handles GET /companies/{id}/assessment.
func (h *AssessmentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Assessment(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, Wrap("api.get_assessment", err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleClear handles DELETE /companies/{id}/assessment.
func (h *AssessmentHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.ClearAssessment(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, Wrap("api.clear_assessment", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetScore handles PUT /companies/{id}/scores/{criterionId}.
func (h *AssessmentHandler) HandleSetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_score"
	var req scoreRequest
	if err := decodeBody(op, r, &req); err != nil {
		respondError(w, err)
		return
	}
	score, err := req.value()
	if err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetScore(r.Context(), r.PathValue("id"), r.PathValue("criterionId"), score); err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearScore handles DELETE /companies/{id}/scores/{criterionId}.
func (h *AssessmentHandler) HandleClearScore(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.SetScore(r.Context(), r.PathValue("id"), r.PathValue("criterionId"), nil); err != nil {
		respondError(w, Wrap("api.clear_score", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetNote handles PUT /companies/{id}/notes/{criterionId}.
func (h *AssessmentHandler) HandleSetNote(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_note"
	var req noteRequest
	if err := decodeBody(op, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.deps.SetNote(r.Context(), r.PathValue("id"), r.PathValue("criterionId"), req.Note); err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearNote handles DELETE /companies/{id}/notes/{criterionId}.
func (h *AssessmentHandler) HandleClearNote(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.SetNote(r.Context(), r.PathValue("id"), r.PathValue("criterionId"), ""); err != nil {
		respondError(w, Wrap("api.clear_note", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
