package api

import (
	"context"
	"net/http"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

// SnapshotDependencies defines the interface for snapshot history operations.
type SnapshotDependencies interface {
	CaptureSnapshot(ctx context.Context, companyID string) (model.Snapshot, error)
	PopLastSnapshot(ctx context.Context, companyID string) (model.Snapshot, bool, error)
	Snapshots(ctx context.Context, companyID string) ([]model.Snapshot, error)
}

// SnapshotHandler handles snapshot requests.
type SnapshotHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps SnapshotDependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

// HandleList handles GET /companies/{id}/snapshots.
func (h *SnapshotHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	history, err := h.deps.Snapshots(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, Wrap("api.list_snapshots", err))
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// HandleCapture handles POST /companies/{id}/snapshots.
func (h *SnapshotHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.CaptureSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, Wrap("api.capture_snapshot", err))
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// HandlePopLast handles DELETE /companies/{id}/snapshots/last. An empty
// history answers 204.
func (h *SnapshotHandler) HandlePopLast(w http.ResponseWriter, r *http.Request) {
	snap, ok, err := h.deps.PopLastSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, Wrap("api.pop_snapshot", err))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
