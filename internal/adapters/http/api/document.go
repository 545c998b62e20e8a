package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/storage"
)

// DocumentDependencies defines the interface for whole-document operations.
type DocumentDependencies interface {
	Export(ctx context.Context, w io.Writer, f storage.Format) error
	Import(ctx context.Context, r io.Reader, f storage.Format) error
	Reset(ctx context.Context)
}

// DocumentHandler handles export, import and reset requests.
type DocumentHandler struct {
	deps     DocumentDependencies
	maxBytes int64
}

// NewDocumentHandler creates a new document handler. Import bodies larger
// than maxBytes are refused.
func NewDocumentHandler(deps DocumentDependencies, maxBytes int64) *DocumentHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxImportBytes
	}
	return &DocumentHandler{deps: deps, maxBytes: maxBytes}
}

// HandleExport handles GET /export?format=json|yaml.
func (h *DocumentHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	f, err := storage.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	var buf bytes.Buffer
	if err := h.deps.Export(r.Context(), &buf, f); err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="atom-evaluate-export.%s"`, f))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleImport handles POST /import. The format comes from ?format= or a
// YAML content type; JSON otherwise. A rejected file leaves state unchanged.
func (h *DocumentHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	format := r.URL.Query().Get("format")
	if format == "" && strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = string(storage.FormatYAML)
	}
	f, err := storage.ParseFormat(format)
	if err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := h.deps.Import(r.Context(), body, f); err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReset handles POST /reset.
func (h *DocumentHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.deps.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
