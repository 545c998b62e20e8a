// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/AutomateThePlanet/atom-evaluate/pkg/logger"
)

const defaultMaxImportBytes = 5 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CompanyDependencies
	CriteriaDependencies
	AssessmentDependencies
	EvaluationDependencies
	SnapshotDependencies
	DocumentDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	companyHandler    *CompanyHandler
	criteriaHandler   *CriteriaHandler
	assessmentHandler *AssessmentHandler
	evaluationHandler *EvaluationHandler
	snapshotHandler   *SnapshotHandler
	documentHandler   *DocumentHandler

	maxImportBytes int64
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxImportBytes caps the size of POST /import bodies.
func WithMaxImportBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxImportBytes = n
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		maxImportBytes: defaultMaxImportBytes,
		logger:         logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.companyHandler = NewCompanyHandler(deps)
	s.criteriaHandler = NewCriteriaHandler(deps)
	s.assessmentHandler = NewAssessmentHandler(deps)
	s.evaluationHandler = NewEvaluationHandler(deps)
	s.snapshotHandler = NewSnapshotHandler(deps)
	s.documentHandler = NewDocumentHandler(deps, s.maxImportBytes)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RecoverMiddleware(MetricsMiddleware(h, endpoint), s.logger))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("GET /companies", "companies", s.companyHandler.HandleList)
	route("POST /companies", "companies", s.companyHandler.HandleCreate)
	route("PATCH /companies/{id}", "company", s.companyHandler.HandleRename)
	route("DELETE /companies/{id}", "company", s.companyHandler.HandleDelete)
	route("POST /companies/{id}/select", "company_select", s.companyHandler.HandleSelect)

	route("GET /criteria", "criteria", s.criteriaHandler.HandleList)
	route("POST /criteria", "criteria", s.criteriaHandler.HandleCreate)
	route("GET /criteria/fingerprint", "criteria_fingerprint", s.criteriaHandler.HandleFingerprint)
	route("PATCH /criteria/{id}", "criterion", s.criteriaHandler.HandleUpdate)
	route("DELETE /criteria/{id}", "criterion", s.criteriaHandler.HandleDelete)

	route("GET /companies/{id}/assessment", "assessment", s.assessmentHandler.HandleGet)
	route("DELETE /companies/{id}/assessment", "assessment", s.assessmentHandler.HandleClear)
	route("PUT /companies/{id}/scores/{criterionId}", "score", s.assessmentHandler.HandleSetScore)
	route("DELETE /companies/{id}/scores/{criterionId}", "score", s.assessmentHandler.HandleClearScore)
	route("PUT /companies/{id}/notes/{criterionId}", "note", s.assessmentHandler.HandleSetNote)
	route("DELETE /companies/{id}/notes/{criterionId}", "note", s.assessmentHandler.HandleClearNote)

	route("GET /companies/{id}/metrics", "metrics", s.evaluationHandler.HandleMetrics)
	route("GET /companies/{id}/trend", "trend", s.evaluationHandler.HandleTrend)

	route("GET /companies/{id}/snapshots", "snapshots", s.snapshotHandler.HandleList)
	route("POST /companies/{id}/snapshots", "snapshots", s.snapshotHandler.HandleCapture)
	route("DELETE /companies/{id}/snapshots/last", "snapshot_last", s.snapshotHandler.HandlePopLast)

	route("GET /export", "export", s.documentHandler.HandleExport)
	route("POST /import", "import", s.documentHandler.HandleImport)
	route("POST /reset", "reset", s.documentHandler.HandleReset)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// respondError writes err with the status its kind maps to.
func respondError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// decodeBody reads a single JSON value from r into v.
func decodeBody(op string, r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return WrapKind(op, ErrBadRequest, errors.New("empty body"))
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	if dec.More() {
		return WrapKind(op, ErrBadRequest, fmt.Errorf("unexpected data after JSON body"))
	}
	return nil
}
