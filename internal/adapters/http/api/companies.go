package api

import (
	"context"
	"net/http"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

// CompanyDependencies defines the interface for company operations.
type CompanyDependencies interface {
	Companies(ctx context.Context) []model.Company
	SelectedCompany(ctx context.Context) (model.Company, error)
	AddCompany(ctx context.Context, name string) (model.Company, error)
	RenameCompany(ctx context.Context, id, name string) (model.Company, error)
	DeleteCompany(ctx context.Context, id string) error
	SelectCompany(ctx context.Context, id string) error
}

// CompanyHandler handles company requests.
type CompanyHandler struct {
	deps CompanyDependencies
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(deps CompanyDependencies) *CompanyHandler {
	return &CompanyHandler{deps: deps}
}

type companyList struct {
	Companies         []model.Company `json:"companies"`
	SelectedCompanyID string          `json:"selectedCompanyId"`
}

type companyRequest struct {
	Name string `json:"name"`
}

// HandleList handles GET /companies.
func (h *CompanyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	out := companyList{Companies: h.deps.Companies(r.Context())}
	if selected, err := h.deps.SelectedCompany(r.Context()); err == nil {
		out.SelectedCompanyID = selected.ID
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /companies.
func (h *CompanyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_company"
	var req companyRequest
	if err := decodeBody(op, r, &req); err != nil {
		respondError(w, err)
		return
	}
	c, err := h.deps.AddCompany(r.Context(), req.Name)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleRename handles PATCH /companies/{id}.
func (h *CompanyHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	const op = "api.rename_company"
	var req companyRequest
	if err := decodeBody(op, r, &req); err != nil {
		respondError(w, err)
		return
	}
	c, err := h.deps.RenameCompany(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /companies/{id}.
func (h *CompanyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteCompany(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, Wrap("api.delete_company", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSelect handles POST /companies/{id}/select.
func (h *CompanyHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.SelectCompany(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, Wrap("api.select_company", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
