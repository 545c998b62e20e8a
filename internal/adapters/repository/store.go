// Package repository holds the tracker document in memory and funnels every
// change through explicit commands.
package repository

import (
	"context"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

// Store provides read/write access to the tracker document.
// Every method returns copies; callers never share memory with the store.
type Store interface {
	// Companies returns all companies in creation order.
	Companies(ctx context.Context) []model.Company
	// Company returns one company. Returns ErrCompanyNotFound if unknown.
	Company(ctx context.Context, id string) (model.Company, error)
	// SelectedCompany returns the selected company, falling back to the first one.
	SelectedCompany(ctx context.Context) (model.Company, error)
	AddCompany(ctx context.Context, name string) (model.Company, error)
	RenameCompany(ctx context.Context, id, name string) (model.Company, error)
	// DeleteCompany removes the company with its assessment and snapshots.
	DeleteCompany(ctx context.Context, id string) error
	SelectCompany(ctx context.Context, id string) error

	// Criteria returns every criterion, enabled or not, in document order.
	Criteria(ctx context.Context) []model.Criterion
	AddCriterion(ctx context.Context, c model.Criterion) (model.Criterion, error)
	// UpdateCriterion applies p. Disabling purges the criterion's scores and notes.
	UpdateCriterion(ctx context.Context, id string, p model.CriterionPatch) (model.Criterion, error)
	// RemoveCriterion deletes the criterion and purges its scores and notes.
	RemoveCriterion(ctx context.Context, id string) error

	// Assessment returns the company's assessment, creating an empty one if needed.
	Assessment(ctx context.Context, companyID string) (*model.Assessment, error)
	// SetScore records a raw score. A nil or non-finite score clears the entry.
	SetScore(ctx context.Context, companyID, criterionID string, score *float64) error
	// SetNote records a note. A blank note clears the entry.
	SetNote(ctx context.Context, companyID, criterionID, note string) error
	// ClearAssessment drops scores and notes; snapshots remain.
	ClearAssessment(ctx context.Context, companyID string) error

	CaptureSnapshot(ctx context.Context, companyID string) (model.Snapshot, error)
	// PopLastSnapshot removes the newest snapshot. ok is false on an empty history.
	PopLastSnapshot(ctx context.Context, companyID string) (s model.Snapshot, ok bool, err error)
	Snapshots(ctx context.Context, companyID string) ([]model.Snapshot, error)

	// Document returns a deep copy of the whole document and its revision.
	Document(ctx context.Context) (*model.Document, uint64)
	// Replace swaps the whole document, as an import does.
	Replace(ctx context.Context, doc *model.Document) error
	// Reset restores the seeded default document.
	Reset(ctx context.Context) *model.Document
	// Revision increases with every successful mutation.
	Revision() uint64
}
