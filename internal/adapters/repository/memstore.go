package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/snapshot"
	"github.com/AutomateThePlanet/atom-evaluate/pkg/metrics"
)

// MemStore is an in-memory Store guarded by a single RWMutex. Readers get
// deep copies, so nothing handed out can change under a writer.
type MemStore struct {
	mu       sync.RWMutex
	doc      *model.Document
	revision uint64

	now     func() time.Time
	newID   model.IDFunc
	initial *model.Document
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates a store holding the default document unless
// WithDocument provides one.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		now:   time.Now,
		newID: NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.initial != nil {
		s.doc = s.initial.Clone()
		s.initial = nil
	} else {
		s.doc = model.DefaultDocument(s.timestamp(), s.newID)
	}
	s.publishCounts()
	return s
}

func (s *MemStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// mutate runs fn under the write lock and bumps the revision when fn succeeds.
func (s *MemStore) mutate(op string, fn func(doc *model.Document) error) error {
	start := time.Now()
	s.mu.Lock()
	err := fn(s.doc)
	if err == nil {
		s.revision++
	}
	s.mu.Unlock()

	metrics.RecordStoreMutation(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		if !errors.Is(err, errNothingToPop) {
			metrics.RecordErrorByComponent("repository", errorKind(err))
		}
		return err
	}
	s.publishCounts()
	return nil
}

func (s *MemStore) publishCounts() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := 0
	for _, h := range s.doc.Snapshots {
		snaps += len(h)
	}
	metrics.UpdateDocumentCounts(len(s.doc.Companies), len(s.doc.Criteria), len(s.doc.EnabledCriteria()), snaps)
}

// Revision returns the number of successful mutations so far.
func (s *MemStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Companies returns all companies.
func (s *MemStore) Companies(ctx context.Context) []model.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Company(nil), s.doc.Companies...)
}

// Company returns the company with id.
func (s *MemStore) Company(ctx context.Context, id string) (model.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.doc.Company(id)
	if !ok {
		return model.Company{}, fmt.Errorf("%w: %s", ErrCompanyNotFound, id)
	}
	return c, nil
}

// SelectedCompany returns the selected company or, when the selection is
// stale, the first company.
func (s *MemStore) SelectedCompany(ctx context.Context) (model.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.doc.Company(s.doc.SelectedCompanyID); ok {
		return c, nil
	}
	if len(s.doc.Companies) > 0 {
		return s.doc.Companies[0], nil
	}
	return model.Company{}, ErrCompanyNotFound
}

// AddCompany creates a company, selects it and gives it an empty assessment.
func (s *MemStore) AddCompany(ctx context.Context, name string) (model.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Company{}, ErrInvalidName
	}
	var created model.Company
	err := s.mutate("add_company", func(doc *model.Document) error {
		now := s.timestamp()
		created = model.Company{ID: s.newID(model.CompanyIDPrefix), Name: name, CreatedAt: now}
		doc.Companies = append(doc.Companies, created)
		doc.SelectedCompanyID = created.ID
		ensureAssessment(doc, created.ID, now)
		return nil
	})
	return created, err
}

// RenameCompany changes a company's display name.
func (s *MemStore) RenameCompany(ctx context.Context, id, name string) (model.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Company{}, ErrInvalidName
	}
	var renamed model.Company
	err := s.mutate("rename_company", func(doc *model.Document) error {
		for i := range doc.Companies {
			if doc.Companies[i].ID == id {
				doc.Companies[i].Name = name
				renamed = doc.Companies[i]
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrCompanyNotFound, id)
	})
	return renamed, err
}

// DeleteCompany removes a company together with its assessment and
// snapshots, then selects the first remaining company.
func (s *MemStore) DeleteCompany(ctx context.Context, id string) error {
	return s.mutate("delete_company", func(doc *model.Document) error {
		idx := -1
		for i, c := range doc.Companies {
			if c.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrCompanyNotFound, id)
		}
		doc.Companies = append(doc.Companies[:idx:idx], doc.Companies[idx+1:]...)
		delete(doc.Assessments, id)
		delete(doc.Snapshots, id)
		doc.SelectedCompanyID = ""
		if len(doc.Companies) > 0 {
			doc.SelectedCompanyID = doc.Companies[0].ID
		}
		return nil
	})
}

// SelectCompany marks a company as the current one.
func (s *MemStore) SelectCompany(ctx context.Context, id string) error {
	return s.mutate("select_company", func(doc *model.Document) error {
		if _, ok := doc.Company(id); !ok {
			return fmt.Errorf("%w: %s", ErrCompanyNotFound, id)
		}
		doc.SelectedCompanyID = id
		ensureAssessment(doc, id, s.timestamp())
		return nil
	})
}

// Criteria returns all criteria in document order.
func (s *MemStore) Criteria(ctx context.Context) []model.Criterion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Criterion(nil), s.doc.Criteria...)
}

// AddCriterion appends c. An empty id is generated.
func (s *MemStore) AddCriterion(ctx context.Context, c model.Criterion) (model.Criterion, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Dimension = model.ParseDimension(string(c.Dimension))
	if strings.TrimSpace(c.ID) == "" {
		c.ID = s.newID(model.CriterionIDPrefix)
	}
	if err := c.Validate(); err != nil {
		return model.Criterion{}, err
	}
	err := s.mutate("add_criterion", func(doc *model.Document) error {
		if _, idx := doc.Criterion(c.ID); idx >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		doc.Criteria = append(doc.Criteria, c)
		return nil
	})
	if err != nil {
		return model.Criterion{}, err
	}
	return c, nil
}

// UpdateCriterion applies p in place. Turning a criterion off purges its
// scores and notes from every assessment.
func (s *MemStore) UpdateCriterion(ctx context.Context, id string, p model.CriterionPatch) (model.Criterion, error) {
	var updated model.Criterion
	err := s.mutate("update_criterion", func(doc *model.Document) error {
		current, idx := doc.Criterion(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrCriterionNotFound, id)
		}
		next := p.Apply(current)
		if err := next.Validate(); err != nil {
			return err
		}
		doc.Criteria[idx] = next
		if p.Disables(current) {
			metrics.RecordCriteriaPurged(purge(doc, id, s.timestamp()))
		}
		updated = next
		return nil
	})
	return updated, err
}

// RemoveCriterion deletes a criterion and purges its scores and notes so a
// later criterion reusing the id starts clean.
func (s *MemStore) RemoveCriterion(ctx context.Context, id string) error {
	return s.mutate("remove_criterion", func(doc *model.Document) error {
		_, idx := doc.Criterion(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrCriterionNotFound, id)
		}
		doc.Criteria = append(doc.Criteria[:idx:idx], doc.Criteria[idx+1:]...)
		metrics.RecordCriteriaPurged(purge(doc, id, s.timestamp()))
		return nil
	})
}

// Assessment returns a copy of the company's assessment, creating it on
// first access.
func (s *MemStore) Assessment(ctx context.Context, companyID string) (*model.Assessment, error) {
	s.mu.RLock()
	if _, ok := s.doc.Company(companyID); !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
	}
	if a, ok := s.doc.Assessments[companyID]; ok {
		defer s.mu.RUnlock()
		return a.Clone(), nil
	}
	s.mu.RUnlock()

	var out *model.Assessment
	err := s.mutate("create_assessment", func(doc *model.Document) error {
		if _, ok := doc.Company(companyID); !ok {
			return fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
		}
		out = ensureAssessment(doc, companyID, s.timestamp()).Clone()
		return nil
	})
	return out, err
}

// SetScore records a raw score as entered; clamping happens at normalization.
func (s *MemStore) SetScore(ctx context.Context, companyID, criterionID string, score *float64) error {
	return s.mutate("set_score", func(doc *model.Document) error {
		a, err := s.editable(doc, companyID, criterionID)
		if err != nil {
			return err
		}
		if score == nil || math.IsNaN(*score) || math.IsInf(*score, 0) {
			delete(a.Scores, criterionID)
		} else {
			a.Scores[criterionID] = *score
		}
		a.UpdatedAt = s.timestamp()
		return nil
	})
}

// SetNote records free text for a criterion.
func (s *MemStore) SetNote(ctx context.Context, companyID, criterionID, note string) error {
	return s.mutate("set_note", func(doc *model.Document) error {
		a, err := s.editable(doc, companyID, criterionID)
		if err != nil {
			return err
		}
		if note = strings.TrimSpace(note); note == "" {
			delete(a.Notes, criterionID)
		} else {
			a.Notes[criterionID] = note
		}
		a.UpdatedAt = s.timestamp()
		return nil
	})
}

// editable resolves the assessment that may receive input for criterionID.
func (s *MemStore) editable(doc *model.Document, companyID, criterionID string) (*model.Assessment, error) {
	if _, ok := doc.Company(companyID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
	}
	c, idx := doc.Criterion(criterionID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrCriterionNotFound, criterionID)
	}
	if !c.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrCriterionDisabled, criterionID)
	}
	return ensureAssessment(doc, companyID, s.timestamp()), nil
}

// ClearAssessment empties scores and notes of a company.
func (s *MemStore) ClearAssessment(ctx context.Context, companyID string) error {
	return s.mutate("clear_assessment", func(doc *model.Document) error {
		if _, ok := doc.Company(companyID); !ok {
			return fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
		}
		doc.Assessments[companyID] = model.NewAssessment(s.timestamp())
		return nil
	})
}

// CaptureSnapshot appends a snapshot of the company's current assessment.
func (s *MemStore) CaptureSnapshot(ctx context.Context, companyID string) (model.Snapshot, error) {
	var snap model.Snapshot
	err := s.mutate("capture_snapshot", func(doc *model.Document) error {
		if _, ok := doc.Company(companyID); !ok {
			return fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
		}
		now := s.timestamp()
		a := ensureAssessment(doc, companyID, now)
		snap = snapshot.Capture(doc.Criteria, a.Scores, now)
		doc.Snapshots[companyID] = snapshot.History(doc.Snapshots[companyID]).Append(snap)
		return nil
	})
	if err != nil {
		return model.Snapshot{}, err
	}
	metrics.RecordSnapshotCaptured()
	return snap.Clone(), nil
}

// PopLastSnapshot removes the newest snapshot of a company. Popping an empty
// history succeeds with ok false and leaves the revision untouched.
func (s *MemStore) PopLastSnapshot(ctx context.Context, companyID string) (model.Snapshot, bool, error) {
	var (
		removed model.Snapshot
		ok      bool
	)
	err := s.mutate("pop_snapshot", func(doc *model.Document) error {
		if _, found := doc.Company(companyID); !found {
			return fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
		}
		h := snapshot.History(doc.Snapshots[companyID])
		removed, ok = h.Last()
		if !ok {
			return errNothingToPop
		}
		h, _ = h.PopLast()
		doc.Snapshots[companyID] = h
		return nil
	})
	if errors.Is(err, errNothingToPop) {
		metrics.RecordSnapshotPopped(false)
		return model.Snapshot{}, false, nil
	}
	if err != nil {
		return model.Snapshot{}, false, err
	}
	metrics.RecordSnapshotPopped(true)
	return removed.Clone(), true, nil
}

// Snapshots returns a copy of the company's history, oldest first.
func (s *MemStore) Snapshots(ctx context.Context, companyID string) ([]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.doc.Company(companyID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
	}
	h := s.doc.Snapshots[companyID]
	out := make([]model.Snapshot, len(h))
	for i, snap := range h {
		out[i] = snap.Clone()
	}
	return out, nil
}

// Document returns a deep copy of the document with its revision.
func (s *MemStore) Document(ctx context.Context) (*model.Document, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), s.revision
}

// Replace swaps in a copy of doc wholesale.
func (s *MemStore) Replace(ctx context.Context, doc *model.Document) error {
	if doc == nil {
		return ErrInvalidDocument
	}
	if doc.Version != model.DocumentVersion {
		return fmt.Errorf("%w: version %d", ErrInvalidDocument, doc.Version)
	}
	next := doc.Clone()
	return s.mutate("replace", func(cur *model.Document) error {
		*cur = *next
		return nil
	})
}

// Reset restores the default document and returns a copy of it.
func (s *MemStore) Reset(ctx context.Context) *model.Document {
	fresh := model.DefaultDocument(s.timestamp(), s.newID)
	installed := fresh.Clone()
	_ = s.mutate("reset", func(cur *model.Document) error {
		*cur = *installed
		return nil
	})
	return fresh
}

// ensureAssessment returns the company's assessment, creating it and its
// snapshot history on first use.
func ensureAssessment(doc *model.Document, companyID string, now time.Time) *model.Assessment {
	a, ok := doc.Assessments[companyID]
	if !ok {
		a = model.NewAssessment(now)
		doc.Assessments[companyID] = a
	}
	if _, ok := doc.Snapshots[companyID]; !ok {
		doc.Snapshots[companyID] = []model.Snapshot{}
	}
	return a
}

// purge removes criterionID from every assessment and returns how many score
// and note entries were dropped.
func purge(doc *model.Document, criterionID string, now time.Time) int {
	n := 0
	for _, a := range doc.Assessments {
		if _, ok := a.Scores[criterionID]; ok {
			n++
		}
		if _, ok := a.Notes[criterionID]; ok {
			n++
		}
		if a.Forget(criterionID) {
			a.UpdatedAt = now
		}
	}
	return n
}

// errorKind labels err for the error metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrCompanyNotFound), errors.Is(err, ErrCriterionNotFound):
		return "not_found"
	case errors.Is(err, ErrCriterionDisabled):
		return "disabled"
	case errors.Is(err, ErrDuplicateID):
		return "duplicate"
	default:
		return "invalid"
	}
}
