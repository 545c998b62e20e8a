// Package service wires the document store, scoring engine and persistence
// into the operations the HTTP API and CLI expose.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/mq/queue"
	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/mq/worker"
	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/repository"
	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/storage"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/fingerprint"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/scoring"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/snapshot"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/types"
	"github.com/AutomateThePlanet/atom-evaluate/pkg/logger"
	"github.com/AutomateThePlanet/atom-evaluate/pkg/metrics"
)

const (
	defaultSaveQueueSize = 16
	shutdownTimeout      = 10 * time.Second
)

// Service implements the tracker operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	engine    *scoring.Engine
	storage   *storage.FileStorage
	saveQueue *queue.SaveQueue
	persister *worker.Persister

	// Configuration
	statePath   string
	persistMode PersistMode
	queueSize   int
	threshold   float64
	now         func() time.Time
	newID       model.IDFunc

	// State
	started bool
	cancel  context.CancelFunc

	// Synchronous saves
	saveMu    sync.Mutex
	synced    bool
	syncedRev uint64

	logger logger.Logger
}

// New constructs a Service holding the seeded default document. The state
// file, if any, is read by Start.
func New(opts ...Option) *Service {
	s := &Service{
		persistMode: PersistAsync,
		queueSize:   defaultSaveQueueSize,
		threshold:   scoring.DefaultDisagreementThreshold,
		now:         time.Now,
		newID:       repository.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.engine = scoring.NewEngine(scoring.WithDisagreementThreshold(s.threshold))
	s.store = repository.NewMemStore(
		repository.WithClock(s.now),
		repository.WithIDGenerator(s.newID),
	)
	return s
}

// Start reads the state file and starts background persistence.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting evaluation service...")

	if s.statePath != "" {
		s.storage = storage.NewFileStorage(s.statePath)
		seeded := s.loadState(ctx)

		if s.persistMode == PersistAsync {
			s.saveQueue = queue.NewSaveQueue(queue.WithCapacity(s.queueSize))
			s.persister = worker.NewPersister(s.saveQueue, s.storage,
				worker.WithLogger(s.logger.Named("persister")),
				worker.WithClock(s.now),
			)
			runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
			s.cancel = cancel
			go s.persister.Run(runCtx)
		}
		if seeded {
			s.save(ctx, s.storage, s.saveQueue)
		}
	}

	s.started = true
	s.logger.Info(ctx, "evaluation service started",
		logger.String("statePath", s.statePath),
		logger.String("persistMode", string(s.persistMode)),
		logger.Int("saveQueueSize", s.queueSize),
		logger.Float64("disagreementThreshold", s.engine.Threshold()),
	)
	return nil
}

// loadState replaces the seeded document with the saved one. It reports true
// when there was no state file, so the seed should be written out.
func (s *Service) loadState(ctx context.Context) bool {
	doc, err := s.storage.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNoState):
		metrics.RecordStateLoad("missing")
		s.logger.Info(ctx, "no state file, starting from defaults", logger.String("path", s.statePath))
		return true
	case err != nil:
		metrics.RecordStateLoad("error")
		metrics.RecordErrorByComponent("service", "state_load")
		s.logger.Warn(ctx, "state file unreadable, starting from defaults",
			logger.String("path", s.statePath),
			logger.Error(err),
		)
		return false
	}
	if err := s.store.Replace(ctx, doc); err != nil {
		metrics.RecordStateLoad("error")
		s.logger.Warn(ctx, "state file rejected, starting from defaults",
			logger.String("path", s.statePath),
			logger.Error(err),
		)
		return false
	}
	metrics.RecordStateLoad("loaded")
	return false
}

// Stop flushes pending saves and stops background persistence.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping evaluation service...")

	if s.persister != nil {
		if err := s.persister.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "persister shutdown failed", logger.Error(err))
		}
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.persister = nil
	s.saveQueue = nil
	s.started = false
	s.logger.Info(ctx, "evaluation service stopped")
}

// persist writes the current document according to the persist mode. Changes
// made while the service is stopped stay in memory.
func (s *Service) persist(ctx context.Context) {
	s.mu.RLock()
	started, st, q := s.started, s.storage, s.saveQueue
	s.mu.RUnlock()
	if !started || st == nil {
		return
	}
	s.save(context.WithoutCancel(ctx), st, q)
}

func (s *Service) save(ctx context.Context, st *storage.FileStorage, q *queue.SaveQueue) {
	doc, rev := s.store.Document(ctx)
	if q != nil {
		if !q.Enqueue(ctx, queue.Job{Revision: rev, Doc: doc}) {
			s.logger.Warn(ctx, "save dropped", logger.Error(queue.ErrClosed), logger.Any("revision", rev))
		}
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.synced && rev <= s.syncedRev {
		metrics.RecordSaveStale()
		return
	}
	start := time.Now()
	err := st.Save(ctx, doc)
	metrics.RecordSave(float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		metrics.RecordErrorByComponent("service", "save_error")
		s.logger.Error(ctx, "failed to save state", logger.Error(err), logger.Any("revision", rev))
		return
	}
	s.synced, s.syncedRev = true, rev
	metrics.UpdateLastSaveUnix(float64(s.now().Unix()))
}

// Companies returns every company in creation order.
func (s *Service) Companies(ctx context.Context) []model.Company {
	return s.store.Companies(ctx)
}

// SelectedCompany returns the selected company.
func (s *Service) SelectedCompany(ctx context.Context) (model.Company, error) {
	return s.store.SelectedCompany(ctx)
}

// AddCompany creates and selects a company.
func (s *Service) AddCompany(ctx context.Context, name string) (model.Company, error) {
	c, err := s.store.AddCompany(ctx, name)
	if err != nil {
		return model.Company{}, err
	}
	s.persist(ctx)
	return c, nil
}

// RenameCompany changes a company's display name.
func (s *Service) RenameCompany(ctx context.Context, id, name string) (model.Company, error) {
	c, err := s.store.RenameCompany(ctx, id, name)
	if err != nil {
		return model.Company{}, err
	}
	s.persist(ctx)
	return c, nil
}

// DeleteCompany removes a company with its assessment and history.
func (s *Service) DeleteCompany(ctx context.Context, id string) error {
	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// SelectCompany marks a company as selected.
func (s *Service) SelectCompany(ctx context.Context, id string) error {
	if err := s.store.SelectCompany(ctx, id); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// Criteria returns every criterion in document order.
func (s *Service) Criteria(ctx context.Context) []model.Criterion {
	return s.store.Criteria(ctx)
}

// AddCriterion appends a criterion.
func (s *Service) AddCriterion(ctx context.Context, c model.Criterion) (model.Criterion, error) {
	out, err := s.store.AddCriterion(ctx, c)
	if err != nil {
		return model.Criterion{}, err
	}
	s.persist(ctx)
	return out, nil
}

// UpdateCriterion applies a partial update to a criterion.
func (s *Service) UpdateCriterion(ctx context.Context, id string, p model.CriterionPatch) (model.Criterion, error) {
	out, err := s.store.UpdateCriterion(ctx, id, p)
	if err != nil {
		return model.Criterion{}, err
	}
	s.persist(ctx)
	return out, nil
}

// RemoveCriterion deletes a criterion and its scores and notes.
func (s *Service) RemoveCriterion(ctx context.Context, id string) error {
	if err := s.store.RemoveCriterion(ctx, id); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// Fingerprint describes the current criteria set.
func (s *Service) Fingerprint(ctx context.Context) types.Fingerprint {
	criteria := s.store.Criteria(ctx)
	metrics.RecordFingerprint()

	enabled := 0
	for _, c := range criteria {
		if c.Enabled {
			enabled++
		}
	}
	return types.Fingerprint{
		Hash:            fingerprint.Of(criteria),
		Criteria:        len(criteria),
		EnabledCriteria: enabled,
	}
}

// Assessment returns a company's scores and notes.
func (s *Service) Assessment(ctx context.Context, companyID string) (*model.Assessment, error) {
	return s.store.Assessment(ctx, companyID)
}

// SetScore records or clears a raw score.
func (s *Service) SetScore(ctx context.Context, companyID, criterionID string, score *float64) error {
	if err := s.store.SetScore(ctx, companyID, criterionID, score); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// SetNote records or clears a note.
func (s *Service) SetNote(ctx context.Context, companyID, criterionID, note string) error {
	if err := s.store.SetNote(ctx, companyID, criterionID, note); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// ClearAssessment drops a company's scores and notes, keeping its history.
func (s *Service) ClearAssessment(ctx context.Context, companyID string) error {
	if err := s.store.ClearAssessment(ctx, companyID); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// Evaluate computes the metrics, deltas, disagreement flag and advisory
// warnings for a company's current assessment.
func (s *Service) Evaluate(ctx context.Context, companyID string) (types.CompanyEvaluation, error) {
	start := time.Now()
	doc, _ := s.store.Document(ctx)
	company, ok := doc.Company(companyID)
	if !ok {
		return types.CompanyEvaluation{}, fmt.Errorf("%w: %s", repository.ErrCompanyNotFound, companyID)
	}

	var scores model.Scores
	if a := doc.Assessments[companyID]; a != nil {
		scores = a.Scores
	}
	eval := s.engine.Evaluate(doc.Criteria, scores)
	metrics.RecordEvaluation(float64(time.Since(start).Microseconds())/1000, eval.Disagreement)

	return types.CompanyEvaluation{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Evaluation:  eval,
		Threshold:   s.engine.Threshold(),
	}, nil
}

// Trend returns the company's chartable snapshot series.
func (s *Service) Trend(ctx context.Context, companyID string) (types.Trend, error) {
	doc, _ := s.store.Document(ctx)
	if _, ok := doc.Company(companyID); !ok {
		return types.Trend{}, fmt.Errorf("%w: %s", repository.ErrCompanyNotFound, companyID)
	}
	hash := fingerprint.Of(doc.Criteria)
	return types.Trend{
		CompanyID:   companyID,
		Fingerprint: hash,
		Points:      snapshot.Trend(doc.Snapshots[companyID], hash),
	}, nil
}

// CaptureSnapshot appends the company's current metrics to its history.
func (s *Service) CaptureSnapshot(ctx context.Context, companyID string) (model.Snapshot, error) {
	snap, err := s.store.CaptureSnapshot(ctx, companyID)
	if err != nil {
		return model.Snapshot{}, err
	}
	s.persist(ctx)
	return snap, nil
}

// PopLastSnapshot removes the newest snapshot. ok is false when the history
// was already empty.
func (s *Service) PopLastSnapshot(ctx context.Context, companyID string) (model.Snapshot, bool, error) {
	snap, ok, err := s.store.PopLastSnapshot(ctx, companyID)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	if ok {
		s.persist(ctx)
	}
	return snap, ok, nil
}

// Snapshots returns the company's history in capture order.
func (s *Service) Snapshots(ctx context.Context, companyID string) ([]model.Snapshot, error) {
	return s.store.Snapshots(ctx, companyID)
}

// Export writes the whole document.
func (s *Service) Export(ctx context.Context, w io.Writer, f storage.Format) error {
	doc, _ := s.store.Document(ctx)
	if err := storage.Encode(w, doc, f); err != nil {
		return err
	}
	metrics.RecordExport(string(f))
	return nil
}

// Import replaces the whole document. On any failure the current document is
// left untouched.
func (s *Service) Import(ctx context.Context, r io.Reader, f storage.Format) error {
	doc, err := storage.DecodeFormat(r, f)
	if err == nil {
		err = s.store.Replace(ctx, doc)
	}
	if err != nil {
		metrics.RecordImport(false, importFailure(err))
		s.logger.Warn(ctx, "import rejected", logger.Error(err))
		return err
	}
	metrics.RecordImport(true, "")
	s.logger.Info(ctx, "document imported",
		logger.Int("companies", len(doc.Companies)),
		logger.Int("criteria", len(doc.Criteria)),
	)
	s.persist(ctx)
	return nil
}

func importFailure(err error) string {
	switch {
	case errors.Is(err, storage.ErrUnsupportedVersion):
		return "version"
	case errors.Is(err, storage.ErrParse):
		return "parse"
	default:
		return "invalid"
	}
}

// Reset restores the seeded default document.
func (s *Service) Reset(ctx context.Context) {
	s.store.Reset(ctx)
	metrics.RecordReset()
	s.logger.Info(ctx, "document reset to defaults")
	s.persist(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	stats := types.Stats{
		Started:     s.started,
		PersistMode: string(s.persistMode),
		StatePath:   s.statePath,
	}
	if s.statePath == "" {
		stats.PersistMode = "memory"
	}
	if s.saveQueue != nil {
		stats.PendingSaves = s.saveQueue.Len(ctx)
	}
	if s.persister != nil {
		stats.SavedRevision = s.persister.LastSaved()
	}
	s.mu.RUnlock()

	s.saveMu.Lock()
	if s.syncedRev > stats.SavedRevision {
		stats.SavedRevision = s.syncedRev
	}
	s.saveMu.Unlock()

	doc, rev := s.store.Document(ctx)
	stats.Revision = rev
	stats.Companies = len(doc.Companies)
	stats.Criteria = len(doc.Criteria)
	stats.EnabledCriteria = len(doc.EnabledCriteria())
	stats.SelectedCompany = doc.SelectedCompanyID
	for _, h := range doc.Snapshots {
		stats.Snapshots += len(h)
	}
	return stats
}
