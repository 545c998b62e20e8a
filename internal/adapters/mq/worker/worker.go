// Package worker drains the save queue into durable storage.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/mq/queue"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/pkg/logger"
	"github.com/AutomateThePlanet/atom-evaluate/pkg/metrics"
)

// Saver writes a document to durable storage.
type Saver interface {
	Save(ctx context.Context, doc *model.Document) error
}

// Queue defines how the persister receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker persists queued documents.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown closes the queue and waits for pending jobs to be written.
	Shutdown(ctx context.Context) error
}

// Persister implements Worker. Jobs older than the last saved revision are
// skipped.
type Persister struct {
	queue Queue
	saver Saver
	name  string
	now   func() time.Time

	saved   atomic.Uint64
	written atomic.Bool

	done   chan struct{}
	logger logger.Logger
}

// NewPersister creates a persister with configuration options.
func NewPersister(q Queue, saver Saver, opts ...Option) *Persister {
	p := &Persister{
		queue:  q,
		saver:  saver,
		name:   "persister",
		now:    time.Now,
		done:   make(chan struct{}),
		logger: logger.Get().Named("persister"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.name != "persister" {
		p.logger = p.logger.Named(p.name)
	}
	return p
}

// LastSaved returns the newest revision written to storage.
func (p *Persister) LastSaved() uint64 { return p.saved.Load() }

// MarkSaved records rev as already persisted, e.g. after a synchronous save.
func (p *Persister) MarkSaved(rev uint64) {
	p.written.Store(true)
	for {
		cur := p.saved.Load()
		if rev <= cur || p.saved.CompareAndSwap(cur, rev) {
			return
		}
	}
}

// Run starts the persister loop.
func (p *Persister) Run(ctx context.Context) {
	defer close(p.done)
	metrics.UpdatePersisterActive(true)
	defer metrics.UpdatePersisterActive(false)

	jobs := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := p.process(ctx, job); err != nil {
				p.logger.Error(ctx, "error persisting document", logger.Error(err))
			}
		}
	}
}

// Shutdown closes the queue when it supports closing, then waits for Run to
// write whatever is still pending.
func (p *Persister) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (p *Persister) process(ctx context.Context, job queue.Job) error {
	if job.Doc == nil {
		return nil
	}
	if p.written.Load() && job.Revision <= p.saved.Load() {
		metrics.RecordSaveStale()
		p.logger.Debug(ctx, "skipping stale save",
			logger.Any("revision", job.Revision),
			logger.Any("saved", p.saved.Load()),
		)
		return nil
	}

	start := time.Now()
	err := p.saver.Save(ctx, job.Doc)
	metrics.RecordSave(float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		metrics.RecordErrorByComponent("persister", "save_error")
		metrics.RecordErrorByType("save_error", "high")
		return fmt.Errorf("save revision %d: %w", job.Revision, err)
	}

	p.MarkSaved(job.Revision)
	metrics.UpdateLastSaveUnix(float64(p.now().Unix()))
	return nil
}
