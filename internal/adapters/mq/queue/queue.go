// Package queue holds pending document saves between the store and the
// persister.
//
// The queue is bounded. When it is full the oldest pending job is dropped in
// favour of the new one: every job carries a whole document, so only the
// newest revision has to reach disk.
package queue

import (
	"context"
	"sync"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/pkg/metrics"
)

const defaultQueueCapacity = 16

// Job is a request to persist the document as of Revision.
type Job struct {
	Revision uint64
	Doc      *model.Document
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job, coalescing the oldest pending job when full.
	// Returns false only when the queue is closed or ctx is done.
	Enqueue(ctx context.Context, job Job) bool

	// Dequeue returns a channel that will receive jobs as they become available.
	// The channel is closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of pending jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs. Pending jobs are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// SaveQueue implements Queue using a buffered channel.
type SaveQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewSaveQueue creates a new save queue with configuration options.
func NewSaveQueue(opts ...Option) *SaveQueue {
	q := &SaveQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueDepth(0)
	return q
}

// Enqueue adds a job to the queue.
func (q *SaveQueue) Enqueue(ctx context.Context, job Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	for {
		select {
		case q.jobs <- job:
			metrics.UpdateQueueDepth(len(q.jobs))
			return true
		default:
		}
		// Full: make room by dropping the oldest pending job.
		select {
		case <-q.jobs:
			metrics.RecordSaveCoalesced()
		default:
		}
	}
}

// Dequeue returns a channel that will receive jobs as they become available.
func (q *SaveQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for job := range q.jobs {
			select {
			case out <- job:
				metrics.UpdateQueueDepth(len(q.jobs))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of pending jobs.
func (q *SaveQueue) Len(ctx context.Context) int {
	size := len(q.jobs)
	metrics.UpdateQueueDepth(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *SaveQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *SaveQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
