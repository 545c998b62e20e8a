package queue

// Option applies a configuration option to the SaveQueue.
type Option func(*SaveQueue)

// WithCapacity sets how many pending save jobs are held before the oldest
// is coalesced away.
func WithCapacity(capacity int) Option {
	return func(q *SaveQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}
