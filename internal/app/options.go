package service

import (
	"time"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/pkg/logger"
)

// PersistMode selects how changes reach the state file.
type PersistMode string

// Persist modes.
const (
	// PersistSync saves inside the command that changed the document.
	PersistSync PersistMode = "sync"
	// PersistAsync hands saves to a background persister; last write wins.
	PersistAsync PersistMode = "async"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStatePath sets the state file. Without one the document lives in
// memory only.
func WithStatePath(path string) Option {
	return func(s *Service) {
		s.statePath = path
	}
}

// WithPersistMode selects sync or async saving. Unknown modes are ignored.
func WithPersistMode(mode PersistMode) Option {
	return func(s *Service) {
		if mode == PersistSync || mode == PersistAsync {
			s.persistMode = mode
		}
	}
}

// WithSaveQueueSize bounds the number of pending async saves.
func WithSaveQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDisagreementThreshold sets the |delta| at which the overall views are
// flagged as disagreeing.
func WithDisagreementThreshold(threshold float64) Option {
	return func(s *Service) {
		s.threshold = threshold
	}
}

// WithClock overrides the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how company and criterion ids are minted.
func WithIDGenerator(newID model.IDFunc) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}
