package worker

import (
	"time"

	"github.com/AutomateThePlanet/atom-evaluate/pkg/logger"
)

// Option applies a configuration option to the Persister.
type Option func(*Persister)

// WithName sets the persister name for identification and logging.
func WithName(name string) Option {
	return func(p *Persister) {
		if name != "" {
			p.name = name
		}
	}
}

// WithLogger sets a custom logger for the persister.
func WithLogger(l logger.Logger) Option {
	return func(p *Persister) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source used for save timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Persister) {
		if now != nil {
			p.now = now
		}
	}
}
