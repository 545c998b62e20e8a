package repository

import (
	"time"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/google/uuid"
)

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets how new company and criterion ids are minted.
func WithIDGenerator(newID model.IDFunc) Option {
	return func(s *MemStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithDocument seeds the store with doc instead of the default document.
func WithDocument(doc *model.Document) Option {
	return func(s *MemStore) {
		if doc != nil {
			s.initial = doc
		}
	}
}

// NewID returns "<prefix>_<uuid>".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
