package model

import (
	"encoding/json"
	"time"
)

// Company is an assessable entity.
type Company struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Scores maps criterion id to a raw score. A missing key means "not yet scored".
type Scores map[string]float64

// Clone returns a deep copy. The clone of a nil map is an empty map.
func (s Scores) Clone() Scores {
	out := make(Scores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// UnmarshalJSON drops null entries instead of turning them into zero scores.
func (s *Scores) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Scores, len(raw))
	for k, v := range raw {
		if v != nil {
			out[k] = *v
		}
	}
	*s = out
	return nil
}

// Notes maps criterion id to free text.
type Notes map[string]string

// Clone returns a deep copy.
func (n Notes) Clone() Notes {
	out := make(Notes, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}

// Assessment holds one company's scores and notes.
type Assessment struct {
	Scores    Scores    `json:"scores" yaml:"scores"`
	Notes     Notes     `json:"notes" yaml:"notes"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// NewAssessment returns an empty assessment stamped with now.
func NewAssessment(now time.Time) *Assessment {
	return &Assessment{Scores: Scores{}, Notes: Notes{}, UpdatedAt: now}
}

// Clone returns a deep copy.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	return &Assessment{Scores: a.Scores.Clone(), Notes: a.Notes.Clone(), UpdatedAt: a.UpdatedAt}
}

// Forget removes the score and note held for criterionID. It reports whether
// anything was removed.
func (a *Assessment) Forget(criterionID string) bool {
	_, hadScore := a.Scores[criterionID]
	_, hadNote := a.Notes[criterionID]
	delete(a.Scores, criterionID)
	delete(a.Notes, criterionID)
	return hadScore || hadNote
}
