// Package snapshot records point-in-time captures of an assessment and keeps
// them as an append-only history per company.
package snapshot

import (
	"time"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/fingerprint"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/scoring"
)

// Capture freezes the current scores together with the metrics computed from
// them and the fingerprint of the criteria in force. The scores are copied, so
// later edits to the live assessment never reach the snapshot.
func Capture(criteria []model.Criterion, scores model.Scores, now time.Time) model.Snapshot {
	return model.Snapshot{
		Timestamp:    now,
		Scores:       scores.Clone(),
		Metrics:      scoring.ComputeMetrics(criteria, scores),
		CriteriaHash: fingerprint.Of(criteria),
	}
}

// History is the ordered list of snapshots of one company, oldest first.
type History []model.Snapshot

// Append returns the history with s added at the end.
func (h History) Append(s model.Snapshot) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, s)
}

// PopLast removes the most recent snapshot. On an empty history it returns the
// history unchanged and false.
func (h History) PopLast() (History, bool) {
	if len(h) == 0 {
		return h, false
	}
	return h[:len(h)-1 : len(h)-1], true
}

// Last returns the most recent snapshot, if any.
func (h History) Last() (model.Snapshot, bool) {
	if len(h) == 0 {
		return model.Snapshot{}, false
	}
	return h[len(h)-1], true
}

// Point is one entry of a trend series.
type Point struct {
	Timestamp         time.Time `json:"timestamp"`
	Composite         *float64  `json:"TAEI"`
	OverallByCriteria *float64  `json:"overallCriteria"`
	// Comparable is false when the snapshot was taken under a different
	// criteria set than the current one.
	Comparable bool `json:"comparable"`
}

// Trend returns the chartable series of h: snapshots that carry a composite or
// an overall-by-criteria value, in capture order.
func Trend(h History, currentFingerprint string) []Point {
	points := make([]Point, 0, len(h))
	for _, s := range h {
		if s.Metrics.Composite == nil && s.Metrics.OverallByCriteria == nil {
			continue
		}
		m := s.Metrics.Clone()
		points = append(points, Point{
			Timestamp:         s.Timestamp,
			Composite:         m.Composite,
			OverallByCriteria: m.OverallByCriteria,
			Comparable:        fingerprint.Comparable(s, currentFingerprint),
		})
	}
	return points
}
