// Package scoring turns raw criterion scores into dimension indices,
// composite indices and the disagreement signal between the two overall views.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

// DefaultDisagreementThreshold is the |delta| at which the two overall views
// are reported as disagreeing.
const DefaultDisagreementThreshold = 0.75

// Advisory messages returned by Evaluate.
const (
	WarningAllDisabled = "All criteria are disabled. Enable at least one criterion."
	WarningSnapshotTip = "Tip: Save snapshots regularly to track trends over time."
)

// ComputeMetrics derives every index for one assessment. Only enabled
// criteria contribute. The function is total: missing data yields nil fields.
func ComputeMetrics(criteria []model.Criterion, scores model.Scores) model.Metrics {
	byDim := make(map[model.Dimension][]Weighted, len(model.AllDimensions))
	all := make([]Weighted, 0, len(criteria))
	for _, c := range criteria {
		if !c.Enabled {
			continue
		}
		var raw *float64
		if v, ok := scores[c.ID]; ok {
			raw = &v
		}
		item := Weighted{Value: Normalize(c, raw), Weight: c.Weight}
		byDim[c.Dimension] = append(byDim[c.Dimension], item)
		all = append(all, item)
	}

	var m model.Metrics
	for _, d := range model.NamedDimensions {
		m.SetDimension(d, WeightedAverage(byDim[d]))
	}
	m.OverallByCriteria = WeightedAverage(all)
	m.OverallByDimension = mean(m.TSI, m.TQI, m.ATC)
	if m.TSI != nil && m.TQI != nil && m.ATC != nil {
		m.Composite = mean(m.TSI, m.TQI, m.ATC)
	}
	return m
}

// Evaluation is the full read-out for one assessment.
type Evaluation struct {
	Metrics model.Metrics `json:"metrics"`
	// DeltaCriteriaVsDimensions is overallByCriteria - overallByDimension.
	DeltaCriteriaVsDimensions *float64 `json:"deltaCriteriaVsDimensions"`
	// DeltaDimensionsVsCriteria is the same gap seen from the other side.
	DeltaDimensionsVsCriteria *float64 `json:"deltaDimensionsVsCriteria"`
	Disagreement              bool     `json:"disagreement"`
	Warnings                  []string `json:"warnings"`
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDisagreementThreshold sets the |delta| that raises the disagreement flag.
func WithDisagreementThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 && !math.IsInf(threshold, 0) {
			e.threshold = threshold
		}
	}
}

// Engine evaluates assessments against a criteria set.
type Engine struct {
	threshold float64
}

// NewEngine creates a new engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{threshold: DefaultDisagreementThreshold}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the configured disagreement threshold.
func (e *Engine) Threshold() float64 { return e.threshold }

// Evaluate computes metrics, the deltas between both overall views and the
// advisory warnings for the criteria set.
func (e *Engine) Evaluate(criteria []model.Criterion, scores model.Scores) Evaluation {
	m := ComputeMetrics(criteria, scores)
	ev := Evaluation{Metrics: m, Warnings: Warnings(criteria)}
	if m.OverallByCriteria != nil && m.OverallByDimension != nil {
		cd := Round2(*m.OverallByCriteria - *m.OverallByDimension)
		dc := Round2(*m.OverallByDimension - *m.OverallByCriteria)
		ev.DeltaCriteriaVsDimensions = &cd
		ev.DeltaDimensionsVsCriteria = &dc
		ev.Disagreement = math.Abs(cd) >= e.threshold
	}
	return ev
}

// Warnings lists advisory messages about the criteria set. Named dimensions
// without enabled criteria are reported first; when nothing is wrong a single
// tip is returned.
func Warnings(criteria []model.Criterion) []string {
	present := make(map[model.Dimension]bool, len(model.AllDimensions))
	enabled := 0
	for _, c := range criteria {
		if !c.Enabled {
			continue
		}
		enabled++
		present[c.Dimension] = true
	}

	var missing []string
	for _, d := range model.NamedDimensions {
		if !present[d] {
			missing = append(missing, string(d))
		}
	}

	var warns []string
	if len(missing) > 0 {
		warns = append(warns, fmt.Sprintf("No enabled criteria in: %s.", strings.Join(missing, ", ")))
	}
	if enabled == 0 {
		warns = append(warns, WarningAllDisabled)
	}
	if len(warns) == 0 {
		warns = append(warns, WarningSnapshotTip)
	}
	return warns
}
