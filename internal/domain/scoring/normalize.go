package scoring

import (
	"math"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
)

// NormalizedMax is the top of the common scale every raw score is mapped onto.
const NormalizedMax = 10.0

// Normalize maps raw onto [0, NormalizedMax] using the criterion's scale.
// An absent or non-finite raw score yields nil. A degenerate scale
// (ScaleMin == ScaleMax) yields 0.
func Normalize(c model.Criterion, raw *float64) *float64 {
	if raw == nil || !finite(*raw) {
		return nil
	}
	lo, hi := scaleBounds(c)
	v := math.Min(hi, math.Max(lo, *raw))
	if hi == lo {
		zero := 0.0
		return &zero
	}
	n := (v - lo) / (hi - lo) * NormalizedMax
	return &n
}

// scaleBounds returns usable bounds: non-finite values fall back to the
// defaults and an inverted pair is swapped.
func scaleBounds(c model.Criterion) (lo, hi float64) {
	lo, hi = c.ScaleMin, c.ScaleMax
	if !finite(lo) {
		lo = model.DefaultScaleMin
	}
	if !finite(hi) {
		hi = model.DefaultScaleMax
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
