package scoring

import "math"

// Weighted is one normalized value with its weight. Value nil means absent.
type Weighted struct {
	Value  *float64
	Weight float64
}

// Round2 rounds to two decimals, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WeightedAverage returns Σ(value·weight)/Σ(weight) rounded to two decimals.
// Items with a non-positive or non-finite weight, or an absent or non-finite
// value, are skipped. It returns nil when nothing is left.
func WeightedAverage(items []Weighted) *float64 {
	var wSum, vSum float64
	for _, it := range items {
		if !(it.Weight > 0) || math.IsInf(it.Weight, 0) {
			continue
		}
		if it.Value == nil || !finite(*it.Value) {
			continue
		}
		wSum += it.Weight
		vSum += *it.Value * it.Weight
	}
	if wSum == 0 {
		return nil
	}
	avg := Round2(vSum / wSum)
	return &avg
}

// mean returns the rounded arithmetic mean of the present values, or nil.
func mean(values ...*float64) *float64 {
	var sum float64
	n := 0
	for _, v := range values {
		if v == nil || !finite(*v) {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	avg := Round2(sum / float64(n))
	return &avg
}
