package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Criterion defaults, applied once at construction or decode time.
const (
	DefaultWeight   = 1.0
	DefaultScaleMin = 0.0
	DefaultScaleMax = 10.0
)

// Criterion is a single weighted question with a declared input scale.
// ID is immutable once created; every other field may change in place.
type Criterion struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Dimension Dimension `json:"dimension" yaml:"dimension"`
	Weight    float64   `json:"weight" yaml:"weight"`
	ScaleMin  float64   `json:"scaleMin" yaml:"scaleMin"`
	ScaleMax  float64   `json:"scaleMax" yaml:"scaleMax"`
	Enabled   bool      `json:"enabled" yaml:"enabled"`
}

// NewCriterion builds an enabled criterion with the default weight and a 0-10 scale.
func NewCriterion(id, name string, dim Dimension) Criterion {
	return Criterion{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Dimension: ParseDimension(string(dim)),
		Weight:    DefaultWeight,
		ScaleMin:  DefaultScaleMin,
		ScaleMax:  DefaultScaleMax,
		Enabled:   true,
	}
}

// Validate checks the fields the store accepts from callers. A degenerate
// scale (ScaleMin == ScaleMax) is allowed.
func (c Criterion) Validate() error {
	switch {
	case strings.TrimSpace(c.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidCriterion)
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidCriterion)
	case math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) || c.Weight < 0:
		return fmt.Errorf("%w: weight must be a non-negative number", ErrInvalidCriterion)
	case !isFinite(c.ScaleMin) || !isFinite(c.ScaleMax):
		return fmt.Errorf("%w: scale bounds must be finite", ErrInvalidCriterion)
	case c.ScaleMin > c.ScaleMax:
		return fmt.Errorf("%w: scaleMin %g exceeds scaleMax %g", ErrInvalidCriterion, c.ScaleMin, c.ScaleMax)
	}
	return nil
}

// criterionJSON mirrors the persisted record; pointer fields detect omissions.
type criterionJSON struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Dimension string   `json:"dimension"`
	Weight    *float64 `json:"weight"`
	ScaleMin  *float64 `json:"scaleMin"`
	ScaleMax  *float64 `json:"scaleMax"`
	Enabled   *bool    `json:"enabled"`
}

// UnmarshalJSON decodes a criterion and fills omitted fields with defaults.
func (c *Criterion) UnmarshalJSON(data []byte) error {
	var raw criterionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Criterion{
		ID:        raw.ID,
		Name:      raw.Name,
		Dimension: ParseDimension(raw.Dimension),
		Weight:    valueOr(raw.Weight, DefaultWeight),
		ScaleMin:  valueOr(raw.ScaleMin, DefaultScaleMin),
		ScaleMax:  valueOr(raw.ScaleMax, DefaultScaleMax),
		Enabled:   raw.Enabled == nil || *raw.Enabled,
	}
	return nil
}

// CriterionPatch carries optional in-place updates. ID is not patchable.
type CriterionPatch struct {
	Name      *string  `json:"name,omitempty"`
	Dimension *string  `json:"dimension,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	ScaleMin  *float64 `json:"scaleMin,omitempty"`
	ScaleMax  *float64 `json:"scaleMax,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty"`
}

// Apply returns c with the patch applied. A blank name keeps the old one and
// negative weights are raised to zero.
func (p CriterionPatch) Apply(c Criterion) Criterion {
	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			c.Name = name
		}
	}
	if p.Dimension != nil {
		c.Dimension = ParseDimension(*p.Dimension)
	}
	if p.Weight != nil {
		c.Weight = math.Max(0, *p.Weight)
	}
	if p.ScaleMin != nil {
		c.ScaleMin = *p.ScaleMin
	}
	if p.ScaleMax != nil {
		c.ScaleMax = *p.ScaleMax
	}
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
	return c
}

// Disables reports whether applying p to c turns an enabled criterion off.
func (p CriterionPatch) Disables(c Criterion) bool {
	return c.Enabled && p.Enabled != nil && !*p.Enabled
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
