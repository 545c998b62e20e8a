// Package model contains domain models passed between layers.
package model

import "strings"

// Dimension is a scoring category that groups related criteria.
type Dimension string

// Known dimensions. Anything else is folded into DimensionOther.
const (
	DimensionTSI   Dimension = "TSI"   // team skill index
	DimensionTQI   Dimension = "TQI"   // test quality index
	DimensionATC   Dimension = "ATC"   // automated testing coverage
	DimensionOther Dimension = "OTHER" // process & foundations, catch-all
)

// NamedDimensions are the dimensions feeding the composite readiness index,
// in display order.
var NamedDimensions = []Dimension{DimensionTSI, DimensionTQI, DimensionATC} //nolint:gochecknoglobals // fixed domain table

// AllDimensions lists every dimension including the catch-all.
var AllDimensions = []Dimension{DimensionTSI, DimensionTQI, DimensionATC, DimensionOther} //nolint:gochecknoglobals // fixed domain table

// ParseDimension matches s case-insensitively against the known dimensions.
// Empty or unknown tags map to DimensionOther.
func ParseDimension(s string) Dimension {
	switch d := Dimension(strings.ToUpper(strings.TrimSpace(s))); d {
	case DimensionTSI, DimensionTQI, DimensionATC, DimensionOther:
		return d
	default:
		return DimensionOther
	}
}

// IsNamed reports whether d is one of the composite dimensions.
func (d Dimension) IsNamed() bool {
	return d == DimensionTSI || d == DimensionTQI || d == DimensionATC
}

// Hint returns the human readable description of the dimension.
func (d Dimension) Hint() string {
	switch d {
	case DimensionTSI:
		return "Team Skill Index criteria"
	case DimensionTQI:
		return "Test Quality Index criteria"
	case DimensionATC:
		return "Automated Testing Coverage criteria"
	default:
		return "Other / process & foundations"
	}
}
