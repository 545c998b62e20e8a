package model

// Metrics is the derived output of the scoring engine. A nil field is absent:
// not enough data to compute it. JSON names match the tracker's documents.
type Metrics struct {
	TSI                *float64 `json:"TSI" yaml:"TSI"`
	TQI                *float64 `json:"TQI" yaml:"TQI"`
	ATC                *float64 `json:"ATC" yaml:"ATC"`
	Composite          *float64 `json:"TAEI" yaml:"TAEI"`
	OverallByCriteria  *float64 `json:"overallCriteria" yaml:"overallCriteria"`
	OverallByDimension *float64 `json:"overallDims" yaml:"overallDims"`
}

// Dimension returns the score of a named dimension, or nil.
func (m Metrics) Dimension(d Dimension) *float64 {
	switch d {
	case DimensionTSI:
		return m.TSI
	case DimensionTQI:
		return m.TQI
	case DimensionATC:
		return m.ATC
	default:
		return nil
	}
}

// SetDimension stores v as the score of a named dimension. Other dimensions are ignored.
func (m *Metrics) SetDimension(d Dimension, v *float64) {
	switch d {
	case DimensionTSI:
		m.TSI = v
	case DimensionTQI:
		m.TQI = v
	case DimensionATC:
		m.ATC = v
	}
}

// Clone returns a copy that shares no pointers with m.
func (m Metrics) Clone() Metrics {
	return Metrics{
		TSI:                clonePtr(m.TSI),
		TQI:                clonePtr(m.TQI),
		ATC:                clonePtr(m.ATC),
		Composite:          clonePtr(m.Composite),
		OverallByCriteria:  clonePtr(m.OverallByCriteria),
		OverallByDimension: clonePtr(m.OverallByDimension),
	}
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
