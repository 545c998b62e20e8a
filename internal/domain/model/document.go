package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// DocumentVersion is the only persisted layout this build reads and writes.
const DocumentVersion = 1

// Snapshot is an immutable point-in-time capture of one company's scores and
// the metrics derived from them.
type Snapshot struct {
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Scores       Scores    `json:"scores" yaml:"scores"`
	Metrics      Metrics   `json:"metrics" yaml:"metrics"`
	CriteriaHash string    `json:"criteriaHash" yaml:"criteriaHash"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Timestamp:    s.Timestamp,
		Scores:       s.Scores.Clone(),
		Metrics:      s.Metrics.Clone(),
		CriteriaHash: s.CriteriaHash,
	}
}

// Document is the whole persisted state of the tracker.
type Document struct {
	Version           int                    `json:"version" yaml:"version"`
	Companies         []Company              `json:"companies" yaml:"companies"`
	SelectedCompanyID string                 `json:"selectedCompanyId" yaml:"selectedCompanyId"`
	Criteria          []Criterion            `json:"criteria" yaml:"criteria"`
	Assessments       map[string]*Assessment `json:"assessments" yaml:"assessments"`
	Snapshots         map[string][]Snapshot  `json:"snapshots" yaml:"snapshots"`
}

// NewDocument returns an empty version 1 document.
func NewDocument() *Document {
	return &Document{
		Version:     DocumentVersion,
		Companies:   []Company{},
		Criteria:    []Criterion{},
		Assessments: map[string]*Assessment{},
		Snapshots:   map[string][]Snapshot{},
	}
}

// Normalize initialises nil collections so callers never see nil maps.
func (d *Document) Normalize() {
	if d.Companies == nil {
		d.Companies = []Company{}
	}
	if d.Criteria == nil {
		d.Criteria = []Criterion{}
	}
	if d.Assessments == nil {
		d.Assessments = map[string]*Assessment{}
	}
	if d.Snapshots == nil {
		d.Snapshots = map[string][]Snapshot{}
	}
	for id, a := range d.Assessments {
		if a == nil {
			delete(d.Assessments, id)
			continue
		}
		if a.Scores == nil {
			a.Scores = Scores{}
		}
		if a.Notes == nil {
			a.Notes = Notes{}
		}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Version:           d.Version,
		Companies:         append([]Company(nil), d.Companies...),
		SelectedCompanyID: d.SelectedCompanyID,
		Criteria:          append([]Criterion(nil), d.Criteria...),
		Assessments:       make(map[string]*Assessment, len(d.Assessments)),
		Snapshots:         make(map[string][]Snapshot, len(d.Snapshots)),
	}
	for id, a := range d.Assessments {
		out.Assessments[id] = a.Clone()
	}
	for id, history := range d.Snapshots {
		copied := make([]Snapshot, len(history))
		for i, s := range history {
			copied[i] = s.Clone()
		}
		out.Snapshots[id] = copied
	}
	out.Normalize()
	return out
}

// Company returns the company with id, if present.
func (d *Document) Company(id string) (Company, bool) {
	for _, c := range d.Companies {
		if c.ID == id {
			return c, true
		}
	}
	return Company{}, false
}

// Criterion returns the criterion with id and its index, or -1.
func (d *Document) Criterion(id string) (Criterion, int) {
	for i, c := range d.Criteria {
		if c.ID == id {
			return c, i
		}
	}
	return Criterion{}, -1
}

// EnabledCriteria returns the enabled subset in document order.
func (d *Document) EnabledCriteria() []Criterion {
	out := make([]Criterion, 0, len(d.Criteria))
	for _, c := range d.Criteria {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// documentVersion peeks at the version field only. Any JSON number is
// accepted so 1.0 reads as 1.
type documentVersion struct {
	Version *float64 `json:"version"`
}

// PeekVersion extracts the version field of a raw document. ok is false when
// the field is missing, not a number or not integral.
func PeekVersion(data []byte) (version int, ok bool) {
	var v documentVersion
	if err := json.Unmarshal(data, &v); err != nil || v.Version == nil {
		return 0, false
	}
	return integral(*v.Version)
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// UnmarshalJSON decodes a document, reading an integral float version such
// as 1.0 as an int.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	aux := struct {
		*plain
		Version *float64 `json:"version"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.Version = 0
	if aux.Version != nil {
		v, ok := integral(*aux.Version)
		if !ok {
			return fmt.Errorf("version %v is not an integer", *aux.Version)
		}
		d.Version = v
	}
	return nil
}
