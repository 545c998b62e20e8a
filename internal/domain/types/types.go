// Package types contains the read models shared by the service and its
// transports.
package types

import (
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/scoring"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/snapshot"
)

// CompanyEvaluation is the scoring read-out for one company.
type CompanyEvaluation struct {
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName"`
	scoring.Evaluation
	// Threshold is the disagreement threshold the flag was computed with.
	Threshold float64 `json:"threshold"`
}

// Trend is the chartable snapshot series of one company.
type Trend struct {
	CompanyID   string           `json:"companyId"`
	Fingerprint string           `json:"fingerprint"`
	Points      []snapshot.Point `json:"points"`
}

// Fingerprint describes the current criteria set.
type Fingerprint struct {
	Hash            string `json:"hash"`
	Criteria        int    `json:"criteria"`
	EnabledCriteria int    `json:"enabledCriteria"`
}

// Stats is the service status read-out.
type Stats struct {
	Started         bool   `json:"started"`
	Revision        uint64 `json:"revision"`
	PersistMode     string `json:"persistMode"`
	StatePath       string `json:"statePath,omitempty"`
	PendingSaves    int    `json:"pendingSaves"`
	SavedRevision   uint64 `json:"savedRevision"`
	Companies       int    `json:"companies"`
	Criteria        int    `json:"criteria"`
	EnabledCriteria int    `json:"enabledCriteria"`
	Snapshots       int    `json:"snapshots"`
	SelectedCompany string `json:"selectedCompanyId"`
}
