package legacy

import (
	"time"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
)

// PairCount is the number of rows one pair rewrote for one entity type.
type PairCount struct {
	Pair       domain.LegacyPair
	EntityType domain.EntityType
	Affected   int64
}

// PairError records a pair that failed for one entity type. Other pairs
// still run.
type PairError struct {
	Pair       domain.LegacyPair
	EntityType domain.EntityType
	Message    string
}

// EnsuredStatus is a unified value that had to be added to (or reactivated
// in) an organization's vocabulary before rows were rewritten.
type EnsuredStatus struct {
	OrganizationID uuid.UUID
	Domain         domain.StatusDomain
	Name           domain.StatusName
}

// Report summarizes a migration run. It is returned even when the run
// fails part way.
type Report struct {
	OrganizationID *uuid.UUID
	// PairCounts maps each legacy literal to the rows rewritten across entity types.
	PairCounts map[domain.StatusName]int64
	Details    []PairCount
	Errors     []PairError
	Ensured    []EnsuredStatus
	StartedAt  time.Time
	FinishedAt time.Time
}

func newReport(org *uuid.UUID, startedAt time.Time) *Report {
	report := &Report{
		OrganizationID: org,
		PairCounts:     make(map[domain.StatusName]int64),
		StartedAt:      startedAt,
	}
	for _, pair := range domain.LegacyStatusMapping() {
		report.PairCounts[pair.From] = 0
	}
	return report
}

// Total returns the number of rows rewritten in the run.
func (r *Report) Total() int64 {
	if r == nil {
		return 0
	}
	var total int64
	for _, count := range r.PairCounts {
		total += count
	}
	return total
}

// Failed reports whether at least one pair failed.
func (r *Report) Failed() bool {
	return r != nil && len(r.Errors) > 0
}

func (r *Report) addCount(pair domain.LegacyPair, entityType domain.EntityType, affected int64) {
	r.PairCounts[pair.From] += affected
	r.Details = append(r.Details, PairCount{Pair: pair, EntityType: entityType, Affected: affected})
}

func (r *Report) addError(pair domain.LegacyPair, entityType domain.EntityType, message string) {
	r.Errors = append(r.Errors, PairError{Pair: pair, EntityType: entityType, Message: message})
}
