package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDomain indicates a status domain outside the fixed activity/task/approval set.
var ErrUnknownDomain = errors.New("domain: unknown status domain")

// StatusDomain identifies one of the independently configured status categories.
type StatusDomain string

const (
	// DomainActivity governs Activity.status.
	DomainActivity StatusDomain = "activity"
	// DomainTask governs Task.status.
	DomainTask StatusDomain = "task"
	// DomainApproval governs Activity.approval_state.
	DomainApproval StatusDomain = "approval"
)

// AllDomains returns the fixed domain set in presentation order.
func AllDomains() []StatusDomain {
	return []StatusDomain{DomainActivity, DomainTask, DomainApproval}
}

// Valid reports whether the domain belongs to the fixed set.
func (d StatusDomain) Valid() bool {
	switch d {
	case DomainActivity, DomainTask, DomainApproval:
		return true
	default:
		return false
	}
}

func (d StatusDomain) String() string { return string(d) }

// ParseStatusDomain normalizes user input into a StatusDomain.
func ParseStatusDomain(input string) (StatusDomain, error) {
	d := StatusDomain(strings.ToLower(strings.TrimSpace(input)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDomain, input)
	}
	return d, nil
}

// StatusName is the canonical machine value persisted on entities.
type StatusName string

// NormalizeStatusName trims surrounding whitespace. Names are case sensitive
// because the unified vocabulary mixes casing ("Not Started", "draft").
func NormalizeStatusName(input string) StatusName {
	return StatusName(strings.TrimSpace(input))
}

func (n StatusName) String() string { return string(n) }

// EntityType identifies the tracker entity constrained by a domain.
type EntityType string

const (
	EntityTypeActivity EntityType = "activity"
	EntityTypeTask     EntityType = "task"
)

// StatusField identifies the entity column holding a domain value.
type StatusField string

const (
	FieldStatus        StatusField = "status"
	FieldApprovalState StatusField = "approval_state"
)

// EntityTypeFor returns the entity whose column the domain constrains.
func EntityTypeFor(d StatusDomain) EntityType {
	if d == DomainTask {
		return EntityTypeTask
	}
	return EntityTypeActivity
}

// FieldFor returns the entity column the domain constrains.
func FieldFor(d StatusDomain) StatusField {
	if d == DomainApproval {
		return FieldApprovalState
	}
	return FieldStatus
}
