package transitions

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lifecycle/internal/domain"
)

// Reason explains a denial.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonInvalidTarget Reason = "invalid_target"
	ReasonIllegalEdge   Reason = "illegal_edge"
	ReasonUnauthorized  Reason = "unauthorized"
)

var (
	ErrDenied        = errors.New("transitions: transition denied")
	ErrInvalidTarget = errors.New("transitions: target status is unknown or inactive")
	ErrIllegalEdge   = errors.New("transitions: edge not allowed")
	ErrUnauthorized  = errors.New("transitions: actor not permitted")
)

const (
	codeInvalidTarget = "TRANSITION_INVALID_TARGET"
	codeIllegalEdge   = "TRANSITION_ILLEGAL_EDGE"
	codeUnauthorized  = "TRANSITION_UNAUTHORIZED"
)

// Decision is the outcome of a transition check. Denials carry the context
// needed to render a precise message.
type Decision struct {
	Allowed    bool
	NoOp       bool
	Reason     Reason
	Domain     domain.StatusDomain
	Current    domain.StatusName
	Proposed   domain.StatusName
	Role       domain.Role
	Transition string
}

// Denied reports whether the decision rejected the transition.
func (d Decision) Denied() bool {
	return !d.Allowed
}

// Err converts a denial into a categorized error. Allowed decisions return nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	denied := &DeniedError{
		Reason:   d.Reason,
		Domain:   d.Domain,
		Current:  d.Current,
		Proposed: d.Proposed,
		Role:     d.Role,
	}
	return goerrors.Wrap(denied, goerrors.CategoryValidation, denied.Error()).
		WithTextCode(d.Reason.code())
}

// DeniedError describes a rejected transition.
type DeniedError struct {
	Reason   Reason
	Domain   domain.StatusDomain
	Current  domain.StatusName
	Proposed domain.StatusName
	Role     domain.Role
}

func (e *DeniedError) Error() string {
	role := string(e.Role)
	if role == "" {
		role = "unknown"
	}
	return fmt.Sprintf("%s status change %q -> %q denied for role %s: %s",
		e.Domain, e.Current, e.Proposed, role, e.Reason)
}

// Unwrap exposes the reason sentinel so callers can use errors.Is.
func (e *DeniedError) Unwrap() []error {
	return []error{ErrDenied, e.Reason.sentinel()}
}

func (r Reason) sentinel() error {
	switch r {
	case ReasonInvalidTarget:
		return ErrInvalidTarget
	case ReasonIllegalEdge:
		return ErrIllegalEdge
	case ReasonUnauthorized:
		return ErrUnauthorized
	default:
		return ErrDenied
	}
}

func (r Reason) code() string {
	switch r {
	case ReasonInvalidTarget:
		return codeInvalidTarget
	case ReasonIllegalEdge:
		return codeIllegalEdge
	default:
		return codeUnauthorized
	}
}

func allow(req Request, transition string, noop bool) Decision {
	return Decision{
		Allowed:    true,
		NoOp:       noop,
		Domain:     req.Domain,
		Current:    req.Current,
		Proposed:   req.Proposed,
		Role:       req.Actor.Role,
		Transition: transition,
	}
}

func deny(req Request, reason Reason) Decision {
	return Decision{
		Reason:   reason,
		Domain:   req.Domain,
		Current:  req.Current,
		Proposed: req.Proposed,
		Role:     req.Actor.Role,
	}
}
