package transitions

import (
	"context"
	"errors"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/goliatone/go-lifecycle/internal/statuses"
	"github.com/goliatone/go-lifecycle/internal/workflow"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
	"github.com/google/uuid"
)

// ErrStatusReaderRequired indicates the validator was built without a status source.
var ErrStatusReaderRequired = errors.New("transitions: status reader required")

// StatusReader is the slice of the status configuration service the validator needs.
type StatusReader interface {
	GetByName(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain, name domain.StatusName) (*statuses.StatusDefinition, error)
	ListActive(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain) ([]*statuses.StatusDefinition, error)
}

// Request describes a proposed status change.
type Request struct {
	Actor          domain.Actor
	Domain         domain.StatusDomain
	OrganizationID uuid.UUID
	Current        domain.StatusName
	Proposed       domain.StatusName
}

// Option configures the validator.
type Option func(*Validator)

// WithLogger attaches a logger used for decision diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithApprovalDefinition replaces the approval edge table.
func WithApprovalDefinition(engine *workflow.Engine) Option {
	return func(v *Validator) {
		if engine != nil {
			v.approval = engine
		}
	}
}

// Validator decides whether a status change is legal. It never writes.
type Validator struct {
	statuses StatusReader
	approval *workflow.Engine
	logger   interfaces.Logger
}

// NewValidator constructs a validator over the supplied status source.
func NewValidator(reader StatusReader, opts ...Option) *Validator {
	if reader == nil {
		panic(ErrStatusReaderRequired)
	}
	v := &Validator{
		statuses: reader,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	if v.approval == nil {
		v.approval = workflow.MustNewEngine(workflow.ApprovalDefinition())
	}
	return v
}

// CanTransition returns Allow or Deny for req. Storage failures while
// resolving the target are returned as errors, not denials.
func (v *Validator) CanTransition(ctx context.Context, req Request) (Decision, error) {
	req.Current = domain.NormalizeStatusName(string(req.Current))
	req.Proposed = domain.NormalizeStatusName(string(req.Proposed))
	if !req.Domain.Valid() {
		return Decision{}, domain.ErrUnknownDomain
	}

	if req.Proposed == req.Current {
		return allow(req, "", true), nil
	}

	target, err := v.statuses.GetByName(ctx, req.OrganizationID, req.Domain, req.Proposed)
	if err != nil {
		if errors.Is(err, statuses.ErrUnknownStatus) {
			return v.record(ctx, req, deny(req, ReasonInvalidTarget)), nil
		}
		return Decision{}, err
	}
	if target == nil || !target.IsActive {
		return v.record(ctx, req, deny(req, ReasonInvalidTarget)), nil
	}

	decision, err := v.gate(req)
	if err != nil {
		return Decision{}, err
	}
	return v.record(ctx, req, decision), nil
}

// AvailableTargets lists the active statuses the actor may move to from
// req.Current. req.Proposed is ignored.
func (v *Validator) AvailableTargets(ctx context.Context, req Request) ([]*statuses.StatusDefinition, error) {
	req.Current = domain.NormalizeStatusName(string(req.Current))
	if !req.Domain.Valid() {
		return nil, domain.ErrUnknownDomain
	}
	active, err := v.statuses.ListActive(ctx, req.OrganizationID, req.Domain)
	if err != nil {
		return nil, err
	}

	targets := make([]*statuses.StatusDefinition, 0, len(active))
	for _, def := range active {
		if def.Name == req.Current {
			continue
		}
		candidate := req
		candidate.Proposed = def.Name
		decision, err := v.gate(candidate)
		if err != nil {
			return nil, err
		}
		if decision.Allowed {
			targets = append(targets, def)
		}
	}
	return targets, nil
}

func (v *Validator) gate(req Request) (Decision, error) {
	if req.Domain != domain.DomainApproval {
		if req.Actor.IsContributor() {
			return allow(req, "", false), nil
		}
		return deny(req, ReasonUnauthorized), nil
	}

	transition, err := v.approval.Lookup(req.Current, req.Proposed)
	if err != nil {
		return deny(req, ReasonIllegalEdge), nil
	}
	allowed, err := v.approval.Allowed(transition, req.Actor)
	if err != nil {
		return Decision{}, err
	}
	if !allowed {
		return deny(req, ReasonUnauthorized), nil
	}
	return allow(req, transition.Name, false), nil
}

func (v *Validator) record(ctx context.Context, req Request, decision Decision) Decision {
	logger := v.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger = logging.WithScope(logger, req.OrganizationID.String(), string(req.Domain))
	fields := map[string]any{
		"current":  string(req.Current),
		"proposed": string(req.Proposed),
		"role":     string(req.Actor.Role),
	}
	if decision.Allowed {
		logging.WithFields(logger, fields).Debug("transitions.allowed")
		return decision
	}
	fields["reason"] = string(decision.Reason)
	logging.WithFields(logger, fields).Debug("transitions.denied")
	return decision
}
