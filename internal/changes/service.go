package changes

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/entities"
	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/goliatone/go-lifecycle/internal/transitions"
	"github.com/goliatone/go-lifecycle/pkg/activity"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	// VerbStatusChanged is the activity verb emitted for every applied change.
	VerbStatusChanged = "status.changed"
	defaultChannel    = "lifecycle"
)

var (
	ErrValidatorRequired = errors.New("changes: transition validator required")
	ErrStoreRequired     = errors.New("changes: entity store required")
	ErrEntityMismatch    = errors.New("changes: entity type does not carry the domain")
)

// Validator is the decision surface the service consults before writing.
type Validator interface {
	CanTransition(ctx context.Context, req transitions.Request) (transitions.Decision, error)
}

// ChangeRequest asks to move one entity column from Current to Proposed.
// EntityType may be left empty; it is derived from Domain.
type ChangeRequest struct {
	Actor          domain.Actor
	EntityType     domain.EntityType
	EntityID       uuid.UUID
	OrganizationID uuid.UUID
	Domain         domain.StatusDomain
	Current        domain.StatusName
	Proposed       domain.StatusName
}

// Result reports what happened to a change request.
type Result struct {
	Decision  transitions.Decision
	Applied   bool
	UpdatedAt time.Time
}

// Service applies validated status changes to host entities.
type Service interface {
	ChangeStatus(ctx context.Context, req ChangeRequest) (*Result, error)
}

// ServiceOption configures the change service.
type ServiceOption func(*service)

// WithNow overrides the clock used for the audit pair.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivityHooks registers hooks notified after each applied change.
func WithActivityHooks(hooks ...activity.Hook) ServiceOption {
	return func(s *service) {
		s.hooks = append(s.hooks, hooks...)
	}
}

// WithChannel overrides the activity channel name.
func WithChannel(channel string) ServiceOption {
	return func(s *service) {
		if channel != "" {
			s.channel = channel
		}
	}
}

type service struct {
	validator Validator
	store     entities.Store
	hooks     activity.Hooks
	channel   string
	now       func() time.Time
	logger    interfaces.Logger
}

// NewService constructs the change service.
func NewService(validator Validator, store entities.Store, opts ...ServiceOption) (Service, error) {
	if validator == nil {
		return nil, ErrValidatorRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	s := &service{
		validator: validator,
		store:     store,
		channel:   defaultChannel,
		now:       time.Now,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ChangeStatus validates the change and persists it with the audit pair.
// Denials are returned as the decision's error alongside the result. No-op
// changes are allowed but never written.
func (s *service) ChangeStatus(ctx context.Context, req ChangeRequest) (*Result, error) {
	entityType, err := resolveEntityType(req)
	if err != nil {
		return nil, err
	}
	logger := logging.WithScope(s.logger.WithContext(ctx), req.OrganizationID.String(), string(req.Domain))
	logger = logging.WithEntity(logger, string(entityType), req.EntityID.String())

	decision, err := s.validator.CanTransition(ctx, transitions.Request{
		Actor:          req.Actor,
		Domain:         req.Domain,
		OrganizationID: req.OrganizationID,
		Current:        req.Current,
		Proposed:       req.Proposed,
	})
	if err != nil {
		return nil, err
	}
	result := &Result{Decision: decision}
	if decision.Denied() {
		return result, decision.Err()
	}
	if decision.NoOp {
		logger.Debug("changes.noop", "status", string(req.Current))
		return result, nil
	}

	var actorID *uuid.UUID
	if req.Actor.ID != uuid.Nil {
		id := req.Actor.ID
		actorID = &id
	}
	now := s.now().UTC()
	expected := decision.Current
	if err := s.store.UpdateStatus(ctx, entities.UpdateStatusInput{
		EntityType:     entityType,
		EntityID:       req.EntityID,
		OrganizationID: req.OrganizationID,
		Field:          domain.FieldFor(req.Domain),
		Expected:       &expected,
		Value:          decision.Proposed,
		UpdatedBy:      actorID,
		UpdatedAt:      now,
	}); err != nil {
		if errors.Is(err, entities.ErrStatusConflict) {
			logger.Warn("changes.stale_current", "current", string(expected))
			return result, goerrors.Wrap(err, goerrors.CategoryValidation, "entity status changed since it was read").
				WithTextCode("CHANGE_STALE_STATUS")
		}
		return result, err
	}
	result.Applied = true
	result.UpdatedAt = now
	logger.Info("changes.applied", "from", string(req.Current), "to", string(req.Proposed))

	if len(s.hooks) > 0 {
		event := activity.Event{
			Verb:           VerbStatusChanged,
			ActorID:        req.Actor.ID.String(),
			TenantID:       req.OrganizationID.String(),
			ObjectType:     string(entityType),
			ObjectID:       req.EntityID.String(),
			Channel:        s.channel,
			DefinitionCode: string(entityType) + ":" + string(domain.FieldFor(req.Domain)),
			Metadata: map[string]any{
				"domain":     string(req.Domain),
				"from":       string(req.Current),
				"to":         string(req.Proposed),
				"transition": decision.Transition,
				"role":       string(decision.Role),
			},
			OccurredAt: now,
		}
		if err := s.hooks.Notify(ctx, event); err != nil {
			logger.Warn("changes.activity.failed", "error", err)
		}
	}
	return result, nil
}

func resolveEntityType(req ChangeRequest) (domain.EntityType, error) {
	errs := validation.Errors{}
	if req.EntityID == uuid.Nil {
		errs["entity_id"] = validation.ErrRequired
	}
	if req.OrganizationID == uuid.Nil {
		errs["organization_id"] = validation.ErrRequired
	}
	if !req.Domain.Valid() {
		errs["domain"] = domain.ErrUnknownDomain
	}
	if err := errs.Filter(); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "invalid status change request").
			WithTextCode("CHANGE_INVALID_INPUT")
	}

	expected := domain.EntityTypeFor(req.Domain)
	if req.EntityType == "" {
		return expected, nil
	}
	if req.EntityType != expected {
		return "", goerrors.Wrap(ErrEntityMismatch, goerrors.CategoryValidation, "entity type does not carry the domain").
			WithTextCode("CHANGE_ENTITY_MISMATCH")
	}
	return req.EntityType, nil
}
