// Package lifecycle manages per-organization status vocabularies, validates
// status and approval transitions, and migrates legacy status values into the
// unified vocabulary.
package lifecycle

import (
	"context"

	"github.com/goliatone/go-lifecycle/internal/changes"
	legacycmd "github.com/goliatone/go-lifecycle/internal/commands/legacy"
	"github.com/goliatone/go-lifecycle/internal/di"
	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/entities"
	"github.com/goliatone/go-lifecycle/internal/legacy"
	"github.com/goliatone/go-lifecycle/internal/statuscache"
	"github.com/goliatone/go-lifecycle/internal/statuses"
	"github.com/goliatone/go-lifecycle/internal/transitions"
	"github.com/goliatone/go-lifecycle/pkg/activity"
	"github.com/google/uuid"
)

type (
	StatusDomain = domain.StatusDomain
	StatusName   = domain.StatusName
	EntityType   = domain.EntityType
	Role         = domain.Role
	Actor        = domain.Actor

	StatusDefinition  = statuses.StatusDefinition
	StatusService     = statuses.Service
	UpsertInput       = statuses.UpsertInput
	DeactivateInput   = statuses.DeactivateInput
	ReorderInput      = statuses.ReorderInput
	EnsureActiveInput = statuses.EnsureActiveInput
	SeedResult        = statuses.SeedResult

	TransitionRequest   = transitions.Request
	Decision            = transitions.Decision
	DenialReason        = transitions.Reason
	TransitionValidator = transitions.Validator

	StatusCache   = statuscache.Cache
	StatusOptions = statuscache.Options
	StatusOption  = statuscache.Option

	ChangeService = changes.Service
	ChangeRequest = changes.ChangeRequest
	ChangeResult  = changes.Result

	MigrationReport = legacy.Report
	MigrationRunner = legacy.Runner

	EntityStore  = entities.Store
	ActivityHook = activity.Hook

	CommandHandlers = di.CommandHandlers
	CommandRegistry = di.CommandRegistry
	ReportFunc      = legacycmd.ReportFunc
)

const (
	DomainActivity = domain.DomainActivity
	DomainTask     = domain.DomainTask
	DomainApproval = domain.DomainApproval

	EntityTypeActivity = domain.EntityTypeActivity
	EntityTypeTask     = domain.EntityTypeTask

	RoleMember   = domain.RoleMember
	RoleApprover = domain.RoleApprover
	RoleAdmin    = domain.RoleAdmin

	ReasonInvalidTarget = transitions.ReasonInvalidTarget
	ReasonIllegalEdge   = transitions.ReasonIllegalEdge
	ReasonUnauthorized  = transitions.ReasonUnauthorized
)

var (
	ErrDenied        = transitions.ErrDenied
	ErrInvalidTarget = transitions.ErrInvalidTarget
	ErrIllegalEdge   = transitions.ErrIllegalEdge
	ErrUnauthorized  = transitions.ErrUnauthorized

	ErrNotConfigured = statuses.ErrNotConfigured
	ErrUnknownStatus = statuses.ErrUnknownStatus
	ErrDuplicateName = statuses.ErrDuplicateName
	ErrImmutableName = statuses.ErrImmutableName
	ErrIncompleteSet = statuses.ErrIncompleteSet

	ErrPartialMigration = legacy.ErrPartialFailure
	ErrStatusConflict   = entities.ErrStatusConflict
)

// Option customises module wiring.
type Option = di.Option

var (
	WithBunDB                = di.WithBunDB
	WithCache                = di.WithCache
	WithLoggerProvider       = di.WithLoggerProvider
	WithActivitySink         = di.WithActivitySink
	WithActivityHooks        = di.WithActivityHooks
	WithEntityStore          = di.WithEntityStore
	WithDefinitionRepository = di.WithDefinitionRepository
	WithStatusService        = di.WithStatusService
	WithClock                = di.WithClock
)

// Module is the entry point consumers embed.
type Module struct {
	container *di.Container
}

// New builds a module from cfg.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container.
func (m *Module) Container() *di.Container {
	return m.container
}

// Statuses returns the status configuration service.
func (m *Module) Statuses() StatusService {
	return m.container.StatusService()
}

// Validator returns the transition validator.
func (m *Module) Validator() *TransitionValidator {
	return m.container.Validator()
}

// Cache returns the client-side status option cache.
func (m *Module) Cache() *StatusCache {
	return m.container.StatusCache()
}

// Changes returns the service that validates and applies status changes.
func (m *Module) Changes() ChangeService {
	return m.container.ChangeService()
}

// CanTransition decides whether req may be applied. It never writes.
func (m *Module) CanTransition(ctx context.Context, req TransitionRequest) (Decision, error) {
	return m.container.Validator().CanTransition(ctx, req)
}

// AvailableTargets lists the statuses req.Actor could move to from req.Current.
func (m *Module) AvailableTargets(ctx context.Context, req TransitionRequest) ([]*StatusDefinition, error) {
	return m.container.Validator().AvailableTargets(ctx, req)
}

// StatusOptions returns the display options for a domain, falling back to the
// compiled defaults when the vocabulary cannot be read in time.
func (m *Module) StatusOptions(ctx context.Context, organizationID uuid.UUID, d StatusDomain) (StatusOptions, error) {
	return m.container.StatusCache().Get(ctx, organizationID, d)
}

// RunLegacyMigration rewrites legacy status values for one organization, or
// for all of them when organizationID is nil.
func (m *Module) RunLegacyMigration(ctx context.Context, organizationID *uuid.UUID) (*MigrationReport, error) {
	return m.container.LegacyRunner().Run(ctx, legacy.Options{
		OrganizationID: organizationID,
		EntityTypes:    m.container.Config.LegacyEntityTypes(),
	})
}

// SeedDefaults installs the default vocabularies for an organization.
func (m *Module) SeedDefaults(ctx context.Context, organizationID uuid.UUID, actorID *uuid.UUID) (*SeedResult, error) {
	return m.container.StatusService().SeedDefaults(ctx, organizationID, actorID)
}

// RegisterCommands registers the module's go-command handlers with reg.
func (m *Module) RegisterCommands(reg CommandRegistry, onReport ReportFunc) (*CommandHandlers, error) {
	return m.container.RegisterCommands(reg, onReport)
}
