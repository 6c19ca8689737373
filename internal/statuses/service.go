package statuses

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/identity"
	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
	"github.com/google/uuid"
)

// Service is the read and admin-write API over organization vocabularies.
type Service interface {
	ListActive(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain) ([]*StatusDefinition, error)
	ListAll(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain) ([]*StatusDefinition, error)
	GetByName(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain, name domain.StatusName) (*StatusDefinition, error)
	Upsert(ctx context.Context, input UpsertInput) (*StatusDefinition, error)
	Deactivate(ctx context.Context, input DeactivateInput) (*StatusDefinition, error)
	Reorder(ctx context.Context, input ReorderInput) ([]*StatusDefinition, error)
	EnsureActive(ctx context.Context, input EnsureActiveInput) (*StatusDefinition, bool, error)
	SeedDefaults(ctx context.Context, organizationID uuid.UUID, actorID *uuid.UUID) (*SeedResult, error)
}

// IDGenerator produces identifiers for newly created definitions.
type IDGenerator func() uuid.UUID

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides identifier generation for created definitions.
func WithIDGenerator(gen IDGenerator) ServiceOption {
	return func(s *service) {
		if gen != nil {
			s.id = gen
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaults overrides the default vocabulary used for seeding.
func WithDefaults(defaults *Defaults) ServiceOption {
	return func(s *service) {
		if defaults != nil {
			s.defaults = defaults
		}
	}
}

type service struct {
	repo     DefinitionRepository
	id       IDGenerator
	now      func() time.Time
	logger   interfaces.Logger
	defaults *Defaults
	locks    *scopeLocks
}

// NewService constructs a status configuration service.
func NewService(repo DefinitionRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{
		repo:   repo,
		id:     uuid.New,
		now:    time.Now,
		logger: logging.NoOp(),
		locks:  newScopeLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaults == nil {
		s.defaults = SystemDefaults()
	}
	return s
}

func (s *service) ListActive(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain) ([]*StatusDefinition, error) {
	if err := validateScope(organizationID, d); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByScope(ctx, scopeFor(organizationID, d), true)
	if err != nil {
		return nil, err
	}
	records = filterActive(records)
	if len(records) == 0 {
		return nil, classify(ErrNotConfigured)
	}
	sortDefinitions(records)
	return cloneDefinitions(records), nil
}

func (s *service) ListAll(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain) ([]*StatusDefinition, error) {
	if err := validateScope(organizationID, d); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByScope(ctx, scopeFor(organizationID, d), false)
	if err != nil {
		return nil, err
	}
	sortDefinitions(records)
	return cloneDefinitions(records), nil
}

func (s *service) GetByName(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain, name domain.StatusName) (*StatusDefinition, error) {
	if err := validateScope(organizationID, d); err != nil {
		return nil, err
	}
	name = domain.NormalizeStatusName(string(name))
	if name == "" {
		return nil, classify(ErrUnknownStatus)
	}
	records, err := s.repo.ListByName(ctx, scopeFor(organizationID, d), name)
	if err != nil {
		return nil, err
	}
	picked := pickByName(records)
	if picked == nil {
		return nil, classify(ErrUnknownStatus)
	}
	return cloneDefinition(picked), nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*StatusDefinition, error) {
	creating := input.ID == uuid.Nil
	input.Name = domain.NormalizeStatusName(string(input.Name))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Color = normalizeColor(input.Color)
	if err := validateUpsert(input, creating); err != nil {
		return nil, err
	}

	scope := scopeFor(input.OrganizationID, input.Domain)
	unlock := s.locks.lock(scope)
	defer unlock()

	logger := s.scopedLogger(ctx, scope)
	if creating {
		created, err := s.create(ctx, scope, input)
		if err != nil {
			return nil, classify(err)
		}
		logging.WithFields(logger, map[string]any{
			"status_id": created.ID.String(),
			"name":      string(created.Name),
		}).Info("statuses.upsert.created")
		return created, nil
	}

	existing, err := s.loadInScope(ctx, scope, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Name != "" && input.Name != existing.Name {
		return nil, classify(ErrImmutableName)
	}
	if input.DisplayName != "" {
		existing.DisplayName = input.DisplayName
	}
	if input.Color != "" {
		existing.Color = input.Color
	}
	if input.OrderIndex != nil {
		existing.OrderIndex = *input.OrderIndex
	}
	existing.UpdatedBy = cloneUUID(input.ActorID)
	existing.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, classify(translateRepoError(err, ErrDefinitionNotFound))
	}
	s.invalidate(ctx, logger)
	logging.WithFields(logger, map[string]any{
		"status_id": updated.ID.String(),
	}).Info("statuses.upsert.updated")
	return cloneDefinition(updated), nil
}

func (s *service) create(ctx context.Context, scope Scope, input UpsertInput) (*StatusDefinition, error) {
	active, err := s.repo.ListByScope(ctx, scope, true)
	if err != nil {
		return nil, err
	}
	active = filterActive(active)
	for _, def := range active {
		if def.Name == input.Name {
			return nil, ErrDuplicateName
		}
	}

	orderIndex := nextOrderIndex(active)
	if input.OrderIndex != nil {
		orderIndex = *input.OrderIndex
	}
	displayName := input.DisplayName
	if displayName == "" {
		displayName = string(input.Name)
	}
	now := s.now().UTC()
	record := &StatusDefinition{
		ID:             s.id(),
		OrganizationID: scope.OrganizationID,
		Domain:         scope.Domain,
		Name:           input.Name,
		DisplayName:    displayName,
		Color:          input.Color,
		OrderIndex:     orderIndex,
		IsActive:       true,
		UpdatedBy:      cloneUUID(input.ActorID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, s.scopedLogger(ctx, scope))
	return cloneDefinition(created), nil
}

func (s *service) Deactivate(ctx context.Context, input DeactivateInput) (*StatusDefinition, error) {
	if err := validateScope(input.OrganizationID, input.Domain); err != nil {
		return nil, err
	}
	if input.ID == uuid.Nil {
		return nil, classify(ErrDefinitionNotFound)
	}

	scope := scopeFor(input.OrganizationID, input.Domain)
	unlock := s.locks.lock(scope)
	defer unlock()

	existing, err := s.loadInScope(ctx, scope, input.ID)
	if err != nil {
		return nil, err
	}
	if !existing.IsActive {
		return existing, nil
	}
	existing.IsActive = false
	existing.UpdatedBy = cloneUUID(input.ActorID)
	existing.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, classify(translateRepoError(err, ErrDefinitionNotFound))
	}
	logger := s.scopedLogger(ctx, scope)
	s.invalidate(ctx, logger)
	logging.WithFields(logger, map[string]any{
		"status_id": updated.ID.String(),
		"name":      string(updated.Name),
	}).Info("statuses.deactivated")
	return cloneDefinition(updated), nil
}

func (s *service) Reorder(ctx context.Context, input ReorderInput) ([]*StatusDefinition, error) {
	if err := validateScope(input.OrganizationID, input.Domain); err != nil {
		return nil, err
	}

	scope := scopeFor(input.OrganizationID, input.Domain)
	unlock := s.locks.lock(scope)
	defer unlock()

	ordered := append([]uuid.UUID(nil), input.OrderedIDs...)
	if err := s.repo.ApplyOrder(ctx, scope, ordered, cloneUUID(input.ActorID), s.now().UTC()); err != nil {
		return nil, classify(err)
	}
	logger := s.scopedLogger(ctx, scope)
	s.invalidate(ctx, logger)

	records, err := s.repo.ListByScope(ctx, scope, true)
	if err != nil {
		return nil, err
	}
	records = filterActive(records)
	sortDefinitions(records)
	logging.WithFields(logger, map[string]any{
		"count": len(records),
	}).Info("statuses.reordered")
	return cloneDefinitions(records), nil
}

func (s *service) EnsureActive(ctx context.Context, input EnsureActiveInput) (*StatusDefinition, bool, error) {
	if err := validateScope(input.OrganizationID, input.Domain); err != nil {
		return nil, false, err
	}
	name := domain.NormalizeStatusName(string(input.Name))
	if name == "" {
		return nil, false, invalidInput(validation.Errors{"name": ErrNameRequired})
	}

	scope := scopeFor(input.OrganizationID, input.Domain)
	unlock := s.locks.lock(scope)
	defer unlock()

	records, err := s.repo.ListByName(ctx, scope, name)
	if err != nil {
		return nil, false, err
	}
	existing := pickByName(records)
	if existing != nil && existing.IsActive {
		return cloneDefinition(existing), false, nil
	}

	active, err := s.repo.ListByScope(ctx, scope, true)
	if err != nil {
		return nil, false, err
	}
	now := s.now().UTC()
	logger := s.scopedLogger(ctx, scope)

	if existing != nil {
		existing.IsActive = true
		existing.OrderIndex = nextOrderIndex(filterActive(active))
		existing.UpdatedBy = cloneUUID(input.ActorID)
		existing.UpdatedAt = now
		updated, err := s.repo.Update(ctx, existing)
		if err != nil {
			return nil, false, classify(err)
		}
		s.invalidate(ctx, logger)
		logging.WithFields(logger, map[string]any{
			"status_id": updated.ID.String(),
			"name":      string(name),
		}).Info("statuses.ensure_active.reactivated")
		return cloneDefinition(updated), true, nil
	}

	entry, ok := s.defaults.Lookup(scope.Domain, name)
	if !ok {
		entry = DefaultEntry{Name: name, DisplayName: string(name), Color: fallbackColor}
	}
	created, err := s.create(ctx, scope, UpsertInput{
		OrganizationID: scope.OrganizationID,
		Domain:         scope.Domain,
		Name:           name,
		DisplayName:    entry.DisplayName,
		Color:          entry.Color,
		ActorID:        input.ActorID,
	})
	if err != nil {
		return nil, false, classify(err)
	}
	logging.WithFields(logger, map[string]any{
		"status_id": created.ID.String(),
		"name":      string(name),
	}).Info("statuses.ensure_active.created")
	return created, true, nil
}

func (s *service) SeedDefaults(ctx context.Context, organizationID uuid.UUID, actorID *uuid.UUID) (*SeedResult, error) {
	if organizationID == uuid.Nil {
		return nil, invalidInput(validation.Errors{"organization_id": ErrOrganizationRequired})
	}
	result := &SeedResult{
		OrganizationID:  organizationID,
		DefaultsVersion: s.defaults.Version,
		Created:         make(map[domain.StatusDomain]int),
	}
	for _, d := range domain.AllDomains() {
		count, err := s.seedDomain(ctx, scopeFor(organizationID, d), actorID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			result.Skipped = append(result.Skipped, d)
			continue
		}
		result.Created[d] = count
	}
	return result, nil
}

func (s *service) seedDomain(ctx context.Context, scope Scope, actorID *uuid.UUID) (int, error) {
	unlock := s.locks.lock(scope)
	defer unlock()

	existing, err := s.repo.ListByScope(ctx, scope, false)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	now := s.now().UTC()
	created := 0
	for idx, entry := range s.defaults.For(scope.Domain) {
		record := &StatusDefinition{
			ID:              identity.SeededStatusUUID(scope.OrganizationID, string(scope.Domain), string(entry.Name), s.defaults.Version),
			OrganizationID:  scope.OrganizationID,
			Domain:          scope.Domain,
			Name:            entry.Name,
			DisplayName:     entry.DisplayName,
			Color:           entry.Color,
			OrderIndex:      idx,
			IsActive:        true,
			IsSystem:        true,
			DefaultsVersion: s.defaults.Version,
			UpdatedBy:       cloneUUID(actorID),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := s.repo.Create(ctx, record); err != nil {
			return created, classify(err)
		}
		created++
	}
	logger := s.scopedLogger(ctx, scope)
	s.invalidate(ctx, logger)
	logging.WithFields(logger, map[string]any{
		"count":   created,
		"version": s.defaults.Version,
	}).Info("statuses.seeded")
	return created, nil
}

func (s *service) loadInScope(ctx context.Context, scope Scope, id uuid.UUID) (*StatusDefinition, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, classify(translateRepoError(err, ErrDefinitionNotFound))
	}
	if existing.OrganizationID != scope.OrganizationID || existing.Domain != scope.Domain {
		return nil, classify(ErrDefinitionNotFound)
	}
	return existing, nil
}

func (s *service) invalidate(ctx context.Context, logger interfaces.Logger) {
	if err := s.repo.InvalidateCache(ctx); err != nil {
		logger.Warn("statuses.cache.invalidate_failed", "error", err)
	}
}

func (s *service) scopedLogger(ctx context.Context, scope Scope) interfaces.Logger {
	logger := s.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logging.WithScope(logger, scope.OrganizationID.String(), string(scope.Domain))
}

func validateScope(organizationID uuid.UUID, d domain.StatusDomain) error {
	errs := validation.Errors{}
	if organizationID == uuid.Nil {
		errs["organization_id"] = ErrOrganizationRequired
	}
	if !d.Valid() {
		errs["domain"] = domain.ErrUnknownDomain
	}
	if err := errs.Filter(); err != nil {
		return invalidInput(err)
	}
	return nil
}

func validateUpsert(input UpsertInput, creating bool) error {
	errs := validation.Errors{}
	if input.OrganizationID == uuid.Nil {
		errs["organization_id"] = ErrOrganizationRequired
	}
	if !input.Domain.Valid() {
		errs["domain"] = domain.ErrUnknownDomain
	}
	if creating {
		if input.Name == "" {
			errs["name"] = ErrNameRequired
		}
		if input.Color == "" {
			errs["color"] = ErrColorRequired
		}
	}
	if input.Name != "" {
		if err := validation.Validate(string(input.Name), validation.Length(1, 128)); err != nil {
			errs["name"] = err
		}
	}
	if input.DisplayName != "" {
		if err := validation.Validate(input.DisplayName, validation.Length(1, 128)); err != nil {
			errs["display_name"] = err
		}
	}
	if input.OrderIndex != nil && *input.OrderIndex < 0 {
		errs["order_index"] = ErrInvalidOrderIndex
	}
	if err := errs.Filter(); err != nil {
		return invalidInput(err)
	}
	return nil
}
