package legacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/entities"
	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/goliatone/go-lifecycle/internal/statuses"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	ErrStatusServiceRequired    = errors.New("legacy: status service required")
	ErrEntityStoreRequired      = errors.New("legacy: entity store required")
	ErrPartialFailure           = errors.New("legacy: migration finished with failed pairs")
	ErrOrganizationsUnavailable = errors.New("legacy: entity store cannot list organizations for a global run")
)

// VocabularyEnsurer is the slice of the status service the runner needs.
type VocabularyEnsurer interface {
	EnsureActive(ctx context.Context, input statuses.EnsureActiveInput) (*statuses.StatusDefinition, bool, error)
}

// Options scopes a run. A nil OrganizationID migrates every organization.
type Options struct {
	OrganizationID *uuid.UUID
	EntityTypes    []domain.EntityType
	ActorID        *uuid.UUID
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithLogger attaches a logger used for per-pair progress.
func WithLogger(logger interfaces.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithEntityTypes sets the entity types migrated when Options leaves them empty.
func WithEntityTypes(types ...domain.EntityType) RunnerOption {
	return func(r *Runner) {
		if len(types) > 0 {
			r.entityTypes = append([]domain.EntityType(nil), types...)
		}
	}
}

// Runner rewrites deprecated status literals to the unified vocabulary.
// Each pair is its own statement, so a failed run can simply be re-run.
type Runner struct {
	statuses    VocabularyEnsurer
	store       entities.Store
	logger      interfaces.Logger
	now         func() time.Time
	entityTypes []domain.EntityType
}

// NewRunner constructs a migration runner.
func NewRunner(statusService VocabularyEnsurer, store entities.Store, opts ...RunnerOption) (*Runner, error) {
	if statusService == nil {
		return nil, ErrStatusServiceRequired
	}
	if store == nil {
		return nil, ErrEntityStoreRequired
	}
	r := &Runner{
		statuses:    statusService,
		store:       store,
		logger:      logging.NoOp(),
		now:         time.Now,
		entityTypes: []domain.EntityType{domain.EntityTypeActivity, domain.EntityTypeTask},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Run executes the mapping table. The report is always returned; the error
// wraps ErrPartialFailure when any pair failed.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	entityTypes := opts.EntityTypes
	if len(entityTypes) == 0 {
		entityTypes = r.entityTypes
	}
	report := newReport(opts.OrganizationID, r.now().UTC())
	logger := r.logger.WithContext(ctx)
	if opts.OrganizationID != nil {
		logger = logging.WithScope(logger, opts.OrganizationID.String(), "")
	}
	logger.Info("legacy.run.started", "entity_types", len(entityTypes))

	pairs := domain.LegacyStatusMapping()
	for _, entityType := range entityTypes {
		if err := entities.ValidateField(entityType, domain.FieldStatus); err != nil {
			report.FinishedAt = r.now().UTC()
			return report, err
		}

		orgs, err := r.organizations(ctx, entityType, opts.OrganizationID)
		if err != nil {
			for _, pair := range pairs {
				report.addError(pair, entityType, err.Error())
			}
			logger.Error("legacy.organizations.failed", "entity_type", string(entityType), "error", err)
			continue
		}

		for _, pair := range pairs {
			if err := ctx.Err(); err != nil {
				report.FinishedAt = r.now().UTC()
				return report, err
			}
			affected, err := r.runPair(ctx, report, orgs, entityType, pair, opts)
			if err != nil {
				report.addError(pair, entityType, err.Error())
				logging.WithFields(logger, map[string]any{
					"from":        string(pair.From),
					"to":          string(pair.To),
					"entity_type": string(entityType),
				}).Error("legacy.pair.failed", "error", err)
				continue
			}
			report.addCount(pair, entityType, affected)
			logging.WithFields(logger, map[string]any{
				"from":        string(pair.From),
				"to":          string(pair.To),
				"entity_type": string(entityType),
				"affected":    affected,
			}).Info("legacy.pair.completed")
		}
	}

	report.FinishedAt = r.now().UTC()
	logger.Info("legacy.run.finished", "total", report.Total(), "failed_pairs", len(report.Errors))
	if report.Failed() {
		return report, fmt.Errorf("%w: %d failed", ErrPartialFailure, len(report.Errors))
	}
	return report, nil
}

// runPair only touches organizations that still hold pair.From rows, so a
// rerun never reactivates a target an admin has since deactivated.
func (r *Runner) runPair(ctx context.Context, report *Report, orgs []uuid.UUID, entityType domain.EntityType, pair domain.LegacyPair, opts Options) (int64, error) {
	statusDomain := statusDomainFor(entityType)
	rewriter, bulk := r.store.(entities.BulkRewriter)

	var affected int64
	for _, org := range orgs {
		org := org
		ids, err := r.store.FindByStatus(ctx, entityType, &org, domain.FieldStatus, pair.From)
		if err != nil {
			return affected, err
		}
		if len(ids) == 0 {
			continue
		}

		def, changed, err := r.statuses.EnsureActive(ctx, statuses.EnsureActiveInput{
			OrganizationID: org,
			Domain:         statusDomain,
			Name:           pair.To,
			ActorID:        opts.ActorID,
		})
		if err != nil {
			return affected, fmt.Errorf("ensure %q active for %s: %w", pair.To, org, err)
		}
		if changed {
			report.Ensured = append(report.Ensured, EnsuredStatus{
				OrganizationID: org,
				Domain:         statusDomain,
				Name:           def.Name,
			})
		}

		if bulk {
			n, err := rewriter.RewriteStatus(ctx, entities.RewriteInput{
				EntityType:     entityType,
				OrganizationID: &org,
				Field:          domain.FieldStatus,
				From:           pair.From,
				To:             pair.To,
				UpdatedBy:      opts.ActorID,
				UpdatedAt:      r.now().UTC(),
			})
			affected += n
			if err != nil {
				return affected, err
			}
			continue
		}

		for _, id := range ids {
			if err := r.store.UpdateStatus(ctx, entities.UpdateStatusInput{
				EntityType:     entityType,
				EntityID:       id,
				OrganizationID: org,
				Field:          domain.FieldStatus,
				Value:          pair.To,
				UpdatedBy:      opts.ActorID,
				UpdatedAt:      r.now().UTC(),
			}); err != nil {
				return affected, err
			}
			affected++
		}
	}
	return affected, nil
}

func (r *Runner) organizations(ctx context.Context, entityType domain.EntityType, scoped *uuid.UUID) ([]uuid.UUID, error) {
	if scoped != nil {
		return []uuid.UUID{*scoped}, nil
	}
	lister, ok := r.store.(entities.OrganizationLister)
	if !ok {
		return nil, ErrOrganizationsUnavailable
	}
	return lister.ListOrganizations(ctx, entityType)
}

func statusDomainFor(entityType domain.EntityType) domain.StatusDomain {
	if entityType == domain.EntityTypeTask {
		return domain.DomainTask
	}
	return domain.DomainActivity
}
