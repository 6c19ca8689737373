package statuses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-lifecycle/internal/domain"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const statusDefinitionNamespace = "status_definition"

// BunDefinitionRepository implements DefinitionRepository with optional caching.
// Only id lookups go through the cache. Scoped lists are built from query
// closures, which the cache key serializer cannot tell apart, so they always
// read through the base repository.
type BunDefinitionRepository struct {
	db           *bun.DB
	repo         repository.Repository[*StatusDefinition]
	base         repository.Repository[*StatusDefinition]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunDefinitionRepository creates a status definition repository without caching.
func NewBunDefinitionRepository(db *bun.DB) *BunDefinitionRepository {
	return NewBunDefinitionRepositoryWithCache(db, nil, nil)
}

// NewBunDefinitionRepositoryWithCache creates a status definition repository with caching services.
func NewBunDefinitionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunDefinitionRepository {
	base := NewDefinitionRepository(db)
	cached := base
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		cached = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = statusDefinitionNamespace + cache.KeySeparator
	}
	return &BunDefinitionRepository{
		db:           db,
		repo:         cached,
		base:         base,
		cacheService: svc,
		cachePrefix:  prefix,
	}
}

func (r *BunDefinitionRepository) Create(ctx context.Context, def *StatusDefinition) (*StatusDefinition, error) {
	record, err := r.repo.Create(ctx, def)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return record, nil
}

func (r *BunDefinitionRepository) Update(ctx context.Context, def *StatusDefinition) (*StatusDefinition, error) {
	updated, err := r.repo.Update(ctx, def,
		repository.UpdateByID(def.ID.String()),
		repository.UpdateColumns(
			"display_name",
			"color",
			"order_index",
			"is_active",
			"is_system",
			"defaults_version",
			"updated_by",
			"updated_at",
		),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, mapRepositoryError(err, "status_definition", def.ID.String())
	}
	return updated, nil
}

func (r *BunDefinitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*StatusDefinition, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "status_definition", id.String())
	}
	return record, nil
}

func (r *BunDefinitionRepository) ListByScope(ctx context.Context, scope Scope, activeOnly bool) ([]*StatusDefinition, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("?TableAlias.organization_id = ?", scope.OrganizationID).
				Where("?TableAlias.domain = ?", scope.Domain)
			if activeOnly {
				q = q.Where("?TableAlias.is_active = ?", true)
			}
			return q.OrderExpr("?TableAlias.order_index ASC").
				OrderExpr("?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	sortDefinitions(records)
	return records, nil
}

func (r *BunDefinitionRepository) ListByName(ctx context.Context, scope Scope, name domain.StatusName) ([]*StatusDefinition, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.organization_id = ?", scope.OrganizationID).
				Where("?TableAlias.domain = ?", scope.Domain).
				Where("?TableAlias.name = ?", name).
				OrderExpr("?TableAlias.order_index ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	sortDefinitions(records)
	return records, nil
}

func (r *BunDefinitionRepository) ApplyOrder(ctx context.Context, scope Scope, orderedIDs []uuid.UUID, updatedBy *uuid.UUID, updatedAt time.Time) error {
	if r.db == nil {
		return fmt.Errorf("status definition repository: database not configured")
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var active []*StatusDefinition
		q := tx.NewSelect().
			Model(&active).
			Column("id").
			Where("?TableAlias.organization_id = ?", scope.OrganizationID).
			Where("?TableAlias.domain = ?", scope.Domain).
			Where("?TableAlias.is_active = ?", true)
		if tx.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			return fmt.Errorf("list active status ids: %w", err)
		}
		if !sameIDSet(active, orderedIDs) {
			return ErrIncompleteSet
		}

		for idx, id := range orderedIDs {
			if _, err := tx.NewUpdate().
				Model((*StatusDefinition)(nil)).
				Set("order_index = ?", idx).
				Set("updated_by = ?", updatedBy).
				Set("updated_at = ?", updatedAt).
				Where("id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("update status order: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

func (r *BunDefinitionRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
