package entities

import (
	"context"
	"fmt"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunStore implements Store, BulkRewriter and OrganizationLister over the
// activities and tasks tables.
type BunStore struct {
	db bun.IDB
}

// NewBunStore creates an entity store backed by db.
func NewBunStore(db bun.IDB) *BunStore {
	return &BunStore{db: db}
}

var (
	_ Store              = (*BunStore)(nil)
	_ BulkRewriter       = (*BunStore)(nil)
	_ OrganizationLister = (*BunStore)(nil)
)

func (s *BunStore) UpdateStatus(ctx context.Context, input UpdateStatusInput) error {
	model, err := modelFor(input.EntityType, input.Field)
	if err != nil {
		return err
	}
	q := s.db.NewUpdate().
		Model(model).
		Set("? = ?", bun.Ident(string(input.Field)), input.Value).
		Set("updated_by = ?", input.UpdatedBy).
		Set("updated_at = ?", input.UpdatedAt).
		Where("id = ?", input.EntityID).
		Where("organization_id = ?", input.OrganizationID)
	if input.Expected != nil {
		q = q.Where("? = ?", bun.Ident(string(input.Field)), *input.Expected)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", input.EntityType, input.Field, err)
	}
	affected, _ := res.RowsAffected()
	if affected > 0 {
		return nil
	}
	if input.Expected != nil {
		exists, err := s.db.NewSelect().
			Model(model).
			Where("id = ?", input.EntityID).
			Where("organization_id = ?", input.OrganizationID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check %s %s: %w", input.EntityType, input.EntityID, err)
		}
		if exists {
			return fmt.Errorf("%w: %s %s is no longer %q", ErrStatusConflict, input.EntityType, input.EntityID, *input.Expected)
		}
	}
	return fmt.Errorf("%w: %s %s", ErrEntityNotFound, input.EntityType, input.EntityID)
}

func (s *BunStore) FindByStatus(ctx context.Context, entityType domain.EntityType, organizationID *uuid.UUID, field domain.StatusField, value domain.StatusName) ([]uuid.UUID, error) {
	model, err := modelFor(entityType, field)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	q := s.db.NewSelect().
		Model(model).
		Column("id").
		Where("? = ?", bun.Ident(string(field)), value).
		OrderExpr("id ASC")
	if organizationID != nil {
		q = q.Where("organization_id = ?", *organizationID)
	}
	if err := q.Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("find %s by %s: %w", entityType, field, err)
	}
	return ids, nil
}

func (s *BunStore) RewriteStatus(ctx context.Context, input RewriteInput) (int64, error) {
	model, err := modelFor(input.EntityType, input.Field)
	if err != nil {
		return 0, err
	}
	q := s.db.NewUpdate().
		Model(model).
		Set("? = ?", bun.Ident(string(input.Field)), input.To).
		Set("updated_at = ?", input.UpdatedAt).
		Where("? = ?", bun.Ident(string(input.Field)), input.From)
	if input.UpdatedBy != nil {
		q = q.Set("updated_by = ?", *input.UpdatedBy)
	}
	if input.OrganizationID != nil {
		q = q.Where("organization_id = ?", *input.OrganizationID)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("rewrite %s %s: %w", input.EntityType, input.Field, err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (s *BunStore) ListOrganizations(ctx context.Context, entityType domain.EntityType) ([]uuid.UUID, error) {
	model, err := modelFor(entityType, domain.FieldStatus)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	if err := s.db.NewSelect().
		Model(model).
		ColumnExpr("DISTINCT organization_id").
		OrderExpr("organization_id ASC").
		Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("list %s organizations: %w", entityType, err)
	}
	return ids, nil
}

func modelFor(entityType domain.EntityType, field domain.StatusField) (any, error) {
	if err := ValidateField(entityType, field); err != nil {
		return nil, err
	}
	if entityType == domain.EntityTypeActivity {
		return (*Activity)(nil), nil
	}
	return (*Task)(nil), nil
}
