package entities

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrUnknownEntityType = errors.New("entities: unknown entity type")
	ErrUnsupportedField  = errors.New("entities: status field not supported for entity type")
	ErrEntityNotFound    = errors.New("entities: entity not found")
	ErrStatusConflict    = errors.New("entities: stored status differs from the expected value")
)

// Store is the persistence surface the lifecycle engine needs from the host
// application's entity tables.
type Store interface {
	UpdateStatus(ctx context.Context, input UpdateStatusInput) error
	FindByStatus(ctx context.Context, entityType domain.EntityType, organizationID *uuid.UUID, field domain.StatusField, value domain.StatusName) ([]uuid.UUID, error)
}

// BulkRewriter is implemented by stores able to rewrite a value in a single statement.
type BulkRewriter interface {
	RewriteStatus(ctx context.Context, input RewriteInput) (int64, error)
}

// OrganizationLister is implemented by stores able to enumerate tenants holding rows.
type OrganizationLister interface {
	ListOrganizations(ctx context.Context, entityType domain.EntityType) ([]uuid.UUID, error)
}

// ValidateField checks that field exists on entityType.
func ValidateField(entityType domain.EntityType, field domain.StatusField) error {
	switch entityType {
	case domain.EntityTypeActivity:
		if field == domain.FieldStatus || field == domain.FieldApprovalState {
			return nil
		}
	case domain.EntityTypeTask:
		if field == domain.FieldStatus {
			return nil
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
	return fmt.Errorf("%w: %s.%s", ErrUnsupportedField, entityType, field)
}
