package statuses

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
)

// DefinitionRepository exposes persistence operations for status definitions.
// List results are ordered by (order_index, id).
type DefinitionRepository interface {
	Create(ctx context.Context, def *StatusDefinition) (*StatusDefinition, error)
	Update(ctx context.Context, def *StatusDefinition) (*StatusDefinition, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StatusDefinition, error)
	ListByScope(ctx context.Context, scope Scope, activeOnly bool) ([]*StatusDefinition, error)
	ListByName(ctx context.Context, scope Scope, name domain.StatusName) ([]*StatusDefinition, error)
	// ApplyOrder rewrites order_index for the active set of scope. orderedIDs
	// must match that set exactly or ErrIncompleteSet is returned.
	ApplyOrder(ctx context.Context, scope Scope, orderedIDs []uuid.UUID, updatedBy *uuid.UUID, updatedAt time.Time) error
	InvalidateCache(ctx context.Context) error
}

// NotFoundError is returned when a status definition cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
