package statuses

import (
	"time"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StatusDefinition is one configurable entry of an organization's vocabulary.
type StatusDefinition struct {
	bun.BaseModel `bun:"table:status_definitions,alias:sd"`

	ID              uuid.UUID           `bun:",pk,type:uuid" json:"id"`
	OrganizationID  uuid.UUID           `bun:"organization_id,notnull,type:uuid" json:"organization_id"`
	Domain          domain.StatusDomain `bun:"domain,notnull" json:"domain"`
	Name            domain.StatusName   `bun:"name,notnull" json:"name"`
	DisplayName     string              `bun:"display_name,notnull" json:"display_name"`
	Color           string              `bun:"color,notnull" json:"color"`
	OrderIndex      int                 `bun:"order_index,notnull" json:"order_index"`
	IsActive        bool                `bun:"is_active,notnull" json:"is_active"`
	IsSystem        bool                `bun:"is_system,notnull" json:"is_system"`
	DefaultsVersion string              `bun:"defaults_version" json:"defaults_version,omitempty"`
	UpdatedBy       *uuid.UUID          `bun:"updated_by,type:uuid" json:"updated_by,omitempty"`
	CreatedAt       time.Time           `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time           `bun:"updated_at,notnull" json:"updated_at"`
}

// Scope identifies one vocabulary: an organization and a status domain.
type Scope struct {
	OrganizationID uuid.UUID
	Domain         domain.StatusDomain
}

// Key renders the scope as a stable map key.
func (s Scope) Key() string {
	return s.OrganizationID.String() + ":" + string(s.Domain)
}

// UpsertInput creates a definition when ID is nil, otherwise updates it.
type UpsertInput struct {
	OrganizationID uuid.UUID
	Domain         domain.StatusDomain
	ID             uuid.UUID
	Name           domain.StatusName
	DisplayName    string
	Color          string
	OrderIndex     *int
	ActorID        *uuid.UUID
}

// DeactivateInput addresses a definition to retire.
type DeactivateInput struct {
	OrganizationID uuid.UUID
	Domain         domain.StatusDomain
	ID             uuid.UUID
	ActorID        *uuid.UUID
}

// ReorderInput carries the complete ordered list of active definition IDs.
type ReorderInput struct {
	OrganizationID uuid.UUID
	Domain         domain.StatusDomain
	OrderedIDs     []uuid.UUID
	ActorID        *uuid.UUID
}

// EnsureActiveInput requests that a name is present and active in a scope.
type EnsureActiveInput struct {
	OrganizationID uuid.UUID
	Domain         domain.StatusDomain
	Name           domain.StatusName
	ActorID        *uuid.UUID
}

// SeedResult reports how many definitions were created per domain.
type SeedResult struct {
	OrganizationID  uuid.UUID
	DefaultsVersion string
	Created         map[domain.StatusDomain]int
	Skipped         []domain.StatusDomain
}

// Total returns the number of definitions created across domains.
func (r *SeedResult) Total() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, count := range r.Created {
		total += count
	}
	return total
}
