package entities

import (
	"time"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Activity is the persisted shape of an activity row as far as status
// handling is concerned.
type Activity struct {
	bun.BaseModel `bun:"table:activities,alias:act"`

	ID             uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	OrganizationID uuid.UUID         `bun:"organization_id,notnull,type:uuid" json:"organization_id"`
	Status         domain.StatusName `bun:"status,notnull" json:"status"`
	ApprovalState  domain.StatusName `bun:"approval_state,notnull" json:"approval_state"`
	OwnerID        uuid.UUID         `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	ApproverID     *uuid.UUID        `bun:"approver_id,type:uuid" json:"approver_id,omitempty"`
	UpdatedBy      *uuid.UUID        `bun:"updated_by,type:uuid" json:"updated_by,omitempty"`
	CreatedAt      time.Time         `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time         `bun:"updated_at,notnull" json:"updated_at"`
}

// Task is the persisted shape of a task row as far as status handling is concerned.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tsk"`

	ID             uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	OrganizationID uuid.UUID         `bun:"organization_id,notnull,type:uuid" json:"organization_id"`
	Status         domain.StatusName `bun:"status,notnull" json:"status"`
	OwnerID        uuid.UUID         `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	AssigneeID     *uuid.UUID        `bun:"assignee_id,type:uuid" json:"assignee_id,omitempty"`
	UpdatedBy      *uuid.UUID        `bun:"updated_by,type:uuid" json:"updated_by,omitempty"`
	CreatedAt      time.Time         `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt      time.Time         `bun:"updated_at,notnull" json:"updated_at"`
}

// UpdateStatusInput writes one status column on one entity together with
// the updated-by/updated-at audit pair. When Expected is set the write only
// applies while the column still holds that value.
type UpdateStatusInput struct {
	EntityType     domain.EntityType
	EntityID       uuid.UUID
	OrganizationID uuid.UUID
	Field          domain.StatusField
	Expected       *domain.StatusName
	Value          domain.StatusName
	UpdatedBy      *uuid.UUID
	UpdatedAt      time.Time
}

// RewriteInput replaces every occurrence of From with To in one column.
// A nil OrganizationID rewrites across all organizations.
type RewriteInput struct {
	EntityType     domain.EntityType
	OrganizationID *uuid.UUID
	Field          domain.StatusField
	From           domain.StatusName
	To             domain.StatusName
	UpdatedBy      *uuid.UUID
	UpdatedAt      time.Time
}
