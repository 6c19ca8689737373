package legacycmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
)

const runMigrationMessageType = "lifecycle.legacy.run_migration"

// RunLegacyMigrationCommand rewrites deprecated status literals to the unified
// vocabulary. A nil OrganizationID migrates every organization.
type RunLegacyMigrationCommand struct {
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	// EntityTypes restricts the run; empty means activities and tasks.
	EntityTypes []string   `json:"entity_types,omitempty"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (RunLegacyMigrationCommand) Type() string { return runMigrationMessageType }

// Validate rejects nil organization ids and unknown entity types.
func (cmd RunLegacyMigrationCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OrganizationID, validation.By(func(value any) error {
			id, _ := value.(*uuid.UUID)
			if id != nil && *id == uuid.Nil {
				return validation.NewError("lifecycle.legacy.organization_invalid", "organization id must not be nil")
			}
			return nil
		})),
		validation.Field(&cmd.EntityTypes, validation.Each(validation.In(
			string(domain.EntityTypeActivity),
			string(domain.EntityTypeTask),
		))),
	)
}

func (cmd RunLegacyMigrationCommand) entityTypes() []domain.EntityType {
	if len(cmd.EntityTypes) == 0 {
		return nil
	}
	out := make([]domain.EntityType, 0, len(cmd.EntityTypes))
	for _, entityType := range cmd.EntityTypes {
		out = append(out, domain.EntityType(entityType))
	}
	return out
}
