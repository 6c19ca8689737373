package statusescmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
)

const (
	seedDefaultsMessageType = "lifecycle.statuses.seed_defaults"
	refreshCacheMessageType = "lifecycle.statuses.refresh_cache"
)

// SeedDefaultsCommand provisions the compiled default vocabulary for an
// organization. Domains that already hold definitions are left untouched.
type SeedDefaultsCommand struct {
	OrganizationID uuid.UUID  `json:"organization_id"`
	ActorID        *uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (SeedDefaultsCommand) Type() string { return seedDefaultsMessageType }

// Validate ensures an organization is supplied.
func (cmd SeedDefaultsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OrganizationID, validation.By(requireUUID("lifecycle.statuses.organization_required"))),
	)
}

// RefreshCacheCommand drops client-side cache entries. With All set every
// entry is dropped; otherwise the (organization, domain) pair is reloaded.
type RefreshCacheCommand struct {
	OrganizationID uuid.UUID `json:"organization_id,omitempty"`
	Domain         string    `json:"domain,omitempty"`
	All            bool      `json:"all,omitempty"`
}

// Type implements command.Message.
func (RefreshCacheCommand) Type() string { return refreshCacheMessageType }

// Validate requires a full (organization, domain) pair unless All is set.
func (cmd RefreshCacheCommand) Validate() error {
	if cmd.All {
		return nil
	}
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OrganizationID, validation.By(requireUUID("lifecycle.statuses.organization_required"))),
		validation.Field(&cmd.Domain, validation.Required, validation.By(func(value any) error {
			if _, err := domain.ParseStatusDomain(strings.TrimSpace(value.(string))); err != nil {
				return validation.NewError("lifecycle.statuses.domain_unknown", "domain must be activity, task or approval")
			}
			return nil
		})),
	)
}

func requireUUID(code string) validation.RuleFunc {
	return func(value any) error {
		id, _ := value.(uuid.UUID)
		if id == uuid.Nil {
			return validation.NewError(code, "is required")
		}
		return nil
	}
}
