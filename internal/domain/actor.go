package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the organization role supplied by the auth context.
type Role string

const (
	RoleMember   Role = "member"
	RoleApprover Role = "approver"
	RoleAdmin    Role = "admin"
)

// NormalizeRole lowercases and trims a role string.
func NormalizeRole(input string) Role {
	return Role(strings.ToLower(strings.TrimSpace(input)))
}

// Actor captures the auth-context facts needed to gate a transition. Owner,
// Assignee and Approver are relative to the entity being changed.
type Actor struct {
	ID            uuid.UUID
	Role          Role
	Authenticated bool
	Owner         bool
	Assignee      bool
	Approver      bool
}

// IsOwner reports whether the actor owns (created) the entity.
func (a Actor) IsOwner() bool {
	return a.Authenticated && a.Owner
}

// IsContributor reports whether the actor owns or is assigned to the entity.
func (a Actor) IsContributor() bool {
	return a.Authenticated && (a.Owner || a.Assignee)
}

// IsApprover reports whether the actor holds the approver capability, either as
// the designated approver of the entity or through an approver/admin role.
func (a Actor) IsApprover() bool {
	if !a.Authenticated {
		return false
	}
	if a.Approver {
		return true
	}
	switch NormalizeRole(string(a.Role)) {
	case RoleApprover, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the actor may mutate status configuration.
func (a Actor) IsAdmin() bool {
	return a.Authenticated && NormalizeRole(string(a.Role)) == RoleAdmin
}
