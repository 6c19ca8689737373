package statuses

import (
	"sort"
	"strings"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
)

func cloneDefinition(def *StatusDefinition) *StatusDefinition {
	if def == nil {
		return nil
	}
	cloned := *def
	cloned.UpdatedBy = cloneUUID(def.UpdatedBy)
	return &cloned
}

func cloneDefinitions(src []*StatusDefinition) []*StatusDefinition {
	if len(src) == 0 {
		return nil
	}
	out := make([]*StatusDefinition, 0, len(src))
	for _, def := range src {
		if def == nil {
			continue
		}
		out = append(out, cloneDefinition(def))
	}
	return out
}

func cloneUUID(value *uuid.UUID) *uuid.UUID {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

// sortDefinitions orders by (OrderIndex, ID) so equal indexes stay deterministic.
func sortDefinitions(defs []*StatusDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].OrderIndex != defs[j].OrderIndex {
			return defs[i].OrderIndex < defs[j].OrderIndex
		}
		return defs[i].ID.String() < defs[j].ID.String()
	})
}

func filterActive(defs []*StatusDefinition) []*StatusDefinition {
	out := make([]*StatusDefinition, 0, len(defs))
	for _, def := range defs {
		if def != nil && def.IsActive {
			out = append(out, def)
		}
	}
	return out
}

func nextOrderIndex(active []*StatusDefinition) int {
	next := 0
	for _, def := range active {
		if def.OrderIndex >= next {
			next = def.OrderIndex + 1
		}
	}
	return next
}

// sameIDSet reports whether ordered is a duplicate free permutation of active.
func sameIDSet(active []*StatusDefinition, ordered []uuid.UUID) bool {
	if len(active) != len(ordered) {
		return false
	}
	expected := make(map[uuid.UUID]struct{}, len(active))
	for _, def := range active {
		expected[def.ID] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(ordered))
	for _, id := range ordered {
		if _, ok := expected[id]; !ok {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

func normalizeColor(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

func scopeFor(org uuid.UUID, d domain.StatusDomain) Scope {
	return Scope{OrganizationID: org, Domain: d}
}

// pickByName prefers the active row, then the most recently updated inactive one.
func pickByName(defs []*StatusDefinition) *StatusDefinition {
	var inactive *StatusDefinition
	for _, def := range defs {
		if def == nil {
			continue
		}
		if def.IsActive {
			return def
		}
		if inactive == nil || def.UpdatedAt.After(inactive.UpdatedAt) ||
			(def.UpdatedAt.Equal(inactive.UpdatedAt) && def.ID.String() < inactive.ID.String()) {
			inactive = def
		}
	}
	return inactive
}
