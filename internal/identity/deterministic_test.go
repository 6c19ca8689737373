package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestSeededStatusUUIDIsStable(t *testing.T) {
	org := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")

	first := SeededStatusUUID(org, "activity", "Done", "v1")
	second := SeededStatusUUID(org, " Activity ", "Done", "v1")
	if first == uuid.Nil {
		t.Fatalf("expected non-nil id")
	}
	if first != second {
		t.Fatalf("expected domain normalization to produce the same id, got %s and %s", first, second)
	}
}

func TestSeededStatusUUIDSeparatesScopes(t *testing.T) {
	orgA := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	orgB := uuid.MustParse("00000000-0000-0000-0000-0000000000b1")

	ids := map[uuid.UUID]string{}
	for label, id := range map[string]uuid.UUID{
		"org-a":   SeededStatusUUID(orgA, "activity", "Done", "v1"),
		"org-b":   SeededStatusUUID(orgB, "activity", "Done", "v1"),
		"task":    SeededStatusUUID(orgA, "task", "Done", "v1"),
		"version": SeededStatusUUID(orgA, "activity", "Done", "v2"),
		"name":    SeededStatusUUID(orgA, "activity", "Stuck", "v1"),
	} {
		if prev, ok := ids[id]; ok {
			t.Fatalf("id collision between %s and %s", prev, label)
		}
		ids[id] = label
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("  "); got != uuid.Nil {
		t.Fatalf("expected nil uuid for empty key, got %s", got)
	}
}
