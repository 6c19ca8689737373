package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// SeededStatusUUID derives the id of a status definition seeded from the
// compiled default payload. Seeding the same organization twice yields the same
// ids, so provisioning can be retried safely.
func SeededStatusUUID(organizationID uuid.UUID, domain, name, version string) uuid.UUID {
	return UUID("go-lifecycle:status_definition:" + organizationID.String() + ":" +
		strings.ToLower(strings.TrimSpace(domain)) + ":" +
		strings.TrimSpace(name) + ":" +
		strings.TrimSpace(version))
}
