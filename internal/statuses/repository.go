package statuses

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewDefinitionRepository creates a repository for status definition records.
func NewDefinitionRepository(db *bun.DB) repository.Repository[*StatusDefinition] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*StatusDefinition]{
		NewRecord: func() *StatusDefinition { return &StatusDefinition{} },
		GetID: func(def *StatusDefinition) uuid.UUID {
			return def.ID
		},
		SetID: func(def *StatusDefinition, id uuid.UUID) {
			def.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(def *StatusDefinition) string {
			return def.ID.String()
		},
	})
}
