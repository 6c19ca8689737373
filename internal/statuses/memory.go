package statuses

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*StatusDefinition
}

// NewMemoryRepository constructs an in-memory status definition repository.
func NewMemoryRepository() DefinitionRepository {
	return &memoryRepository{
		byID: make(map[uuid.UUID]*StatusDefinition),
	}
}

func (m *memoryRepository) Create(_ context.Context, def *StatusDefinition) (*StatusDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if def.IsActive && m.activeNameTakenLocked(def) {
		return nil, ErrDuplicateName
	}
	cloned := cloneDefinition(def)
	m.byID[cloned.ID] = cloned
	return cloneDefinition(cloned), nil
}

func (m *memoryRepository) Update(_ context.Context, def *StatusDefinition) (*StatusDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[def.ID]; !ok {
		return nil, &NotFoundError{Resource: "status_definition", Key: def.ID.String()}
	}
	if def.IsActive && m.activeNameTakenLocked(def) {
		return nil, ErrDuplicateName
	}
	cloned := cloneDefinition(def)
	m.byID[cloned.ID] = cloned
	return cloneDefinition(cloned), nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*StatusDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "status_definition", Key: id.String()}
	}
	return cloneDefinition(record), nil
}

func (m *memoryRepository) ListByScope(_ context.Context, scope Scope, activeOnly bool) ([]*StatusDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.collectLocked(scope, func(def *StatusDefinition) bool {
		return !activeOnly || def.IsActive
	}), nil
}

func (m *memoryRepository) ListByName(_ context.Context, scope Scope, name domain.StatusName) ([]*StatusDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.collectLocked(scope, func(def *StatusDefinition) bool {
		return def.Name == name
	}), nil
}

func (m *memoryRepository) ApplyOrder(_ context.Context, scope Scope, orderedIDs []uuid.UUID, updatedBy *uuid.UUID, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.collectLocked(scope, func(def *StatusDefinition) bool { return def.IsActive })
	if !sameIDSet(active, orderedIDs) {
		return ErrIncompleteSet
	}
	for idx, id := range orderedIDs {
		record := m.byID[id]
		record.OrderIndex = idx
		record.UpdatedAt = updatedAt
		record.UpdatedBy = cloneUUID(updatedBy)
	}
	return nil
}

func (m *memoryRepository) InvalidateCache(context.Context) error {
	return nil
}

func (m *memoryRepository) collectLocked(scope Scope, keep func(*StatusDefinition) bool) []*StatusDefinition {
	records := make([]*StatusDefinition, 0)
	for _, record := range m.byID {
		if record.OrganizationID != scope.OrganizationID || record.Domain != scope.Domain {
			continue
		}
		if keep != nil && !keep(record) {
			continue
		}
		records = append(records, cloneDefinition(record))
	}
	sortDefinitions(records)
	return records
}

func (m *memoryRepository) activeNameTakenLocked(def *StatusDefinition) bool {
	for id, record := range m.byID {
		if id == def.ID || !record.IsActive {
			continue
		}
		if record.OrganizationID == def.OrganizationID && record.Domain == def.Domain && record.Name == def.Name {
			return true
		}
	}
	return false
}
