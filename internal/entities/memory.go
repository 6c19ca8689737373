package entities

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore keeps activities and tasks in process. It is used by tests and
// by the memory storage provider.
type MemoryStore struct {
	mu         sync.RWMutex
	activities map[uuid.UUID]*Activity
	tasks      map[uuid.UUID]*Task
}

// NewMemoryStore constructs an empty in-memory entity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		activities: make(map[uuid.UUID]*Activity),
		tasks:      make(map[uuid.UUID]*Task),
	}
}

var (
	_ Store              = (*MemoryStore)(nil)
	_ BulkRewriter       = (*MemoryStore)(nil)
	_ OrganizationLister = (*MemoryStore)(nil)
)

// SaveActivity inserts or replaces an activity.
func (m *MemoryStore) SaveActivity(activity Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := activity
	stored.UpdatedBy = cloneUUID(activity.UpdatedBy)
	stored.ApproverID = cloneUUID(activity.ApproverID)
	m.activities[activity.ID] = &stored
}

// SaveTask inserts or replaces a task.
func (m *MemoryStore) SaveTask(task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := task
	stored.UpdatedBy = cloneUUID(task.UpdatedBy)
	stored.AssigneeID = cloneUUID(task.AssigneeID)
	m.tasks[task.ID] = &stored
}

// Activity returns a copy of the stored activity.
func (m *MemoryStore) Activity(id uuid.UUID) (Activity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.activities[id]
	if !ok {
		return Activity{}, false
	}
	return *record, true
}

// Task returns a copy of the stored task.
func (m *MemoryStore) Task(id uuid.UUID) (Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *record, true
}

func (m *MemoryStore) UpdateStatus(_ context.Context, input UpdateStatusInput) error {
	if err := ValidateField(input.EntityType, input.Field); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	switch input.EntityType {
	case domain.EntityTypeActivity:
		record, ok := m.activities[input.EntityID]
		if !ok || record.OrganizationID != input.OrganizationID {
			return fmt.Errorf("%w: activity %s", ErrEntityNotFound, input.EntityID)
		}
		if err := checkExpected(input, activityField(record, input.Field)); err != nil {
			return err
		}
		setActivityField(record, input.Field, input.Value)
		record.UpdatedBy = cloneUUID(input.UpdatedBy)
		record.UpdatedAt = input.UpdatedAt
	default:
		record, ok := m.tasks[input.EntityID]
		if !ok || record.OrganizationID != input.OrganizationID {
			return fmt.Errorf("%w: task %s", ErrEntityNotFound, input.EntityID)
		}
		if err := checkExpected(input, record.Status); err != nil {
			return err
		}
		record.Status = input.Value
		record.UpdatedBy = cloneUUID(input.UpdatedBy)
		record.UpdatedAt = input.UpdatedAt
	}
	return nil
}

func (m *MemoryStore) FindByStatus(_ context.Context, entityType domain.EntityType, organizationID *uuid.UUID, field domain.StatusField, value domain.StatusName) ([]uuid.UUID, error) {
	if err := ValidateField(entityType, field); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]uuid.UUID, 0)
	switch entityType {
	case domain.EntityTypeActivity:
		for id, record := range m.activities {
			if matchesOrg(record.OrganizationID, organizationID) && activityField(record, field) == value {
				ids = append(ids, id)
			}
		}
	default:
		for id, record := range m.tasks {
			if matchesOrg(record.OrganizationID, organizationID) && record.Status == value {
				ids = append(ids, id)
			}
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (m *MemoryStore) RewriteStatus(_ context.Context, input RewriteInput) (int64, error) {
	if err := ValidateField(input.EntityType, input.Field); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var affected int64
	switch input.EntityType {
	case domain.EntityTypeActivity:
		for _, record := range m.activities {
			if matchesOrg(record.OrganizationID, input.OrganizationID) && activityField(record, input.Field) == input.From {
				setActivityField(record, input.Field, input.To)
				if input.UpdatedBy != nil {
					record.UpdatedBy = cloneUUID(input.UpdatedBy)
				}
				record.UpdatedAt = input.UpdatedAt
				affected++
			}
		}
	default:
		for _, record := range m.tasks {
			if matchesOrg(record.OrganizationID, input.OrganizationID) && record.Status == input.From {
				record.Status = input.To
				if input.UpdatedBy != nil {
					record.UpdatedBy = cloneUUID(input.UpdatedBy)
				}
				record.UpdatedAt = input.UpdatedAt
				affected++
			}
		}
	}
	return affected, nil
}

func (m *MemoryStore) ListOrganizations(_ context.Context, entityType domain.EntityType) ([]uuid.UUID, error) {
	if err := ValidateField(entityType, domain.FieldStatus); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[uuid.UUID]struct{}{}
	switch entityType {
	case domain.EntityTypeActivity:
		for _, record := range m.activities {
			seen[record.OrganizationID] = struct{}{}
		}
	default:
		for _, record := range m.tasks {
			seen[record.OrganizationID] = struct{}{}
		}
	}
	ids := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids, nil
}

func activityField(record *Activity, field domain.StatusField) domain.StatusName {
	if field == domain.FieldApprovalState {
		return record.ApprovalState
	}
	return record.Status
}

func setActivityField(record *Activity, field domain.StatusField, value domain.StatusName) {
	if field == domain.FieldApprovalState {
		record.ApprovalState = value
		return
	}
	record.Status = value
}

func checkExpected(input UpdateStatusInput, stored domain.StatusName) error {
	if input.Expected == nil || *input.Expected == stored {
		return nil
	}
	return fmt.Errorf("%w: %s %s is %q, not %q", ErrStatusConflict, input.EntityType, input.EntityID, stored, *input.Expected)
}

func matchesOrg(value uuid.UUID, filter *uuid.UUID) bool {
	return filter == nil || value == *filter
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}

func cloneUUID(value *uuid.UUID) *uuid.UUID {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
