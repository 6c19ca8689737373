package di_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-lifecycle/internal/changes"
	legacycmd "github.com/goliatone/go-lifecycle/internal/commands/legacy"
	statusescmd "github.com/goliatone/go-lifecycle/internal/commands/statuses"
	"github.com/goliatone/go-lifecycle/internal/di"
	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/entities"
	"github.com/goliatone/go-lifecycle/internal/legacy"
	"github.com/goliatone/go-lifecycle/internal/runtimeconfig"
	"github.com/goliatone/go-lifecycle/internal/statuses"
	"github.com/goliatone/go-lifecycle/pkg/testsupport"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	records []usertypes.ActivityRecord
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return nil
}

type stubRegistry struct {
	handlers []any
}

func (r *stubRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func newBunDB(t *testing.T) *bun.DB {
	t.Helper()
	db := testsupport.NewBunDB(t)

	ctx := context.Background()
	for _, model := range []any{
		(*statuses.StatusDefinition)(nil),
		(*entities.Activity)(nil),
		(*entities.Task)(nil),
	} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
	return db
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "mongo"
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestNewContainerRequiresBunDBForBunProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	if _, err := di.NewContainer(cfg); err == nil {
		t.Fatalf("expected error without a bun database")
	}
}

func TestContainerDefaultsToMemory(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.BunDB() != nil {
		t.Fatalf("expected no bun database")
	}
	if _, ok := container.EntityStore().(*entities.MemoryStore); !ok {
		t.Fatalf("expected memory entity store, got %T", container.EntityStore())
	}
	if container.StatusService() == nil || container.Validator() == nil || container.StatusCache() == nil ||
		container.LegacyRunner() == nil || container.ChangeService() == nil {
		t.Fatalf("expected every service wired")
	}
}

func TestContainerEndToEndOverMemory(t *testing.T) {
	sink := &recordingSink{}
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Audit = true
	store := entities.NewMemoryStore()

	container, err := di.NewContainer(cfg,
		di.WithEntityStore(store),
		di.WithActivitySink(sink),
		di.WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	ctx := context.Background()
	org := uuid.New()
	owner := uuid.New()
	taskID := uuid.New()
	if _, err := container.StatusService().SeedDefaults(ctx, org, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store.SaveTask(entities.Task{
		ID:             taskID,
		OrganizationID: org,
		Status:         domain.LegacyInProgress,
		OwnerID:        owner,
		CreatedAt:      fixedNow,
		UpdatedAt:      fixedNow,
	})

	report, err := container.LegacyRunner().Run(ctx, legacy.Options{OrganizationID: &org})
	if err != nil {
		t.Fatalf("legacy run: %v", err)
	}
	if report.PairCounts[domain.LegacyInProgress] != 1 {
		t.Fatalf("expected in_progress migrated, got %+v", report.PairCounts)
	}

	_, err = container.ChangeService().ChangeStatus(ctx, changes.ChangeRequest{
		Actor:          domain.Actor{ID: owner, Authenticated: true, Owner: true},
		EntityID:       taskID,
		OrganizationID: org,
		Domain:         domain.DomainTask,
		Current:        domain.StatusWorkingOn,
		Proposed:       domain.StatusDone,
	})
	if err != nil {
		t.Fatalf("change status: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].TenantID != org || sink.records[0].ActorID != owner {
		t.Fatalf("expected audit record, got %+v", sink.records)
	}

	options, err := container.StatusCache().Get(ctx, org, domain.DomainTask)
	if err != nil {
		t.Fatalf("cache get: %v", err)
	}
	if options.Fallback || len(options.Items) == 0 {
		t.Fatalf("expected live options, got %+v", options)
	}
}

func TestContainerAuditDisabledSkipsSink(t *testing.T) {
	sink := &recordingSink{}
	store := entities.NewMemoryStore()
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(),
		di.WithEntityStore(store),
		di.WithActivitySink(sink),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	ctx := context.Background()
	org := uuid.New()
	owner := uuid.New()
	taskID := uuid.New()
	if _, err := container.StatusService().SeedDefaults(ctx, org, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store.SaveTask(entities.Task{ID: taskID, OrganizationID: org, Status: domain.StatusNotStarted, OwnerID: owner})

	if _, err := container.ChangeService().ChangeStatus(ctx, changes.ChangeRequest{
		Actor:          domain.Actor{ID: owner, Authenticated: true, Owner: true},
		EntityID:       taskID,
		OrganizationID: org,
		Domain:         domain.DomainTask,
		Current:        domain.StatusNotStarted,
		Proposed:       domain.StatusWorkingOn,
	}); err != nil {
		t.Fatalf("change status: %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no audit records with audit disabled")
	}
}

func TestContainerWiresBunRepositories(t *testing.T) {
	db := newBunDB(t)
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"

	container, err := di.NewContainer(cfg, di.WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if _, ok := container.DefinitionRepository().(*statuses.BunDefinitionRepository); !ok {
		t.Fatalf("expected bun definition repository, got %T", container.DefinitionRepository())
	}
	if _, ok := container.EntityStore().(*entities.BunStore); !ok {
		t.Fatalf("expected bun entity store, got %T", container.EntityStore())
	}

	ctx := context.Background()
	org := uuid.New()
	result, err := container.StatusService().SeedDefaults(ctx, org, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if result.Total() == 0 {
		t.Fatalf("expected rows seeded")
	}
	active, err := container.StatusService().ListActive(ctx, org, domain.DomainApproval)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != len(domain.ApprovalVocabulary()) {
		t.Fatalf("expected approval vocabulary, got %d rows", len(active))
	}
}

func TestContainerRegistersCommands(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	var reports []*legacy.Report
	reg := &stubRegistry{}
	handlers, err := container.RegisterCommands(reg, func(_ context.Context, report *legacy.Report) {
		reports = append(reports, report)
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(reg.handlers) != 3 {
		t.Fatalf("expected 3 registered handlers, got %d", len(reg.handlers))
	}

	ctx := context.Background()
	org := uuid.New()
	if err := handlers.Statuses.Seed.Execute(ctx, statusescmd.SeedDefaultsCommand{OrganizationID: org}); err != nil {
		t.Fatalf("seed command: %v", err)
	}
	if err := handlers.Legacy.Execute(ctx, legacycmd.RunLegacyMigrationCommand{OrganizationID: &org}); err != nil {
		t.Fatalf("legacy command: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected legacy report forwarded")
	}
	if err := handlers.Statuses.Refresh.Execute(ctx, statusescmd.RefreshCacheCommand{All: true}); err != nil {
		t.Fatalf("refresh command: %v", err)
	}
}
