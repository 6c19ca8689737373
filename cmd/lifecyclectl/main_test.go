package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lifecycle "github.com/goliatone/go-lifecycle"
	"github.com/goliatone/go-lifecycle/cmd/lifecyclectl/internal/bootstrap"
	"github.com/goliatone/go-lifecycle/internal/entities"
	"github.com/google/uuid"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIMigrateSeedAndMigrateLegacy(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "lifecycle.db")
	base := []string{"--driver", "sqlite", "--dsn", dsn, "--log-level", "error"}
	org := uuid.New()

	out, err := runCLI(t, append([]string{"migrate"}, base...)...)
	if err != nil {
		t.Fatalf("migrate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "20240601000000_status_definitions") {
		t.Fatalf("expected applied migration names, got:\n%s", out)
	}

	out, err = runCLI(t, append([]string{"seed-defaults", "--org", org.String()}, base...)...)
	if err != nil {
		t.Fatalf("seed-defaults: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Working on it") || !strings.Contains(out, "submitted") {
		t.Fatalf("expected seeded vocabularies in output, got:\n%s", out)
	}

	cfg := lifecycle.DefaultConfig()
	cfg.Storage.Driver = lifecycle.DriverSQLite
	cfg.Storage.DSN = dsn
	db, err := bootstrap.OpenDB(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	task := &entities.Task{
		ID:             uuid.New(),
		OrganizationID: org,
		Status:         "in_progress",
		OwnerID:        uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := db.NewInsert().Model(task).Exec(context.Background()); err != nil {
		t.Fatalf("insert task: %v", err)
	}
	_ = db.Close()

	out, err = runCLI(t, append([]string{"migrate-legacy", "--org", org.String()}, base...)...)
	if err != nil {
		t.Fatalf("migrate-legacy: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 rows rewritten") {
		t.Fatalf("expected one row rewritten, got:\n%s", out)
	}

	out, err = runCLI(t, append([]string{"migrate-legacy", "--org", org.String()}, base...)...)
	if err != nil {
		t.Fatalf("second migrate-legacy: %v\n%s", err, out)
	}
	if !strings.Contains(out, "0 rows rewritten") {
		t.Fatalf("expected second run to be a no-op, got:\n%s", out)
	}

	out, err = runCLI(t, append([]string{"list-statuses", "--org", org.String(), "--domain", "task"}, base...)...)
	if err != nil {
		t.Fatalf("list-statuses: %v\n%s", err, out)
	}
	if !strings.Contains(out, "task statuses") || !strings.Contains(out, "Done") {
		t.Fatalf("expected task vocabulary, got:\n%s", out)
	}
}

func TestCLIRequiresOrganization(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "lifecycle.db")
	for _, name := range []string{"seed-defaults", "list-statuses"} {
		_, err := runCLI(t, name, "--driver", "sqlite", "--dsn", dsn)
		if !errors.Is(err, errOrganizationRequired) {
			t.Fatalf("%s: expected errOrganizationRequired, got %v", name, err)
		}
	}
}

func TestCLIRejectsMissingDSN(t *testing.T) {
	_, err := runCLI(t, "migrate", "--driver", "sqlite")
	if !errors.Is(err, lifecycle.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}
