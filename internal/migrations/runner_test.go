package migrations_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-lifecycle/internal/migrations"
	"github.com/goliatone/go-lifecycle/pkg/testsupport"
	"github.com/uptrace/bun"
)

func newSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()
	return testsupport.NewBunDB(t)
}

func TestDirFor(t *testing.T) {
	if _, err := migrations.DirFor(nil); !errors.Is(err, migrations.ErrDatabaseRequired) {
		t.Fatalf("expected ErrDatabaseRequired, got %v", err)
	}
	dir, err := migrations.DirFor(newSQLiteDB(t))
	if err != nil {
		t.Fatalf("dir for sqlite: %v", err)
	}
	if dir != "sqlite" {
		t.Fatalf("expected sqlite, got %q", dir)
	}
}

func TestRunnerAppliesAndRollsBack(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	source := fstest.MapFS{
		"20240101000000_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id TEXT PRIMARY KEY);")},
		"20240101000000_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
	}

	runner, err := migrations.NewRunner(db, source)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	applied, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	if len(applied) != 1 || applied[0] != "20240101000000_widgets" {
		t.Fatalf("unexpected applied migrations %v", applied)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO widgets (id) VALUES ('a')"); err != nil {
		t.Fatalf("expected widgets table: %v", err)
	}

	again, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("second up: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected nothing pending, got %v", again)
	}

	rolled, err := runner.Down(ctx)
	if err != nil {
		t.Fatalf("down: %v", err)
	}
	if len(rolled) != 1 {
		t.Fatalf("expected one rollback, got %v", rolled)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO widgets (id) VALUES ('b')"); err == nil {
		t.Fatalf("expected widgets table dropped")
	}
}
