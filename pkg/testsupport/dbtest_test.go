package testsupport_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-lifecycle/pkg/testsupport"
)

func TestNewBunDBIsolatesDatabases(t *testing.T) {
	ctx := context.Background()
	first := testsupport.NewBunDB(t)
	second := testsupport.NewBunDB(t)

	if _, err := first.ExecContext(ctx, `CREATE TABLE marker (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create marker table: %v", err)
	}
	if _, err := first.ExecContext(ctx, `INSERT INTO marker (id) VALUES (1)`); err != nil {
		t.Fatalf("insert marker: %v", err)
	}

	var count int
	if err := first.QueryRowContext(ctx, `SELECT COUNT(*) FROM marker`).Scan(&count); err != nil || count != 1 {
		t.Fatalf("expected marker row in first db, got %d err=%v", count, err)
	}
	if _, err := second.ExecContext(ctx, `SELECT COUNT(*) FROM marker`); err == nil {
		t.Fatalf("second db must not see tables created in the first")
	}
}
