// Package testsupport opens throwaway SQLite databases for package tests.
package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var sqliteSeq atomic.Uint64

// NewSQLiteMemoryDB opens a private in-memory SQLite database. Every call
// gets its own named database, so rows never leak between tests.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:lifecycle_%d?mode=memory&cache=shared", sqliteSeq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// The database lives only as long as a connection holds it open.
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewBunDB wraps NewSQLiteMemoryDB in bun and closes it when tb finishes.
func NewBunDB(tb testing.TB) *bun.DB {
	tb.Helper()
	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	tb.Cleanup(func() { _ = db.Close() })
	return db
}
