package bootstrap

import (
	"database/sql"
	"fmt"

	lifecycle "github.com/goliatone/go-lifecycle"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// OpenDB opens the configured database and wraps it with the matching bun dialect.
func OpenDB(cfg lifecycle.Config) (*bun.DB, error) {
	switch cfg.Storage.Driver {
	case lifecycle.DriverPostgres:
		sqlDB, err := sql.Open("postgres", cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	case lifecycle.DriverSQLite:
		sqlDB, err := sql.Open("sqlite3", cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %q", lifecycle.ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
}

// Module bundles an open database with the module built on top of it.
type Module struct {
	DB     *bun.DB
	Module *lifecycle.Module
}

// Close releases the database handle.
func (m *Module) Close() error {
	if m == nil || m.DB == nil {
		return nil
	}
	return m.DB.Close()
}

// BuildModule opens the database and constructs a bun-backed module.
func BuildModule(cfg lifecycle.Config, opts ...lifecycle.Option) (*Module, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	module, err := lifecycle.New(cfg, append([]lifecycle.Option{lifecycle.WithBunDB(db)}, opts...)...)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialise lifecycle module: %w", err)
	}
	return &Module{DB: db, Module: module}, nil
}
