package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

const (
	tableName      = "lifecycle_migrations"
	locksTableName = "lifecycle_migration_locks"
)

var (
	ErrDatabaseRequired   = errors.New("migrations: database required")
	ErrUnsupportedDialect = errors.New("migrations: unsupported dialect")
)

// DirFor returns the migration directory matching the database dialect.
func DirFor(db *bun.DB) (string, error) {
	if db == nil {
		return "", ErrDatabaseRequired
	}
	switch db.Dialect().Name() {
	case dialect.PG:
		return "postgres", nil
	case dialect.SQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDialect, db.Dialect().Name())
	}
}

// Option configures the runner.
type Option func(*Runner)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner applies embedded SQL migrations with bun's migrator.
type Runner struct {
	migrator *migrate.Migrator
	logger   interfaces.Logger
}

// NewRunner discovers *.up.sql / *.down.sql files at the root of fsys.
func NewRunner(db *bun.DB, fsys fs.FS, opts ...Option) (*Runner, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	set := migrate.NewMigrations()
	if err := set.Discover(fsys); err != nil {
		return nil, fmt.Errorf("migrations: discover: %w", err)
	}
	r := &Runner{
		migrator: migrate.NewMigrator(db, set,
			migrate.WithTableName(tableName),
			migrate.WithLocksTableName(locksTableName),
		),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Up applies every pending migration and returns the applied names.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, err
	}
	if err := r.migrator.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = r.migrator.Unlock(ctx) }()

	group, err := r.migrator.Migrate(ctx)
	if err != nil {
		return nil, err
	}
	names := groupNames(group)
	r.logger.Info("migrations.applied", "count", len(names))
	return names, nil
}

// Down rolls back the last applied group.
func (r *Runner) Down(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, err
	}
	if err := r.migrator.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = r.migrator.Unlock(ctx) }()

	group, err := r.migrator.Rollback(ctx)
	if err != nil {
		return nil, err
	}
	names := groupNames(group)
	r.logger.Info("migrations.rolled_back", "count", len(names))
	return names, nil
}

func groupNames(group *migrate.MigrationGroup) []string {
	if group == nil || group.IsZero() {
		return nil
	}
	names := make([]string, 0, len(group.Migrations))
	for _, migration := range group.Migrations {
		name := migration.Name
		if migration.Comment != "" {
			name += "_" + migration.Comment
		}
		names = append(names, name)
	}
	return names
}
