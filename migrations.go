package lifecycle

import (
	"context"
	"embed"
	"io/fs"
	"path"

	"github.com/goliatone/go-lifecycle/internal/migrations"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
	"github.com/uptrace/bun"
)

const migrationsRoot = "data/sql/migrations"

//go:embed data/sql/migrations/postgres/*.sql data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files for this package.
// Files live under data/sql/migrations/<dialect>/.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// MigrationsFor returns the migration files for one dialect directory
// ("postgres" or "sqlite").
func MigrationsFor(dir string) (fs.FS, error) {
	return fs.Sub(migrationsFS, path.Join(migrationsRoot, dir))
}

// Migrate applies pending schema migrations for the database dialect and
// returns the names of the migrations it applied.
func Migrate(ctx context.Context, db *bun.DB, logger interfaces.Logger) ([]string, error) {
	runner, err := newMigrationRunner(db, logger)
	if err != nil {
		return nil, err
	}
	return runner.Up(ctx)
}

// Rollback reverts the most recently applied migration group.
func Rollback(ctx context.Context, db *bun.DB, logger interfaces.Logger) ([]string, error) {
	runner, err := newMigrationRunner(db, logger)
	if err != nil {
		return nil, err
	}
	return runner.Down(ctx)
}

func newMigrationRunner(db *bun.DB, logger interfaces.Logger) (*migrations.Runner, error) {
	dir, err := migrations.DirFor(db)
	if err != nil {
		return nil, err
	}
	source, err := MigrationsFor(dir)
	if err != nil {
		return nil, err
	}
	return migrations.NewRunner(db, source, migrations.WithLogger(logger))
}
