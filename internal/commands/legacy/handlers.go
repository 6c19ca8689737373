package legacycmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lifecycle/internal/commands"
	"github.com/goliatone/go-lifecycle/internal/legacy"
	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
)

const runMigrationOperation = "legacy.run_migration"

// ErrMigratorRequired is returned when the handler is built without a runner.
var ErrMigratorRequired = errors.New("legacy command: migrator is nil")

var _ command.Commander[RunLegacyMigrationCommand] = (*RunLegacyMigrationHandler)(nil)

// Migrator runs the legacy status migration.
type Migrator interface {
	Run(ctx context.Context, opts legacy.Options) (*legacy.Report, error)
}

// ReportFunc receives the report of every run, including failed ones.
type ReportFunc func(ctx context.Context, report *legacy.Report)

// RunLegacyMigrationHandler executes the migration with no timeout: a run over a
// large tenant must be allowed to finish.
type RunLegacyMigrationHandler struct {
	inner *commands.Handler[RunLegacyMigrationCommand]
}

// NewRunLegacyMigrationHandler binds the handler to a migrator.
func NewRunLegacyMigrationHandler(migrator Migrator, logger interfaces.Logger, onReport ReportFunc, opts ...commands.HandlerOption[RunLegacyMigrationCommand]) *RunLegacyMigrationHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RunLegacyMigrationCommand) error {
		if migrator == nil {
			return ErrMigratorRequired
		}
		report, err := migrator.Run(ctx, legacy.Options{
			OrganizationID: msg.OrganizationID,
			EntityTypes:    msg.entityTypes(),
			ActorID:        msg.ActorID,
		})
		if report != nil {
			logging.WithFields(baseLogger, map[string]any{
				"rewritten":    report.Total(),
				"failed_pairs": len(report.Errors),
				"ensured":      len(report.Ensured),
			}).Info("legacy.command.run_migration.completed")
			if onReport != nil {
				onReport(ctx, report)
			}
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[RunLegacyMigrationCommand]{
		commands.WithLogger[RunLegacyMigrationCommand](baseLogger),
		commands.WithOperation[RunLegacyMigrationCommand](runMigrationOperation),
		commands.WithTimeout[RunLegacyMigrationCommand](0),
		commands.WithMessageFields(func(msg RunLegacyMigrationCommand) map[string]any {
			fields := map[string]any{"scope": "global"}
			if msg.OrganizationID != nil {
				fields["scope"] = "organization"
				fields["organization_id"] = msg.OrganizationID.String()
			}
			if len(msg.EntityTypes) > 0 {
				fields["entity_types"] = msg.EntityTypes
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RunLegacyMigrationCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RunLegacyMigrationHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RunLegacyMigrationCommand].
func (h *RunLegacyMigrationHandler) Execute(ctx context.Context, msg RunLegacyMigrationCommand) error {
	return h.inner.Execute(ctx, msg)
}
