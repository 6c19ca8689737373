package legacycmd

import (
	"errors"

	"github.com/goliatone/go-lifecycle/internal/commands"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	onReport    ReportFunc
	handlerOpts []commands.HandlerOption[RunLegacyMigrationCommand]
}

// WithReportFunc forwards each run's report to fn.
func WithReportFunc(fn ReportFunc) Option {
	return func(cfg *options) {
		cfg.onReport = fn
	}
}

// WithHandlerOptions forwards options to the handler constructor.
func WithHandlerOptions(opts ...commands.HandlerOption[RunLegacyMigrationCommand]) Option {
	return func(cfg *options) {
		cfg.handlerOpts = append(cfg.handlerOpts, opts...)
	}
}

// RegisterLegacyCommands builds the migration handler and registers it with reg when provided.
func RegisterLegacyCommands(reg CommandRegistry, migrator Migrator, provider interfaces.LoggerProvider, opts ...Option) (*RunLegacyMigrationHandler, error) {
	if migrator == nil {
		return nil, errors.New("legacy command registration: migrator is nil")
	}
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	handler := NewRunLegacyMigrationHandler(migrator, commands.CommandLogger(provider, "legacy"), cfg.onReport, cfg.handlerOpts...)
	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return handler, nil
}
