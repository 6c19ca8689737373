package statusescmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lifecycle/internal/commands"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the status command handlers.
type HandlerSet struct {
	Seed    *SeedDefaultsHandler
	Refresh *RefreshCacheHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	seedHandlerOpts    []commands.HandlerOption[SeedDefaultsCommand]
	refreshHandlerOpts []commands.HandlerOption[RefreshCacheCommand]
}

// WithSeedHandlerOptions forwards options to the SeedDefaultsHandler constructor.
func WithSeedHandlerOptions(opts ...commands.HandlerOption[SeedDefaultsCommand]) Option {
	return func(cfg *options) {
		cfg.seedHandlerOpts = append(cfg.seedHandlerOpts, opts...)
	}
}

// WithRefreshHandlerOptions forwards options to the RefreshCacheHandler constructor.
func WithRefreshHandlerOptions(opts ...commands.HandlerOption[RefreshCacheCommand]) Option {
	return func(cfg *options) {
		cfg.refreshHandlerOpts = append(cfg.refreshHandlerOpts, opts...)
	}
}

// RegisterStatusCommands builds the status handlers and registers them with reg
// when provided. A nil cache skips the refresh handler.
func RegisterStatusCommands(reg CommandRegistry, seeder Seeder, cache CacheRefresher, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if seeder == nil {
		return nil, errors.New("statuses command registration: seeder is nil")
	}
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "statuses")
	set := &HandlerSet{
		Seed: NewSeedDefaultsHandler(seeder, logger, cfg.seedHandlerOpts...),
	}
	if cache != nil {
		set.Refresh = NewRefreshCacheHandler(cache, logger, cfg.refreshHandlerOpts...)
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Seed); err != nil {
			return nil, err
		}
		if set.Refresh != nil {
			if err := reg.RegisterCommand(set.Refresh); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterRefreshCron schedules a full cache refresh through a cron registrar.
// The handler is executed with a background context.
func RegisterRefreshCron(reg CronRegistrar, handler *RefreshCacheHandler, cfg command.HandlerConfig) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), RefreshCacheCommand{All: true})
	})
}
