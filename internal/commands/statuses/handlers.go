package statusescmd

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lifecycle/internal/commands"
	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/goliatone/go-lifecycle/internal/statuscache"
	"github.com/goliatone/go-lifecycle/internal/statuses"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	seedDefaultsOperation = "statuses.seed_defaults"
	refreshCacheOperation = "statuses.refresh_cache"
)

var (
	ErrSeederRequired = errors.New("statuses command: seeder is nil")
	ErrCacheRequired  = errors.New("statuses command: cache is nil")
)

var (
	_ command.Commander[SeedDefaultsCommand] = (*SeedDefaultsHandler)(nil)
	_ command.Commander[RefreshCacheCommand] = (*RefreshCacheHandler)(nil)
)

// Seeder provisions default vocabularies.
type Seeder interface {
	SeedDefaults(ctx context.Context, organizationID uuid.UUID, actorID *uuid.UUID) (*statuses.SeedResult, error)
}

// CacheRefresher drops client-side status cache entries.
type CacheRefresher interface {
	Refresh(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain) (statuscache.Options, error)
	RefreshAll() int
}

// SeedDefaultsHandler provisions an organization's default vocabularies.
type SeedDefaultsHandler struct {
	inner *commands.Handler[SeedDefaultsCommand]
}

// NewSeedDefaultsHandler binds the handler to a seeder.
func NewSeedDefaultsHandler(seeder Seeder, logger interfaces.Logger, opts ...commands.HandlerOption[SeedDefaultsCommand]) *SeedDefaultsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg SeedDefaultsCommand) error {
		if seeder == nil {
			return ErrSeederRequired
		}
		result, err := seeder.SeedDefaults(ctx, msg.OrganizationID, msg.ActorID)
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created":          result.Total(),
				"skipped_domains":  len(result.Skipped),
				"defaults_version": result.DefaultsVersion,
			}).Info("statuses.command.seed_defaults.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SeedDefaultsCommand]{
		commands.WithLogger[SeedDefaultsCommand](baseLogger),
		commands.WithOperation[SeedDefaultsCommand](seedDefaultsOperation),
		commands.WithMessageFields(func(msg SeedDefaultsCommand) map[string]any {
			return map[string]any{"organization_id": msg.OrganizationID.String()}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SeedDefaultsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SeedDefaultsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SeedDefaultsCommand].
func (h *SeedDefaultsHandler) Execute(ctx context.Context, msg SeedDefaultsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RefreshCacheHandler refreshes the client-side status cache.
type RefreshCacheHandler struct {
	inner *commands.Handler[RefreshCacheCommand]
}

// NewRefreshCacheHandler binds the handler to a cache.
func NewRefreshCacheHandler(cache CacheRefresher, logger interfaces.Logger, opts ...commands.HandlerOption[RefreshCacheCommand]) *RefreshCacheHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RefreshCacheCommand) error {
		if cache == nil {
			return ErrCacheRequired
		}
		if msg.All {
			dropped := cache.RefreshAll()
			baseLogger.Info("statuses.command.refresh_cache.completed", "dropped", dropped)
			return nil
		}
		d, err := domain.ParseStatusDomain(strings.TrimSpace(msg.Domain))
		if err != nil {
			return err
		}
		options, err := cache.Refresh(ctx, msg.OrganizationID, d)
		if err != nil {
			return err
		}
		baseLogger.Info("statuses.command.refresh_cache.completed",
			"items", len(options.Items),
			"fallback", options.Fallback,
		)
		return nil
	}

	handlerOpts := []commands.HandlerOption[RefreshCacheCommand]{
		commands.WithLogger[RefreshCacheCommand](baseLogger),
		commands.WithOperation[RefreshCacheCommand](refreshCacheOperation),
		commands.WithMessageFields(func(msg RefreshCacheCommand) map[string]any {
			if msg.All {
				return map[string]any{"all": true}
			}
			return map[string]any{
				"organization_id": msg.OrganizationID.String(),
				"domain":          msg.Domain,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RefreshCacheCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RefreshCacheHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RefreshCacheCommand].
func (h *RefreshCacheHandler) Execute(ctx context.Context, msg RefreshCacheCommand) error {
	return h.inner.Execute(ctx, msg)
}
