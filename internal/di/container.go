package di

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-lifecycle/internal/changes"
	legacycmd "github.com/goliatone/go-lifecycle/internal/commands/legacy"
	statusescmd "github.com/goliatone/go-lifecycle/internal/commands/statuses"
	"github.com/goliatone/go-lifecycle/internal/entities"
	"github.com/goliatone/go-lifecycle/internal/legacy"
	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/goliatone/go-lifecycle/internal/logging/gologger"
	"github.com/goliatone/go-lifecycle/internal/runtimeconfig"
	"github.com/goliatone/go-lifecycle/internal/statuscache"
	"github.com/goliatone/go-lifecycle/internal/statuses"
	"github.com/goliatone/go-lifecycle/internal/transitions"
	"github.com/goliatone/go-lifecycle/pkg/activity"
	"github.com/goliatone/go-lifecycle/pkg/activity/usersink"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Container wires module dependencies. Without a bun database every
// repository is in-memory.
type Container struct {
	Config runtimeconfig.Config

	bunDB          *bun.DB
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer
	loggerProvider interfaces.LoggerProvider
	activitySink   interfaces.ActivitySink
	activityHooks  activity.Hooks
	now            func() time.Time

	definitionRepo statuses.DefinitionRepository
	entityStore    entities.Store

	statusSvc    statuses.Service
	validator    *transitions.Validator
	statusCache  *statuscache.Cache
	legacyRunner *legacy.Runner
	changeSvc    changes.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB switches repositories and the entity store to bun.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the logger provider built from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithActivitySink forwards status change audit records to a go-users sink
// when the audit feature is enabled.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithActivityHooks registers extra hooks notified on every applied change.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithEntityStore overrides the host entity store.
func WithEntityStore(store entities.Store) Option {
	return func(c *Container) {
		c.entityStore = store
	}
}

// WithDefinitionRepository overrides the status definition repository.
func WithDefinitionRepository(repo statuses.DefinitionRepository) Option {
	return func(c *Container) {
		c.definitionRepo = repo
	}
}

// WithStatusService overrides the status configuration service binding.
func WithStatusService(svc statuses.Service) Option {
	return func(c *Container) {
		c.statusSvc = svc
	}
}

// WithClock overrides the time source shared by every service.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.now = now
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if strings.EqualFold(cfg.Storage.Provider, runtimeconfig.StorageProviderBun) && c.bunDB == nil {
		return nil, fmt.Errorf("di: storage provider %q requires a bun database", cfg.Storage.Provider)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	if err := c.configureServices(); err != nil {
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "").Info("container.configured",
		"storage", c.storageLabel(),
		"cache", c.cacheService != nil,
		"audit", c.Config.Features.Audit && c.activitySink != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.definitionRepo == nil {
		if c.bunDB != nil {
			c.definitionRepo = statuses.NewBunDefinitionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		} else {
			c.definitionRepo = statuses.NewMemoryRepository()
		}
	}
	if c.entityStore == nil {
		if c.bunDB != nil {
			c.entityStore = entities.NewBunStore(c.bunDB)
		} else {
			c.entityStore = entities.NewMemoryStore()
		}
	}
}

func (c *Container) configureServices() error {
	if c.statusSvc == nil {
		c.statusSvc = statuses.NewService(c.definitionRepo,
			statuses.WithNow(c.now),
			statuses.WithLogger(logging.StatusesLogger(c.loggerProvider)),
		)
	}

	c.validator = transitions.NewValidator(c.statusSvc,
		transitions.WithLogger(logging.TransitionsLogger(c.loggerProvider)),
	)

	cache, err := statuscache.New(c.statusSvc,
		statuscache.WithTimeout(c.Config.Statuses.ReadTimeout),
		statuscache.WithNow(c.now),
		statuscache.WithLogger(logging.StatusCacheLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.statusCache = cache

	runner, err := legacy.NewRunner(c.statusSvc, c.entityStore,
		legacy.WithNow(c.now),
		legacy.WithLogger(logging.LegacyLogger(c.loggerProvider)),
		legacy.WithEntityTypes(c.Config.LegacyEntityTypes()...),
	)
	if err != nil {
		return err
	}
	c.legacyRunner = runner

	hooks := append(activity.Hooks(nil), c.activityHooks...)
	if c.Config.Features.Audit && c.activitySink != nil {
		hooks = append(hooks, usersink.Hook{Sink: c.activitySink})
	}
	changeSvc, err := changes.NewService(c.validator, c.entityStore,
		changes.WithNow(c.now),
		changes.WithLogger(logging.ChangesLogger(c.loggerProvider)),
		changes.WithActivityHooks(hooks...),
	)
	if err != nil {
		return err
	}
	c.changeSvc = changeSvc
	return nil
}

// CommandHandlers groups the go-command handlers exposed by the module.
type CommandHandlers struct {
	Legacy   *legacycmd.RunLegacyMigrationHandler
	Statuses *statusescmd.HandlerSet
}

// CommandRegistry is the registration contract shared by the command packages.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// RegisterCommands builds every command handler and registers it with reg
// when provided.
func (c *Container) RegisterCommands(reg CommandRegistry, onReport legacycmd.ReportFunc) (*CommandHandlers, error) {
	legacyHandler, err := legacycmd.RegisterLegacyCommands(reg, c.legacyRunner, c.loggerProvider,
		legacycmd.WithReportFunc(onReport),
	)
	if err != nil {
		return nil, err
	}
	statusHandlers, err := statusescmd.RegisterStatusCommands(reg, c.statusSvc, c.statusCache, c.loggerProvider)
	if err != nil {
		return nil, err
	}
	return &CommandHandlers{Legacy: legacyHandler, Statuses: statusHandlers}, nil
}

// StatusService returns the status configuration service.
func (c *Container) StatusService() statuses.Service { return c.statusSvc }

// Validator returns the transition validator.
func (c *Container) Validator() *transitions.Validator { return c.validator }

// StatusCache returns the client-side status cache.
func (c *Container) StatusCache() *statuscache.Cache { return c.statusCache }

// LegacyRunner returns the legacy migration runner.
func (c *Container) LegacyRunner() *legacy.Runner { return c.legacyRunner }

// ChangeService returns the status change service.
func (c *Container) ChangeService() changes.Service { return c.changeSvc }

// EntityStore returns the host entity store.
func (c *Container) EntityStore() entities.Store { return c.entityStore }

// DefinitionRepository returns the status definition repository.
func (c *Container) DefinitionRepository() statuses.DefinitionRepository { return c.definitionRepo }

// LoggerProvider returns the configured logger provider, if any.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// BunDB returns the bun database, nil for in-memory containers.
func (c *Container) BunDB() *bun.DB { return c.bunDB }

func (c *Container) storageLabel() string {
	if c.bunDB != nil {
		return runtimeconfig.StorageProviderBun
	}
	return runtimeconfig.StorageProviderMemory
}
