package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-lifecycle/internal/domain"
)

var (
	ErrStorageProviderUnknown  = errors.New("lifecycle config: storage provider is invalid")
	ErrStorageDriverUnknown    = errors.New("lifecycle config: storage driver is invalid")
	ErrStorageDSNRequired      = errors.New("lifecycle config: storage dsn is required for the bun provider")
	ErrCacheTTLInvalid         = errors.New("lifecycle config: cache ttl must be positive when cache is enabled")
	ErrReadTimeoutInvalid      = errors.New("lifecycle config: status read timeout must be positive")
	ErrLegacyEntityTypeUnknown = errors.New("lifecycle config: legacy entity type is invalid")
	ErrLoggingProviderRequired = errors.New("lifecycle config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("lifecycle config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("lifecycle config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("lifecycle config: logging format is invalid")
)

const (
	StorageProviderBun    = "bun"
	StorageProviderMemory = "memory"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config aggregates storage, cache and logging settings for the lifecycle module.
type Config struct {
	Storage  StorageConfig
	Cache    CacheConfig
	Statuses StatusesConfig
	Legacy   LegacyConfig
	Logging  LoggingConfig
	Features Features
}

// StorageConfig selects the persistence backend. DSN and Driver are only read
// by the CLI; library callers hand the container an open *bun.DB.
type StorageConfig struct {
	Provider string
	Driver   string
	DSN      string
}

// CacheConfig controls the repository read cache for status definitions.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// StatusesConfig captures status configuration behaviour.
type StatusesConfig struct {
	// ReadTimeout bounds client-side cache reads before falling back to defaults.
	ReadTimeout time.Duration
	// SeedOnProvision seeds default vocabularies the first time an
	// organization is seen by the CLI.
	SeedOnProvision bool
}

// LegacyConfig scopes the legacy status migration.
type LegacyConfig struct {
	EntityTypes []string
}

// Features toggles optional module behaviour.
type Features struct {
	Logger bool
	Audit  bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns an in-memory configuration suitable for tests and embedding.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: StorageProviderMemory,
			Driver:   DriverSQLite,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Statuses: StatusesConfig{
			ReadTimeout: 3 * time.Second,
		},
		Legacy: LegacyConfig{
			EntityTypes: []string{string(domain.EntityTypeActivity), string(domain.EntityTypeTask)},
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Provider) {
	case StorageProviderMemory:
	case StorageProviderBun:
		switch normalize(cfg.Storage.Driver) {
		case DriverPostgres, DriverSQLite:
		default:
			return fmt.Errorf("%w: %q", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Statuses.ReadTimeout <= 0 {
		return ErrReadTimeoutInvalid
	}
	for _, entityType := range cfg.Legacy.EntityTypes {
		switch domain.EntityType(normalize(entityType)) {
		case domain.EntityTypeActivity, domain.EntityTypeTask:
		default:
			return fmt.Errorf("%w: %q", ErrLegacyEntityTypeUnknown, entityType)
		}
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// ValidateDSN is checked by callers that open the database themselves.
func (cfg Config) ValidateDSN() error {
	if normalize(cfg.Storage.Provider) == StorageProviderBun && strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	return nil
}

// LegacyEntityTypes returns the configured entity types as domain values.
func (cfg Config) LegacyEntityTypes() []domain.EntityType {
	out := make([]domain.EntityType, 0, len(cfg.Legacy.EntityTypes))
	for _, entityType := range cfg.Legacy.EntityTypes {
		if trimmed := normalize(entityType); trimmed != "" {
			out = append(out, domain.EntityType(trimmed))
		}
	}
	return out
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
