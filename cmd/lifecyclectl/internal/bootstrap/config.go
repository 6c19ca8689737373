package bootstrap

import (
	"errors"
	"io/fs"
	"strings"

	lifecycle "github.com/goliatone/go-lifecycle"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable read by the CLI.
const EnvPrefix = "LIFECYCLE"

// Config keys shared by flags, environment and config files.
const (
	KeyStorageDriver   = "storage.driver"
	KeyStorageDSN      = "storage.dsn"
	KeyCacheEnabled    = "cache.enabled"
	KeyCacheTTL        = "cache.ttl"
	KeyReadTimeout     = "statuses.read_timeout"
	KeySeedOnProvision = "statuses.seed_on_provision"
	KeyLegacyEntities  = "legacy.entity_types"
	KeyLoggingEnabled  = "logging.enabled"
	KeyLoggingLevel    = "logging.level"
	KeyLoggingFormat   = "logging.format"
)

// NewViper returns a viper instance with defaults taken from
// lifecycle.DefaultConfig and LIFECYCLE_* environment binding.
func NewViper() *viper.Viper {
	defaults := lifecycle.DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyStorageDriver, lifecycle.DriverSQLite)
	v.SetDefault(KeyStorageDSN, "")
	v.SetDefault(KeyCacheEnabled, defaults.Cache.Enabled)
	v.SetDefault(KeyCacheTTL, defaults.Cache.DefaultTTL)
	v.SetDefault(KeyReadTimeout, defaults.Statuses.ReadTimeout)
	v.SetDefault(KeySeedOnProvision, false)
	v.SetDefault(KeyLegacyEntities, defaults.Legacy.EntityTypes)
	v.SetDefault(KeyLoggingEnabled, true)
	v.SetDefault(KeyLoggingLevel, "warn")
	v.SetDefault(KeyLoggingFormat, "console")
	return v
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are ignored.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ReadConfigFile merges an optional YAML/JSON/TOML file into v.
func ReadConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	v.SetConfigFile(path)
	return v.ReadInConfig()
}

// ConfigFromViper maps resolved settings onto a bun-backed module config.
func ConfigFromViper(v *viper.Viper) (lifecycle.Config, error) {
	cfg := lifecycle.DefaultConfig()
	cfg.Storage.Provider = lifecycle.StorageProviderBun
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(v.GetString(KeyStorageDriver)))
	cfg.Storage.DSN = strings.TrimSpace(v.GetString(KeyStorageDSN))
	cfg.Cache.Enabled = v.GetBool(KeyCacheEnabled)
	cfg.Cache.DefaultTTL = v.GetDuration(KeyCacheTTL)
	cfg.Statuses.ReadTimeout = v.GetDuration(KeyReadTimeout)
	cfg.Statuses.SeedOnProvision = v.GetBool(KeySeedOnProvision)
	if types := v.GetStringSlice(KeyLegacyEntities); len(types) > 0 {
		cfg.Legacy.EntityTypes = types
	}
	cfg.Features.Logger = v.GetBool(KeyLoggingEnabled)
	cfg.Logging.Level = v.GetString(KeyLoggingLevel)
	cfg.Logging.Format = v.GetString(KeyLoggingFormat)

	if err := cfg.Validate(); err != nil {
		return lifecycle.Config{}, err
	}
	if err := cfg.ValidateDSN(); err != nil {
		return lifecycle.Config{}, err
	}
	return cfg, nil
}

// ParseUUID returns nil for blank input.
func ParseUUID(value string) (*uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
