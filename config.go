package lifecycle

import "github.com/goliatone/go-lifecycle/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrReadTimeoutInvalid      = runtimeconfig.ErrReadTimeoutInvalid
	ErrLegacyEntityTypeUnknown = runtimeconfig.ErrLegacyEntityTypeUnknown
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

const (
	StorageProviderBun    = runtimeconfig.StorageProviderBun
	StorageProviderMemory = runtimeconfig.StorageProviderMemory
	DriverPostgres        = runtimeconfig.DriverPostgres
	DriverSQLite          = runtimeconfig.DriverSQLite
)

type (
	Config         = runtimeconfig.Config
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	StatusesConfig = runtimeconfig.StatusesConfig
	LegacyConfig   = runtimeconfig.LegacyConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
