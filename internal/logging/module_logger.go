package logging

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-lifecycle/pkg/interfaces"
)

const (
	rootModule        = "lifecycle"
	statusesModule    = "lifecycle.statuses"
	transitionsModule = "lifecycle.transitions"
	legacyModule      = "lifecycle.legacy"
	statusCacheModule = "lifecycle.statuscache"
	changesModule     = "lifecycle.changes"
)

const (
	fieldModule       = "module"
	fieldOrganization = "organization_id"
	fieldDomain       = "domain"
	fieldEntityType   = "entity_type"
	fieldEntityID     = "entity_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{fieldModule: module})
}

// StatusesLogger returns the logger namespace reserved for status configuration.
func StatusesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, statusesModule)
}

// TransitionsLogger returns the logger namespace reserved for the transition validator.
func TransitionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, transitionsModule)
}

// LegacyLogger returns the logger namespace reserved for the legacy migration tool.
func LegacyLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, legacyModule)
}

// StatusCacheLogger returns the logger namespace reserved for the client status cache.
func StatusCacheLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, statusCacheModule)
}

// ChangesLogger returns the logger namespace reserved for status change application.
func ChangesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, changesModule)
}

// WithScope enriches the logger with the organization and domain a call is
// scoped to. Empty values are ignored.
func WithScope(logger interfaces.Logger, organizationID, domain string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(organizationID); trimmed != "" {
		fields[fieldOrganization] = trimmed
	}
	if trimmed := strings.TrimSpace(domain); trimmed != "" {
		fields[fieldDomain] = trimmed
	}
	return WithFields(logger, fields)
}

// WithEntity tags the logger with the entity a status change targets.
func WithEntity(logger interfaces.Logger, entityType, entityID string) interfaces.Logger {
	return WithFields(logger, map[string]any{
		fieldEntityType: strings.TrimSpace(entityType),
		fieldEntityID:   strings.TrimSpace(entityID),
	})
}

// WithFields attaches fields to logger. Blank keys, blank strings and nil
// values are skipped. Loggers that do not implement FieldsLogger get the
// fields appended to the args of every entry instead.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil {
		return nil
	}
	clean := make(map[string]any, len(fields))
	for key, value := range fields {
		key = strings.TrimSpace(key)
		if key == "" || value == nil || value == "" {
			continue
		}
		clean[key] = value
	}
	if len(clean) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(clean)
	}
	return argsLogger{inner: logger, args: sortedArgs(clean)}
}

func sortedArgs(fields map[string]any) []any {
	keys := slices.Sorted(maps.Keys(fields))
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

// argsLogger carries fields as trailing key/value args.
type argsLogger struct {
	inner interfaces.Logger
	args  []any
}

func (l argsLogger) with(args []any) []any {
	return append(append(make([]any, 0, len(args)+len(l.args)), args...), l.args...)
}

func (l argsLogger) Trace(msg string, args ...any) { l.inner.Trace(msg, l.with(args)...) }
func (l argsLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, l.with(args)...) }
func (l argsLogger) Info(msg string, args ...any)  { l.inner.Info(msg, l.with(args)...) }
func (l argsLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, l.with(args)...) }
func (l argsLogger) Error(msg string, args ...any) { l.inner.Error(msg, l.with(args)...) }
func (l argsLogger) Fatal(msg string, args ...any) { l.inner.Fatal(msg, l.with(args)...) }

func (l argsLogger) WithFields(fields map[string]any) interfaces.Logger {
	extra := WithFields(l.inner, fields)
	if next, ok := extra.(argsLogger); ok {
		return argsLogger{inner: l.inner, args: l.with(next.args)}
	}
	return l
}

func (l argsLogger) WithContext(ctx context.Context) interfaces.Logger {
	return argsLogger{inner: l.inner.WithContext(ctx), args: l.args}
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
