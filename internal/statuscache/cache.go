package statuscache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/goliatone/go-lifecycle/internal/statuses"
	"github.com/goliatone/go-lifecycle/pkg/interfaces"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single read against the status service.
const DefaultTimeout = 3 * time.Second

var ErrSourceRequired = errors.New("statuscache: source required")

// Source is the read side of the status configuration service.
type Source interface {
	ListActive(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain) ([]*statuses.StatusDefinition, error)
}

// Option is one selectable status as rendered by clients.
type Option struct {
	Name        domain.StatusName `json:"name"`
	DisplayName string            `json:"display_name"`
	Color       string            `json:"color"`
	OrderIndex  int               `json:"order_index"`
}

// Options is the option list for one (organization, domain) pair. Fallback
// is set when Items came from the compiled defaults instead of the source.
type Options struct {
	OrganizationID uuid.UUID           `json:"organization_id"`
	Domain         domain.StatusDomain `json:"domain"`
	Items          []Option            `json:"items"`
	Fallback       bool                `json:"fallback"`
	FetchedAt      time.Time           `json:"fetched_at"`
}

// Names returns the status names in display order.
func (o Options) Names() []domain.StatusName {
	names := make([]domain.StatusName, 0, len(o.Items))
	for _, item := range o.Items {
		names = append(names, item.Name)
	}
	return names
}

type cacheKey struct {
	organizationID uuid.UUID
	domain         domain.StatusDomain
}

func (k cacheKey) String() string {
	return k.organizationID.String() + ":" + string(k.domain)
}

// CacheOption configures the cache.
type CacheOption func(*Cache)

// WithTimeout overrides the per-read timeout. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) CacheOption {
	return func(c *Cache) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithNow overrides the clock used for FetchedAt.
func WithNow(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for fallback and load events.
func WithLogger(logger interfaces.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaults overrides the fallback payload.
func WithDefaults(defaults *statuses.Defaults) CacheOption {
	return func(c *Cache) {
		if defaults != nil {
			c.defaults = defaults
		}
	}
}

// Cache memoizes active status lists per (organization, domain). Entries are
// never invalidated by server writes; callers refresh explicitly.
type Cache struct {
	source   Source
	defaults *statuses.Defaults
	timeout  time.Duration
	now      func() time.Time
	logger   interfaces.Logger

	mu      sync.RWMutex
	entries map[cacheKey]Options
	group   singleflight.Group
}

// New constructs a cache over source.
func New(source Source, opts ...CacheOption) (*Cache, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	c := &Cache{
		source:  source,
		timeout: DefaultTimeout,
		now:     time.Now,
		logger:  logging.NoOp(),
		entries: make(map[cacheKey]Options),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.defaults == nil {
		c.defaults = statuses.SystemDefaults()
	}
	return c, nil
}

// Get returns the option list for the pair. Source failures never surface
// as errors: the compiled defaults are returned with Fallback set and
// nothing is stored, so the next read retries the source.
func (c *Cache) Get(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain) (Options, error) {
	if !d.Valid() {
		return Options{}, domain.ErrUnknownDomain
	}
	key := cacheKey{organizationID: organizationID, domain: d}
	if cached, ok := c.lookup(key); ok {
		return cached, nil
	}

	value, _, _ := c.group.Do(key.String(), func() (any, error) {
		if cached, ok := c.lookup(key); ok {
			return cached, nil
		}
		return c.load(ctx, key), nil
	})
	return cloneOptions(value.(Options)), nil
}

// Refresh drops the stored entry for the pair and loads it again.
func (c *Cache) Refresh(ctx context.Context, organizationID uuid.UUID, d domain.StatusDomain) (Options, error) {
	if !d.Valid() {
		return Options{}, domain.ErrUnknownDomain
	}
	key := cacheKey{organizationID: organizationID, domain: d}
	c.forget(key)
	return c.Get(ctx, organizationID, d)
}

// RefreshAll drops every stored entry and returns how many were dropped.
// Entries are reloaded lazily on the next read.
func (c *Cache) RefreshAll() int {
	c.mu.Lock()
	dropped := len(c.entries)
	keys := make([]cacheKey, 0, dropped)
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.entries = make(map[cacheKey]Options)
	c.mu.Unlock()

	for _, key := range keys {
		c.group.Forget(key.String())
	}
	c.logger.Debug("statuscache.refresh_all", "dropped", dropped)
	return dropped
}

// Len reports the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key cacheKey) (Options, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.entries[key]
	if !ok {
		return Options{}, false
	}
	return cloneOptions(cached), true
}

func (c *Cache) forget(key cacheKey) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key.String())
}

func (c *Cache) load(ctx context.Context, key cacheKey) Options {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithScope(c.logger.WithContext(ctx), key.organizationID.String(), string(key.domain))

	readCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := c.source.ListActive(readCtx, key.organizationID, key.domain)
	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, statuses.ErrNotConfigured):
			reason = "not_configured"
		case errors.Is(err, context.DeadlineExceeded):
			reason = "timeout"
		}
		logger.Warn("statuscache.fallback", "reason", reason, "error", err)
		return c.fallback(key)
	}

	options := Options{
		OrganizationID: key.organizationID,
		Domain:         key.domain,
		Items:          make([]Option, 0, len(records)),
		FetchedAt:      c.now().UTC(),
	}
	for _, record := range records {
		if record == nil {
			continue
		}
		options.Items = append(options.Items, Option{
			Name:        record.Name,
			DisplayName: record.DisplayName,
			Color:       record.Color,
			OrderIndex:  record.OrderIndex,
		})
	}

	c.mu.Lock()
	c.entries[key] = options
	c.mu.Unlock()
	logger.Debug("statuscache.loaded", "items", len(options.Items))
	return cloneOptions(options)
}

func (c *Cache) fallback(key cacheKey) Options {
	entries := c.defaults.For(key.domain)
	options := Options{
		OrganizationID: key.organizationID,
		Domain:         key.domain,
		Items:          make([]Option, 0, len(entries)),
		Fallback:       true,
		FetchedAt:      c.now().UTC(),
	}
	for idx, entry := range entries {
		options.Items = append(options.Items, Option{
			Name:        entry.Name,
			DisplayName: entry.DisplayName,
			Color:       entry.Color,
			OrderIndex:  idx,
		})
	}
	return options
}

func cloneOptions(src Options) Options {
	dst := src
	if src.Items != nil {
		dst.Items = append([]Option(nil), src.Items...)
	}
	return dst
}
