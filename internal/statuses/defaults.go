package statuses

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/validation"
)

// DefaultsVersion identifies the compiled-in default payload.
const DefaultsVersion = "v1"

// ErrDefaultsInvalid indicates a default payload failed schema or semantic checks.
var ErrDefaultsInvalid = errors.New("statuses: default payload invalid")

const fallbackColor = "#c4c4c4"

//go:embed defaults/statuses.v1.json
var defaultsV1 []byte

//go:embed defaults/schema.json
var defaultsSchema []byte

// DefaultEntry is one status of a default vocabulary.
type DefaultEntry struct {
	Name        domain.StatusName `json:"name"`
	DisplayName string            `json:"display_name,omitempty"`
	Color       string            `json:"color"`
}

// Defaults is a versioned default vocabulary for every status domain. It is
// the single source used for provisioning and for client-side fallback.
type Defaults struct {
	Version string                                 `json:"version"`
	Domains map[domain.StatusDomain][]DefaultEntry `json:"domains"`
}

// For returns a copy of the default entries of d in order.
func (d *Defaults) For(dom domain.StatusDomain) []DefaultEntry {
	if d == nil {
		return nil
	}
	entries := d.Domains[dom]
	out := make([]DefaultEntry, len(entries))
	copy(out, entries)
	return out
}

// Lookup finds the default entry for name in dom.
func (d *Defaults) Lookup(dom domain.StatusDomain, name domain.StatusName) (DefaultEntry, bool) {
	if d == nil {
		return DefaultEntry{}, false
	}
	for _, entry := range d.Domains[dom] {
		if entry.Name == name {
			return entry, true
		}
	}
	return DefaultEntry{}, false
}

// LoadDefaults validates raw against the defaults schema and decodes it.
func LoadDefaults(raw []byte) (*Defaults, error) {
	if err := validation.ValidateDocument(defaultsSchema, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDefaultsInvalid, err)
	}
	var payload Defaults
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDefaultsInvalid, err)
	}
	for dom, entries := range payload.Domains {
		if !dom.Valid() {
			return nil, fmt.Errorf("%w: unknown domain %q", ErrDefaultsInvalid, dom)
		}
		seen := make(map[domain.StatusName]struct{}, len(entries))
		for idx, entry := range entries {
			name := domain.NormalizeStatusName(string(entry.Name))
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: duplicate name %q in %s", ErrDefaultsInvalid, name, dom)
			}
			seen[name] = struct{}{}
			entry.Name = name
			if entry.DisplayName == "" {
				entry.DisplayName = string(name)
			}
			entry.Color = normalizeColor(entry.Color)
			entries[idx] = entry
		}
	}
	return &payload, nil
}

var (
	systemDefaultsOnce sync.Once
	systemDefaults     *Defaults
)

// SystemDefaults returns the compiled-in default vocabulary.
func SystemDefaults() *Defaults {
	systemDefaultsOnce.Do(func() {
		loaded, err := LoadDefaults(defaultsV1)
		if err != nil {
			panic(err)
		}
		systemDefaults = loaded
	})
	return systemDefaults
}
