package statusescmd

import (
	"context"
	"errors"
	"testing"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/statuscache"
	"github.com/goliatone/go-lifecycle/internal/statuses"
	"github.com/google/uuid"
)

type seedCall struct {
	organizationID uuid.UUID
	actorID        *uuid.UUID
}

type stubSeeder struct {
	calls  []seedCall
	result *statuses.SeedResult
	err    error
}

func (s *stubSeeder) SeedDefaults(_ context.Context, organizationID uuid.UUID, actorID *uuid.UUID) (*statuses.SeedResult, error) {
	s.calls = append(s.calls, seedCall{organizationID: organizationID, actorID: actorID})
	return s.result, s.err
}

type refreshCall struct {
	organizationID uuid.UUID
	domain         domain.StatusDomain
}

type stubCache struct {
	refreshes []refreshCall
	all       int
}

func (c *stubCache) Refresh(_ context.Context, organizationID uuid.UUID, d domain.StatusDomain) (statuscache.Options, error) {
	c.refreshes = append(c.refreshes, refreshCall{organizationID: organizationID, domain: d})
	return statuscache.Options{OrganizationID: organizationID, Domain: d}, nil
}

func (c *stubCache) RefreshAll() int {
	c.all++
	return 4
}

type stubRegistry struct {
	handlers []any
}

func (r *stubRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestSeedDefaultsCommandValidate(t *testing.T) {
	if err := (SeedDefaultsCommand{}).Validate(); err == nil {
		t.Fatalf("expected error for missing organization")
	}
	if err := (SeedDefaultsCommand{OrganizationID: uuid.New()}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRefreshCacheCommandValidate(t *testing.T) {
	org := uuid.New()
	cases := []struct {
		name    string
		cmd     RefreshCacheCommand
		wantErr bool
	}{
		{name: "all", cmd: RefreshCacheCommand{All: true}},
		{name: "pair", cmd: RefreshCacheCommand{OrganizationID: org, Domain: "task"}},
		{name: "missing organization", cmd: RefreshCacheCommand{Domain: "task"}, wantErr: true},
		{name: "missing domain", cmd: RefreshCacheCommand{OrganizationID: org}, wantErr: true},
		{name: "unknown domain", cmd: RefreshCacheCommand{OrganizationID: org, Domain: "billing"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSeedDefaultsHandlerInvokesSeeder(t *testing.T) {
	org := uuid.New()
	actor := uuid.New()
	seeder := &stubSeeder{result: &statuses.SeedResult{OrganizationID: org, DefaultsVersion: "v1"}}
	handler := NewSeedDefaultsHandler(seeder, nil)

	if err := handler.Execute(context.Background(), SeedDefaultsCommand{OrganizationID: org, ActorID: &actor}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(seeder.calls) != 1 || seeder.calls[0].organizationID != org || seeder.calls[0].actorID != &actor {
		t.Fatalf("unexpected seed calls %+v", seeder.calls)
	}
}

func TestSeedDefaultsHandlerPropagatesFailure(t *testing.T) {
	seeder := &stubSeeder{err: errors.New("database offline")}
	handler := NewSeedDefaultsHandler(seeder, nil)

	err := handler.Execute(context.Background(), SeedDefaultsCommand{OrganizationID: uuid.New()})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestSeedDefaultsHandlerValidationShortCircuits(t *testing.T) {
	seeder := &stubSeeder{}
	handler := NewSeedDefaultsHandler(seeder, nil)

	err := handler.Execute(context.Background(), SeedDefaultsCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(seeder.calls) != 0 {
		t.Fatalf("expected seeder not to run")
	}
}

func TestRefreshCacheHandler(t *testing.T) {
	cache := &stubCache{}
	handler := NewRefreshCacheHandler(cache, nil)
	org := uuid.New()

	if err := handler.Execute(context.Background(), RefreshCacheCommand{OrganizationID: org, Domain: " approval "}); err != nil {
		t.Fatalf("execute pair: %v", err)
	}
	if len(cache.refreshes) != 1 || cache.refreshes[0].domain != domain.DomainApproval || cache.refreshes[0].organizationID != org {
		t.Fatalf("unexpected refreshes %+v", cache.refreshes)
	}

	if err := handler.Execute(context.Background(), RefreshCacheCommand{All: true}); err != nil {
		t.Fatalf("execute all: %v", err)
	}
	if cache.all != 1 || len(cache.refreshes) != 1 {
		t.Fatalf("expected a single RefreshAll call, got all=%d refreshes=%d", cache.all, len(cache.refreshes))
	}
}

func TestRegisterStatusCommands(t *testing.T) {
	if _, err := RegisterStatusCommands(nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil seeder")
	}

	reg := &stubRegistry{}
	set, err := RegisterStatusCommands(reg, &stubSeeder{}, &stubCache{}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if set.Seed == nil || set.Refresh == nil || len(reg.handlers) != 2 {
		t.Fatalf("expected both handlers registered, got %+v (%d)", set, len(reg.handlers))
	}

	reg = &stubRegistry{}
	set, err = RegisterStatusCommands(reg, &stubSeeder{}, nil, nil)
	if err != nil {
		t.Fatalf("register without cache: %v", err)
	}
	if set.Refresh != nil || len(reg.handlers) != 1 {
		t.Fatalf("expected refresh handler skipped without cache")
	}
}

func TestRegisterRefreshCron(t *testing.T) {
	cache := &stubCache{}
	handler := NewRefreshCacheHandler(cache, nil)

	var scheduled func() error
	reg := func(_ command.HandlerConfig, fn any) error {
		scheduled = fn.(func() error)
		return nil
	}
	if err := RegisterRefreshCron(reg, handler, command.HandlerConfig{}); err != nil {
		t.Fatalf("register cron: %v", err)
	}
	if scheduled == nil {
		t.Fatalf("expected cron job registered")
	}
	if err := scheduled(); err != nil {
		t.Fatalf("run cron job: %v", err)
	}
	if cache.all != 1 {
		t.Fatalf("expected cron job to refresh all entries")
	}
	if err := RegisterRefreshCron(nil, handler, command.HandlerConfig{}); err != nil {
		t.Fatalf("nil registrar must be ignored: %v", err)
	}
}
