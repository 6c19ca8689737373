package main

import (
	"context"
	"errors"
	"fmt"

	lifecycle "github.com/goliatone/go-lifecycle"
	"github.com/goliatone/go-lifecycle/cmd/lifecyclectl/internal/bootstrap"
	legacycmd "github.com/goliatone/go-lifecycle/internal/commands/legacy"
	statusescmd "github.com/goliatone/go-lifecycle/internal/commands/statuses"
	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/logging"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errOrganizationRequired = errors.New("--org is required")

type app struct {
	v          *viper.Viper
	configFile string
	envFiles   []string
	build      func(lifecycle.Config, ...lifecycle.Option) (*bootstrap.Module, error)
}

func newRootCommand() *cobra.Command {
	a := &app{
		v:     bootstrap.NewViper(),
		build: bootstrap.BuildModule,
	}

	root := &cobra.Command{
		Use:           "lifecyclectl",
		Short:         "Manage status vocabularies and migrate legacy statuses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootstrap.LoadEnvFiles(a.envFiles...); err != nil {
				return fmt.Errorf("load env: %w", err)
			}
			return bootstrap.ReadConfigFile(a.v, a.configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Optional config file (yaml, json or toml)")
	flags.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "Env files loaded before reading LIFECYCLE_* variables")
	flags.String("driver", lifecycle.DriverSQLite, "Database driver (postgres or sqlite)")
	flags.String("dsn", "", "Database DSN")
	flags.String("log-level", "warn", "Log level")
	flags.String("log-format", "console", "Log format (json, console or pretty)")
	_ = a.v.BindPFlag(bootstrap.KeyStorageDriver, flags.Lookup("driver"))
	_ = a.v.BindPFlag(bootstrap.KeyStorageDSN, flags.Lookup("dsn"))
	_ = a.v.BindPFlag(bootstrap.KeyLoggingLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(bootstrap.KeyLoggingFormat, flags.Lookup("log-format"))

	root.AddCommand(
		newMigrateCommand(a),
		newSeedDefaultsCommand(a),
		newMigrateLegacyCommand(a),
		newListStatusesCommand(a),
	)
	return root
}

func (a *app) open() (*bootstrap.Module, lifecycle.Config, error) {
	cfg, err := bootstrap.ConfigFromViper(a.v)
	if err != nil {
		return nil, lifecycle.Config{}, err
	}
	module, err := a.build(cfg)
	if err != nil {
		return nil, lifecycle.Config{}, err
	}
	return module, cfg, nil
}

func newMigrateCommand(a *app) *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, _, err := a.open()
			if err != nil {
				return err
			}
			defer module.Close()

			logger := logging.ModuleLogger(module.Module.Container().LoggerProvider(), "lifecycle.migrations")
			if down {
				names, err := lifecycle.Rollback(cmd.Context(), module.DB, logger)
				if err != nil {
					return fmt.Errorf("rollback: %w", err)
				}
				return bootstrap.RenderList(cmd.OutOrStdout(), "Rolled back migrations", names)
			}
			names, err := lifecycle.Migrate(cmd.Context(), module.DB, logger)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return bootstrap.RenderList(cmd.OutOrStdout(), "Applied migrations", names)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll back the last migration group")
	return cmd
}

func newSeedDefaultsCommand(a *app) *cobra.Command {
	var orgFlag, actorFlag string
	cmd := &cobra.Command{
		Use:   "seed-defaults",
		Short: "Install the default vocabularies for an organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, err := bootstrap.ParseUUID(orgFlag)
			if err != nil {
				return fmt.Errorf("parse org: %w", err)
			}
			if org == nil {
				return errOrganizationRequired
			}
			actor, err := bootstrap.ParseUUID(actorFlag)
			if err != nil {
				return fmt.Errorf("parse actor: %w", err)
			}

			module, _, err := a.open()
			if err != nil {
				return err
			}
			defer module.Close()

			handlers, err := module.Module.RegisterCommands(nil, nil)
			if err != nil {
				return err
			}
			if err := handlers.Statuses.Seed.Execute(cmd.Context(), statusescmd.SeedDefaultsCommand{
				OrganizationID: *org,
				ActorID:        actor,
			}); err != nil {
				return err
			}
			return renderDomains(cmd, module.Module, *org, domain.AllDomains(), false)
		},
	}
	cmd.Flags().StringVar(&orgFlag, "org", "", "Organization id")
	cmd.Flags().StringVar(&actorFlag, "actor", "", "Actor id recorded as updated_by")
	return cmd
}

func newMigrateLegacyCommand(a *app) *cobra.Command {
	var (
		orgFlag, actorFlag string
		entityTypes        []string
	)
	cmd := &cobra.Command{
		Use:   "migrate-legacy",
		Short: "Rewrite legacy status values into the unified vocabulary",
		Long: `Rewrite not_started, in_progress, on_hold, completed and stopped
into the unified vocabulary. Without --org every organization is migrated.
Running it again is safe and changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, err := bootstrap.ParseUUID(orgFlag)
			if err != nil {
				return fmt.Errorf("parse org: %w", err)
			}
			actor, err := bootstrap.ParseUUID(actorFlag)
			if err != nil {
				return fmt.Errorf("parse actor: %w", err)
			}

			module, cfg, err := a.open()
			if err != nil {
				return err
			}
			defer module.Close()

			ctx := cmd.Context()
			if cfg.Statuses.SeedOnProvision && org != nil {
				if _, err := module.Module.SeedDefaults(ctx, *org, actor); err != nil {
					return fmt.Errorf("seed defaults: %w", err)
				}
			}

			if len(entityTypes) == 0 {
				entityTypes = cfg.Legacy.EntityTypes
			}
			var report *lifecycle.MigrationReport
			handlers, err := module.Module.RegisterCommands(nil, func(_ context.Context, r *lifecycle.MigrationReport) {
				report = r
			})
			if err != nil {
				return err
			}
			runErr := handlers.Legacy.Execute(ctx, legacycmd.RunLegacyMigrationCommand{
				OrganizationID: org,
				EntityTypes:    entityTypes,
				ActorID:        actor,
			})
			if report != nil {
				if err := bootstrap.RenderReport(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&orgFlag, "org", "", "Organization id (all organizations when empty)")
	cmd.Flags().StringVar(&actorFlag, "actor", "", "Actor id recorded on per-row updates")
	cmd.Flags().StringSliceVar(&entityTypes, "entity-type", nil, "Entity types to migrate (activity, task)")
	return cmd
}

func newListStatusesCommand(a *app) *cobra.Command {
	var (
		orgFlag, domainFlag string
		all                 bool
	)
	cmd := &cobra.Command{
		Use:   "list-statuses",
		Short: "Print the status vocabulary of an organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, err := bootstrap.ParseUUID(orgFlag)
			if err != nil {
				return fmt.Errorf("parse org: %w", err)
			}
			if org == nil {
				return errOrganizationRequired
			}
			domains := domain.AllDomains()
			if domainFlag != "" {
				d, err := domain.ParseStatusDomain(domainFlag)
				if err != nil {
					return err
				}
				domains = []domain.StatusDomain{d}
			}

			module, _, err := a.open()
			if err != nil {
				return err
			}
			defer module.Close()
			return renderDomains(cmd, module.Module, *org, domains, all)
		},
	}
	cmd.Flags().StringVar(&orgFlag, "org", "", "Organization id")
	cmd.Flags().StringVar(&domainFlag, "domain", "", "Status domain (activity, task or approval)")
	cmd.Flags().BoolVar(&all, "all", false, "Include deactivated statuses")
	return cmd
}

func renderDomains(cmd *cobra.Command, module *lifecycle.Module, org uuid.UUID, domains []domain.StatusDomain, all bool) error {
	ctx := cmd.Context()
	for _, d := range domains {
		list := module.Statuses().ListActive
		if all {
			list = module.Statuses().ListAll
		}
		defs, err := list(ctx, org, d)
		if err != nil {
			return fmt.Errorf("list %s statuses: %w", d, err)
		}
		if err := bootstrap.RenderStatuses(cmd.OutOrStdout(), d, defs); err != nil {
			return err
		}
	}
	return nil
}
