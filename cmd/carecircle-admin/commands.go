package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/target/carecircle/config"
	"github.com/target/carecircle/internal/bootstrap"
	"github.com/target/carecircle/internal/data"
	"github.com/target/carecircle/internal/devseed"
	"github.com/target/carecircle/internal/domain/carecircle"
	corefuncs "github.com/target/carecircle/internal/http/templates/core"
)

const defaultCommandTimeout = 5 * time.Minute

// adminApp is shared by every subcommand.
type adminApp struct {
	logger  *slog.Logger
	out     io.Writer
	cfg     config.AppConfig
	connect connectFn
	// loadConfig defaults to bootstrap.LoadConfig.
	loadConfig func() (config.AppConfig, error)
}

func newRootCmd(app *adminApp) *cobra.Command {
	root := &cobra.Command{
		Use:           "carecircle-admin",
		Short:         "Maintenance commands for CareCircle",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			load := app.loadConfig
			if load == nil {
				load = bootstrap.LoadConfig
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			app.cfg = cfg
			bootstrap.SetLogLevel(cfg.Observability.Logging.SlogLevel())
			return nil
		},
	}
	root.SetOut(app.out)

	var timeout time.Duration
	root.PersistentFlags().DurationVar(&timeout, "timeout", defaultCommandTimeout, "overall command timeout")

	withTimeout := func(cmd *cobra.Command) (context.Context, context.CancelFunc) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		ctx, cancel := context.WithTimeout(ctx, timeout)
		return ctx, func() { cancel(); stop() }
	}

	root.AddCommand(
		newMigrateCmd(app, withTimeout),
		newSeedProvidersCmd(app, withTimeout),
		newAddProviderCmd(app, withTimeout),
		newProvidersCmd(app, withTimeout),
		newLayoutCmd(app, withTimeout),
	)
	return root
}

type timeoutFn func(cmd *cobra.Command) (context.Context, context.CancelFunc)

func newMigrateCmd(app *adminApp, withTimeout timeoutFn) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			in, err := app.connect(ctx, app.logger, &app.cfg, connectOptions{WantDB: true})
			if err != nil {
				return err
			}
			defer in.Close(app.logger)

			app.logger.InfoContext(ctx, "running database migrations")
			return bootstrap.RunMigrations(ctx, in.DB, app.logger)
		},
	}
}

func newSeedProvidersCmd(app *adminApp, withTimeout timeoutFn) *cobra.Command {
	var allowRemote bool
	cmd := &cobra.Command{
		Use:   "seed-providers",
		Short: "Migrate and insert the default care providers, then drop the provider cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := devseed.GuardRemoteHost(app.cfg.Postgres.Host, allowRemote); err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd)
			defer cancel()

			in, err := app.connect(ctx, app.logger, &app.cfg, connectOptions{WantDB: true, WantRedis: true})
			if err != nil {
				return err
			}
			defer in.Close(app.logger)

			if err := bootstrap.RunMigrations(ctx, in.DB, app.logger); err != nil {
				return err
			}
			n, err := devseed.Run(ctx, devseed.NewServices(in.DB, in.Redis), app.logger)
			if err != nil {
				return err
			}
			return writef(cmd.OutOrStdout(), "Seeded %d provider(s)\n", n)
		},
	}
	cmd.Flags().BoolVar(&allowRemote, "allow-remote", false, "allow seeding a database host that does not look local")
	return cmd
}

func newAddProviderCmd(app *adminApp, withTimeout timeoutFn) *cobra.Command {
	var p carecircle.CareProvider
	cmd := &cobra.Command{
		Use:   "add-provider",
		Short: "Append a provider to the end of the care circle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			in, err := app.connect(ctx, app.logger, &app.cfg, connectOptions{WantDB: true, WantRedis: true})
			if err != nil {
				return err
			}
			defer in.Close(app.logger)

			created, err := data.NewProviderRepo(in.DB).Create(ctx, p)
			if err != nil {
				return err
			}
			if err := writef(cmd.OutOrStdout(), "Added %s (%s)\n", created.Name, created.Type); err != nil {
				return err
			}
			return dropProviderCache(ctx, app.logger, in)
		},
	}
	cmd.Flags().StringVar(&p.Type, "type", "", "provider type, e.g. Dentist")
	cmd.Flags().StringVar(&p.Name, "name", "", "provider name")
	cmd.Flags().StringVar(&p.IconRef, "icon", "", "icon URL or static path")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProvidersCmd(app *adminApp, withTimeout timeoutFn) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the providers the dashboard shows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			providers, err := app.listProviders(ctx)
			if err != nil {
				return err
			}
			return renderProviderTable(cmd.OutOrStdout(), providers)
		},
	}
}

func newLayoutCmd(app *adminApp, withTimeout timeoutFn) *cobra.Command {
	var width, height, radius float64
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print where each provider lands on the care circle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			cc := app.cfg.CareCircle
			if cmd.Flags().Changed("width") {
				cc.CanvasWidth = width
			}
			if cmd.Flags().Changed("height") {
				cc.CanvasHeight = height
			}
			if cmd.Flags().Changed("radius") {
				cc.Radius = radius
			}
			cc.Sanitize()

			providers, err := app.listProviders(ctx)
			if err != nil {
				return err
			}
			if err := carecircle.ValidateSequence(providers); err != nil {
				return err
			}
			g := bootstrap.BuildGeometry(cc)
			return renderLayoutTable(cmd.OutOrStdout(), g, carecircle.RadialLayout(providers, g))
		},
	}
	cmd.Flags().Float64Var(&width, "width", config.DefaultCanvasSize, "canvas width")
	cmd.Flags().Float64Var(&height, "height", config.DefaultCanvasSize, "canvas height")
	cmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "circle radius")
	return cmd
}

// listProviders reads the configured directory, connecting only when it is Postgres.
func (app *adminApp) listProviders(ctx context.Context) ([]carecircle.CareProvider, error) {
	pc := bootstrap.ProviderConfig{CareCircle: app.cfg.CareCircle, Logger: app.logger}
	if app.cfg.UsesPostgres() {
		in, err := app.connect(ctx, app.logger, &app.cfg, connectOptions{WantDB: true})
		if err != nil {
			return nil, err
		}
		defer in.Close(app.logger)
		pc.DB = in.DB
	}
	dir, err := bootstrap.BuildProviderDirectory(pc)
	if err != nil {
		return nil, err
	}
	return dir.List(ctx)
}

func dropProviderCache(ctx context.Context, logger *slog.Logger, in *infra) error {
	if in.Redis == nil {
		return nil
	}
	if err := data.InvalidateProviderCache(ctx, data.NewRedisCacheRepo(in.Redis)); err != nil {
		return fmt.Errorf("invalidate provider cache: %w", err)
	}
	logger.InfoContext(ctx, "provider cache invalidated")
	return nil
}

func renderProviderTable(w io.Writer, providers []carecircle.CareProvider) error {
	if len(providers) == 0 {
		return writef(w, "No providers configured.\n")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "#\tTYPE\tNAME\tICON\n"); err != nil {
		return fmt.Errorf("write provider header row: %w", err)
	}
	for i, p := range providers {
		icon := p.IconRef
		if icon == "" {
			icon = "-"
		}
		if err := writef(tw, "%d\t%s\t%s\t%s\n", i, p.Type, p.Name, icon); err != nil {
			return fmt.Errorf("write provider row %q: %w", p.Name, err)
		}
	}
	return tw.Flush()
}

func renderLayoutTable(w io.Writer, g carecircle.Geometry, points []carecircle.LayoutPoint) error {
	if err := writef(w, "Canvas %sx%s, center (%s, %s), radius %s\n",
		corefuncs.Coord(g.Width), corefuncs.Coord(g.Height),
		corefuncs.Coord(g.CenterX), corefuncs.Coord(g.CenterY), corefuncs.Coord(g.Radius)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "#\tNAME\tX\tY\n"); err != nil {
		return fmt.Errorf("write layout header row: %w", err)
	}
	for i, p := range points {
		if err := writef(tw, "%d\t%s\t%s\t%s\n", i, p.Provider.Name, corefuncs.Coord(p.X), corefuncs.Coord(p.Y)); err != nil {
			return fmt.Errorf("write layout row %q: %w", p.Provider.Name, err)
		}
	}
	return tw.Flush()
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return errors.Join(errors.New("write output"), err)
	}
	return nil
}
