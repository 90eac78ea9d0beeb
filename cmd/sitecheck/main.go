package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/themizzi/sitecheck/internal/check"
	internalcli "github.com/themizzi/sitecheck/internal/cli"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/handlers"
	"github.com/themizzi/sitecheck/internal/repository"
	"github.com/themizzi/sitecheck/internal/scenario"
	"github.com/themizzi/sitecheck/internal/services"
	"github.com/themizzi/sitecheck/internal/session"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var version = "0.1.0"

// app carries state resolved once in Before and shared by every command
type app struct {
	logger *zap.Logger
	getenv func(string) string
	file   *config.FileConfig
}

func (a *app) before(c *cli.Context) error {
	logger, err := newLogger(c.Bool("debug"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	zap.ReplaceGlobals(logger)

	if path := c.String("config"); path != "" {
		fc, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		a.file = fc
		logger.Debug("loaded suite file", zap.String("path", path))
	}

	overrides := map[string]string{}
	if v := c.String("store-driver"); v != "" {
		overrides["SITECHECK_STORE_DRIVER"] = v
	}
	if v := c.String("store-dsn"); v != "" {
		overrides["SITECHECK_STORE_DSN"] = v
	}
	base := config.Layered(os.Getenv, a.file)
	a.getenv = func(key string) string {
		if v, ok := overrides[key]; ok {
			return v
		}
		return base(key)
	}
	return nil
}

func (a *app) after(*cli.Context) error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zap.NewDevelopmentEncoderConfig().EncodeTime
	return cfg.Build()
}

func (a *app) openStore() (*internalcli.Store, services.RunService, error) {
	storeCfg, err := config.LoadStoreConfig(a.getenv)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid store configuration: %w", err)
	}
	store, err := internalcli.OpenStore(storeCfg, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return store, services.NewRunService(store.Runs, a.logger), nil
}

// InstallCommand returns the install command
func (a *app) InstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Download the browser binaries used by smoke",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "browser",
				Usage: "engine to install (chromium, firefox, webkit)",
				Value: cli.NewStringSlice(config.EngineChromium),
			},
		},
		Action: func(c *cli.Context) error {
			engines := c.StringSlice("browser")
			a.logger.Info("installing browsers", zap.Strings("engines", engines))
			return session.Install(engines...)
		},
	}
}

// ProbeCommand returns the probe command
func (a *app) ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Run the HTTP API checks against the httpbin target",
		Action: func(c *cli.Context) error {
			sessionCfg, err := config.LoadSessionConfig(a.getenv)
			if err != nil {
				return err
			}

			store, runs, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var checks []check.Spec
			if a.file != nil {
				checks = check.FromConfig(a.file.Checks)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := internalcli.RunProbe(ctx, internalcli.ProbeOptions{
				Targets: config.LoadTargetsConfig(a.getenv),
				Checks:  checks,
				Timeout: time.Duration(sessionCfg.DefaultTimeoutMs) * time.Millisecond,
				Runs:    runs,
				Logger:  a.logger,
				Out:     c.App.Writer,
			})
			if err != nil {
				return err
			}
			if !summary.OK() {
				return cli.Exit(fmt.Sprintf("%d check(s) failed", summary.Failed), 1)
			}
			return nil
		},
	}
}

// SmokeCommand returns the smoke command
func (a *app) SmokeCommand() *cli.Command {
	return &cli.Command{
		Name:  "smoke",
		Usage: "Run the browser scenarios, one isolated page each",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "scenario", Aliases: []string{"s"}, Usage: "scenario to run (repeatable); default all"},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "only run scenarios carrying this tag (repeatable)"},
			&cli.BoolFlag{Name: "list", Usage: "print the scenario names and exit"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("list") {
				for _, name := range scenario.Names() {
					fmt.Fprintln(c.App.Writer, name)
				}
				return nil
			}

			names := c.StringSlice("scenario")
			if len(names) == 0 && a.file != nil {
				names = a.file.Scenarios
			}
			selected, err := scenario.Select(names, c.StringSlice("tag"))
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				return cli.Exit("no scenarios selected", 2)
			}

			sessionCfg, err := config.LoadSessionConfig(a.getenv)
			if err != nil {
				return err
			}
			browserCfg, err := config.LoadBrowserConfig(a.getenv)
			if err != nil {
				return err
			}

			store, runs, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			backend, err := session.Launch(browserCfg, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := backend.Close(); err != nil {
					a.logger.Warn("failed to close browser", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := internalcli.RunSmoke(ctx, internalcli.SmokeOptions{
				Provider:  session.NewProvider(backend, sessionCfg, a.logger),
				Scenarios: selected,
				Targets:   config.LoadTargetsConfig(a.getenv),
				Runs:      runs,
				Logger:    a.logger,
				Out:       c.App.Writer,
			})
			if err != nil {
				return err
			}
			if !summary.OK() {
				return cli.Exit(fmt.Sprintf("%d scenario(s) failed", summary.Failed), 1)
			}
			return nil
		},
	}
}

// RunsCommand returns the runs command
func (a *app) RunsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recorded runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
		},
		Action: func(c *cli.Context) error {
			store, runs, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := runs.ListRuns(c.Int("limit"))
			if err != nil {
				return err
			}
			internalcli.PrintRuns(c.App.Writer, list)
			return nil
		},
	}
}

// ServeCommand returns the serve command
func (a *app) ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the run report server",
		Action: func(c *cli.Context) error {
			store, runs, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			a.logger.Info("connected to run store")

			reportHandler, err := handlers.NewReportHandler(runs, repository.DefaultListLimit, a.logger)
			if err != nil {
				return fmt.Errorf("failed to create report handler: %w", err)
			}
			runsHandler := handlers.NewRunsHandler(runs, a.logger)

			return internalcli.RunServe(internalcli.ServerDependencies{
				ServerConfig:  config.LoadServerConfig(a.getenv),
				ReportHandler: reportHandler,
				ListRuns:      runsHandler.List,
				GetRun:        runsHandler.Get,
				HealthHandler: handlers.NewHealthHandler(store.DB, a.logger),
				Logger:        a.logger,
			})
		},
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	a := &app{}
	cliApp := &cli.App{
		Name:    "sitecheck",
		Usage:   "Browser and HTTP API smoke checks with recorded runs",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML suite file", EnvVars: []string{"SITECHECK_CONFIG"}},
			&cli.StringFlag{Name: "store-driver", Usage: "run store driver (sqlite, postgres)"},
			&cli.StringFlag{Name: "store-dsn", Usage: "run store DSN or sqlite path"},
			&cli.BoolFlag{Name: "debug", Usage: "development logging"},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			a.InstallCommand(),
			a.ProbeCommand(),
			a.SmokeCommand(),
			a.RunsCommand(),
			a.ServeCommand(),
		},
	}

	if err := cliApp.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
