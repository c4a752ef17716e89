// Package cli implements the spc command line: batch runs, validation,
// the HTTP service and synthetic data generation.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"spccli/internal/config"
	"spccli/internal/infrastructure"
	"spccli/pkg/contracts"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	if err := newCommand(os.Stdout).Run(ctx, args); err != nil {
		return goerr.Wrap(err, "CLI execution failed")
	}
	return nil
}

// runtime is the state shared by the subcommands once the root Before hook
// has loaded the configuration.
type runtime struct {
	configFile string
	baseDir    string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
}

func newCommand(w io.Writer) *cli.Command {
	rt := &runtime{}

	return &cli.Command{
		Name:    "spc",
		Usage:   "Statistical process control for daily infection events",
		Version: contracts.Version,
		Writer:  w,
		Flags:   rt.Flags(),
		Before:  rt.before,
		After:   rt.after,
		Commands: []*cli.Command{
			cmdRun(rt),
			cmdValidate(rt),
			cmdServe(rt),
			cmdSynthetic(rt),
		},
	}
}

// Flags returns the global flags. Empty values leave the loaded
// configuration untouched.
func (rt *runtime) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a YAML configuration file",
			Sources:     cli.EnvVars("SPC_CONFIG"),
			Destination: &rt.configFile,
		},
		&cli.StringFlag{
			Name:        "base-dir",
			Usage:       "Directory the data and output paths are resolved against",
			Destination: &rt.baseDir,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Category:    "Logging",
			Destination: &rt.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json, auto)",
			Category:    "Logging",
			Destination: &rt.logFormat,
		},
	}
}

func (rt *runtime) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	cfg, err := config.Load(rt.configFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration", goerr.V("file", rt.configFile))
	}
	if rt.baseDir != "" {
		cfg.Paths.BaseDir = rt.baseDir
	}
	if rt.logLevel != "" {
		cfg.Logging.Level = rt.logLevel
	}
	if rt.logFormat != "" {
		cfg.Logging.Format = rt.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid command line options")
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve paths", goerr.V("base_dir", cfg.Paths.BaseDir))
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, goerr.Wrap(err, "failed to create directories", goerr.V("base_dir", paths.BaseDir))
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, paths.LogPath(time.Now()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize logger")
	}

	rt.cfg, rt.paths, rt.logger = cfg, paths, logger
	logger.Debug("Configuration loaded",
		slog.String("source", cfg.Source.Kind),
		slog.String("base_dir", paths.BaseDir),
		slog.String("reports_dir", paths.ReportsDir))

	return ctxlog.With(ctx, logger), nil
}

func (rt *runtime) after(ctx context.Context, c *cli.Command) error {
	return infrastructure.CloseLogFile()
}
