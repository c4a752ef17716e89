package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"spccli/internal/app"
)

func cmdServe(rt *runtime) *cli.Command {
	var (
		addr       string
		runOnStart bool
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "Listen address, overrides server.addr",
				Destination: &addr,
			},
			&cli.BoolFlag{
				Name:        "run-on-start",
				Usage:       "Run the pipeline once when the server starts",
				Destination: &runOnStart,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stopSignals()

			cfg := *rt.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if runOnStart {
				cfg.Server.RunOnStart = true
			}

			providers, stop, err := rt.startTelemetry()
			if err != nil {
				return err
			}
			defer stop()

			application, err := app.NewApplication(&cfg, rt.paths, providers, logger)
			if err != nil {
				return goerr.Wrap(err, "failed to create application")
			}

			logger.Info("Starting spc server",
				slog.String("addr", cfg.Server.Addr),
				slog.Bool("run_on_start", cfg.Server.RunOnStart))

			if err := application.Run(ctx); err != nil {
				return goerr.Wrap(err, "server stopped with error", goerr.V("addr", cfg.Server.Addr))
			}
			return nil
		},
	}
}
