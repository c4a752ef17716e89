package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"spccli/internal/app"
	"spccli/internal/operations"
	"spccli/internal/services"
	api "spccli/pkg/contracts/api/v1"
)

func cmdRun(rt *runtime) *cli.Command {
	var currentFY int

	return &cli.Command{
		Name:  "run",
		Usage: "Run the full pipeline once and write the reports",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "current-fy",
				Usage:       "Fiscal year to analyse instead of the latest in the data",
				Destination: &currentFY,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return rt.runPipeline(ctx, c.Root().Writer, operations.ModeFull, currentFY)
		},
	}
}

func cmdValidate(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Extract, standardise and validate the events without running SPC",
		Action: func(ctx context.Context, c *cli.Command) error {
			return rt.runPipeline(ctx, c.Root().Writer, operations.ModeValidate, 0)
		},
	}
}

// runPipeline executes one run through the same service the HTTP API uses,
// prints its outcome and writes the metrics textfile.
func (rt *runtime) runPipeline(ctx context.Context, w io.Writer, mode string, currentFY int) error {
	logger := ctxlog.From(ctx)

	providers, stop, err := rt.startTelemetry()
	if err != nil {
		return err
	}
	defer stop()

	pipeline, err := app.NewPipeline(rt.cfg, rt.paths, providers, logger)
	if err != nil {
		return goerr.Wrap(err, "failed to assemble pipeline", goerr.V("source", rt.cfg.Source.Kind))
	}
	defer pipeline.Close()

	svc := services.NewPipelineService(
		pipeline.Manager,
		app.SPCOptions(rt.cfg.SPC),
		services.NewDataService(rt.paths, logger),
		logger,
	)

	req := api.RunRequest{Mode: mode}
	if currentFY > 0 {
		req.CurrentFY = &currentFY
	}
	resp, runErr := svc.Run(ctx, req)

	if err := providers.WriteMetricsFile(rt.paths.MetricsPath()); err != nil {
		logger.Warn("Failed to write metrics file", slog.String("error", err.Error()))
	}

	if resp == nil {
		return goerr.Wrap(runErr, "pipeline run failed", goerr.V("mode", mode))
	}
	printRun(w, resp)

	if runErr != nil {
		return goerr.Wrap(runErr, "pipeline run failed",
			goerr.V("mode", mode),
			goerr.V("run_id", resp.RunID))
	}
	return nil
}

func printRun(w io.Writer, resp *api.RunResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run %s %s in %dms\n", resp.RunID, resp.Status, resp.DurationMS)
	for _, s := range resp.Steps {
		line := fmt.Sprintf("  %s\t%s\t%dms", s.ID, s.Status, s.DurationMS)
		if s.Error != "" {
			line += "\t" + s.Error
		}
		fmt.Fprintln(tw, line)
	}

	if r := resp.Report; r != nil {
		fmt.Fprintf(tw, "Source: %s\n", r.Source)
		if r.FallbackReason != "" {
			fmt.Fprintf(tw, "Fallback: %s\n", r.FallbackReason)
		}
		fmt.Fprintf(tw, "Baseline FY: FY%d | Current FY: FY%d\n", r.BaselineFY, r.CurrentFY)
		fmt.Fprintf(tw, "Mean %.2f  UWL %.2f  UCL %.2f  (%d baseline days)\n",
			r.Limits.Mean, r.Limits.UpperWarning, r.Limits.UpperControl, r.Limits.BaselineDays)
		for _, row := range r.Summary {
			fmt.Fprintf(tw, "  %s\t%d\n", row.Status, row.Days)
		}
		if r.InvalidDates > 0 {
			fmt.Fprintf(tw, "Invalid dates: %d\n", r.InvalidDates)
		}
	}

	if len(resp.Outputs) > 0 {
		fmt.Fprintln(tw, "Outputs:")
		for _, path := range resp.Outputs {
			fmt.Fprintf(tw, "  %s\n", path)
		}
	}
	tw.Flush()
}
