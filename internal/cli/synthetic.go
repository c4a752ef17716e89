package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"spccli/internal/config"
	"spccli/internal/exporter"
	"spccli/internal/extract"
	"spccli/pkg/contracts/domain"
)

// SyntheticFileName is the default output of the synthetic command
const SyntheticFileName = "synthetic_infection_events.csv"

func cmdSynthetic(rt *runtime) *cli.Command {
	var from, to, out string

	return &cli.Command{
		Name:  "synthetic",
		Usage: "Write the synthetic event dataset as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "from",
				Usage:       "First day (YYYY-MM-DD)",
				Destination: &from,
			},
			&cli.StringFlag{
				Name:        "to",
				Usage:       "Last day (YYYY-MM-DD)",
				Destination: &to,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "Output CSV path, defaults to the raw data directory",
				Destination: &out,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			synth := config.SyntheticConfig{From: from, To: to}
			if synth.From == "" {
				synth.From = rt.cfg.Source.Synthetic.From
			}
			if synth.To == "" {
				synth.To = rt.cfg.Source.Synthetic.To
			}

			ext, err := extract.NewSyntheticExtractor(synth)
			if err != nil {
				return goerr.Wrap(err, "invalid synthetic range", goerr.V("from", synth.From), goerr.V("to", synth.To))
			}

			if out == "" {
				out = filepath.Join(rt.paths.RawDir, SyntheticFileName)
			}

			table := ext.Table()
			if err := exporter.NewSPCExporter(ctxlog.From(ctx)).WriteRawEvents(out, table); err != nil {
				return goerr.Wrap(err, "failed to write synthetic events", goerr.V("path", out))
			}

			fmt.Fprintf(c.Root().Writer, "Wrote %d events from %s to %s into %s\n",
				len(table.Rows), domain.FormatDay(ext.From), domain.FormatDay(ext.To), out)
			return nil
		},
	}
}
