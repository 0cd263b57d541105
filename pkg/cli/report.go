package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/cli/config"
	"github.com/plan-lab/lignite/pkg/service/export"
	"github.com/plan-lab/lignite/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdReport() *cli.Command {
	var (
		storeCfg      config.Store
		milestonesCfg config.Milestones
		format        string
		output        string
	)

	flags := joinFlags(
		storeCfg.Flags(),
		milestonesCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "Output format (json, tsv, xlsx, chart)",
				Value:       "json",
				Sources:     cli.EnvVars("LIGNITE_FORMAT"),
				Destination: &format,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output file path (defaults to stdout)",
				Sources:     cli.EnvVars("LIGNITE_OUTPUT"),
				Destination: &output,
			},
		},
	)

	return &cli.Command{
		Name:  "report",
		Usage: "Compute burndown reports from the stored snapshot",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := storeCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			cfg, err := milestonesCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.NewReport(repo, cfg)

			w := io.Writer(os.Stdout)
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return goerr.Wrap(err, "failed to create output file",
						goerr.V("path", output))
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "json":
				reports, err := uc.Generate(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "    ")
				if err := enc.Encode(reports); err != nil {
					return goerr.Wrap(err, "failed to encode reports")
				}
				return nil

			case "tsv":
				snap, err := uc.Snapshot(ctx)
				if err != nil {
					return err
				}
				return export.WriteTSV(w, snap)

			case "xlsx":
				snap, err := uc.Snapshot(ctx)
				if err != nil {
					return err
				}
				reports, err := uc.Generate(ctx)
				if err != nil {
					return err
				}
				return export.WriteXLSX(w, snap, reports)

			case "chart":
				reports, err := uc.Generate(ctx)
				if err != nil {
					return err
				}
				return export.WriteChartPage(w, reports)

			default:
				return goerr.New("invalid output format", goerr.V("format", format))
			}
		},
	}
}
