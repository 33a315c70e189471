package cli

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/positionstats/pkg/config"
	"github.com/travigo/positionstats/pkg/materializer"
	"github.com/travigo/positionstats/pkg/objectstore"
	"github.com/travigo/positionstats/pkg/stats"
	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "YAML configuration file",
	EnvVars: []string{"STATS_CONFIG"},
}

var inputFlag = &cli.StringFlag{
	Name:     "input",
	Usage:    "batch location: a path, file://, gs://bucket/key or s3://bucket/key",
	Required: true,
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("output") {
		cfg.OutputRoot = c.String("output")
	}
	if c.IsSet("archive") {
		cfg.Archive.Enabled = c.Bool("archive")
	}
	if c.IsSet("metrics-textfile") {
		cfg.Metrics.Textfile = c.String("metrics-textfile")
	}

	return cfg, cfg.Validate()
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Aggregates vehicle position batches into latest-state and route/trip metric views",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "compute the views for a batch and replace them in the output sinks",
				Flags: []cli.Flag{
					configFlag,
					inputFlag,
					&cli.StringFlag{
						Name:  "output",
						Usage: "output root location, overrides the configured one",
					},
					&cli.BoolFlag{
						Name:  "archive",
						Usage: "bundle the input documents into the output root after writing",
					},
					&cli.StringFlag{
						Name:  "metrics-textfile",
						Usage: "write run metrics in Prometheus text format to this path",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}

					log.Info().
						Str("input", c.String("input")).
						Str("output", cfg.OutputRoot).
						Bool("archive", cfg.Archive.Enabled).
						Msg("Starting stats run")

					engine := &stats.Engine{
						Config: cfg,
					}

					_, err = engine.Run(c.Context, c.String("input"))

					return err
				},
			},
			{
				Name:  "inspect",
				Usage: "compute the views for a batch and print them without writing anything",
				Flags: []cli.Flag{
					configFlag,
					inputFlag,
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					engine := &stats.Engine{
						Config: cfg,
					}

					snapshot, err := engine.Compute(c.Context, c.String("input"))
					if err != nil {
						return err
					}

					m := &materializer.Materializer{
						Store: objectstore.NewMemory(),
					}
					results, err := m.MaterializeAll(c.Context, snapshot.Tables())
					if err != nil {
						return err
					}

					for _, result := range results {
						fmt.Fprintf(c.App.Writer, "%s %s (%d rows, %d bytes)\n", result.View, result.Sink, result.Rows, result.Bytes)
					}
					pretty.Fprintf(c.App.Writer, "%# v\n", snapshot.Views)

					return nil
				},
			},
		},
	}
}
