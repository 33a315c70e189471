package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	statscli "github.com/travigo/positionstats/pkg/stats/cli"
	"github.com/urfave/cli/v2"
)

func main() {
	if os.Getenv("STATS_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("STATS_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	stats := statscli.RegisterCLI()

	app := &cli.App{
		Name:        "stats",
		Description: "Batch aggregation of GTFS-realtime vehicle positions",

		Commands: stats.Subcommands,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
