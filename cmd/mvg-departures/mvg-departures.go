package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/mvg-departures/pkg/mvg"
	"github.com/travigo/mvg-departures/pkg/service"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// Departure times are shown in Munich local time
	loc, _ := time.LoadLocation("Europe/Berlin")
	time.Local = loc

	if os.Getenv("MVG_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("MVG_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "mvg-departures",
		Description: "Departure sensors for MVG stations in Munich",

		Commands: []*cli.Command{
			service.RegisterCLI(),
			mvg.RegisterLookupCLI(),
			mvg.RegisterDeparturesCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
