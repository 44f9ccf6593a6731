package service

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/mvg-departures/pkg/entries"
	"github.com/travigo/mvg-departures/pkg/mvg"
	"github.com/travigo/mvg-departures/pkg/publisher"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run the departure sensors and their web API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Usage:    "sensors file to load",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "listen",
				Value: ":8080",
				Usage: "listen target for the web server",
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "publish sensor snapshots to redis after every refresh",
			},
		},
		Action: func(c *cli.Context) error {
			sensorsFile, err := entries.LoadSensorsFile(c.String("config"))
			if err != nil {
				return err
			}

			var snapshotPublisher *publisher.Publisher
			if c.Bool("publish") {
				if snapshotPublisher, err = connectPublisher(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			service, err := New(ctx, mvg.NewClientFromEnvironment(), sensorsFile, snapshotPublisher)
			if err != nil {
				return err
			}

			log.Info().Int("sensors", len(sensorsFile.Sensors)).Msg("Departure sensors set up")

			return service.Run(ctx, c.String("listen"))
		},
	}
}
