package mvg

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"
	"github.com/travigo/mvg-departures/pkg/ctdf"
	"github.com/travigo/mvg-departures/pkg/departureboard"
	"github.com/travigo/mvg-departures/pkg/resolver"
	"github.com/urfave/cli/v2"
)

func RegisterLookupCLI() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "resolve a station name the way a sensor would",
		ArgsUsage: "<station name>",
		Action: func(c *cli.Context) error {
			stationName := strings.Join(c.Args().Slice(), " ")

			station, err := resolver.New(NewClientFromEnvironment()).Resolve(c.Context, stationName)
			if err != nil {
				return err
			}

			pretty.Println(station)

			return nil
		},
	}
}

func RegisterDeparturesCLI() *cli.Command {
	return &cli.Command{
		Name:      "departures",
		Usage:     "refresh a departure board once and print it",
		ArgsUsage: "<station name>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "lead-time",
				Usage: "only show departures leaving in more than this many minutes",
			},
			&cli.StringFlag{
				Name:  "products",
				Usage: "comma separated products to include, e.g. UBAHN,BUS",
			},
			&cli.IntFlag{
				Name:  "limit",
				Value: ctdf.DefaultDisplayLimit,
				Usage: "number of upcoming departures to show",
			},
		},
		Action: func(c *cli.Context) error {
			client := NewClientFromEnvironment()

			station, err := resolver.New(client).Resolve(c.Context, strings.Join(c.Args().Slice(), " "))
			if err != nil {
				return err
			}

			var products []ctdf.Product
			if c.String("products") != "" {
				products = ctdf.ParseProducts(strings.Split(c.String("products"), ","))
			}

			board := departureboard.NewBoard("", ctdf.BoardConfig{
				Station:          station,
				LeadTimeMinutes:  c.Int("lead-time"),
				IncludedProducts: products,
				DisplayLimit:     c.Int("limit"),
			}, client)

			if _, err := board.Refresh(c.Context); err != nil {
				return err
			}

			fmt.Printf("%s: %s %s (%s)\n", board.Name(), board.State(), board.UnitOfMeasurement(), board.Icon())
			pretty.Println(board.Attributes())

			return nil
		},
	}
}
