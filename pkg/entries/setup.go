package entries

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/mvg-departures/pkg/ctdf"
	"github.com/travigo/mvg-departures/pkg/departureboard"
	"github.com/travigo/mvg-departures/pkg/publisher"
	"github.com/travigo/mvg-departures/pkg/resolver"
)

var ErrNoProducts = errors.New("none of the configured products are served by the station")

// Entry is a set up sensor: the resolved stations plus the board that refreshes them
type Entry struct {
	ID          string
	Station     ctdf.Station
	Destination *ctdf.Station

	Board *departureboard.Board
}

// Snapshot describes the entry from a single view of its board, nil meaning the board's current view
func (e *Entry) Snapshot(view *ctdf.DepartureView) *publisher.Snapshot {
	snapshot := publisher.NewSnapshot(e.ID, e.Board, view)
	snapshot.DestinationStation = e.Destination

	return snapshot
}

// Setup resolves the configured station names and builds the departure board for them.
// Setup stops at the first station that cant be resolved, no board is created in that case.
func Setup(ctx context.Context, stationResolver *resolver.Resolver, fetcher departureboard.DepartureFetcher, config SensorConfig) (*Entry, error) {
	entry := &Entry{ID: config.ID}

	if config.Destination != "" {
		route, err := stationResolver.ResolveRoute(ctx, config.Station, config.Destination)
		if err != nil {
			return nil, fmt.Errorf("sensor %s: %w", config.ID, err)
		}

		entry.Station = route.Origin
		entry.Destination = &route.Destination
	} else {
		station, err := stationResolver.Resolve(ctx, config.Station)
		if err != nil {
			return nil, fmt.Errorf("sensor %s: %w", config.ID, err)
		}

		entry.Station = station
	}

	products, err := supportedProducts(entry.Station, config.products())
	if err != nil {
		return nil, fmt.Errorf("sensor %s: %w", config.ID, err)
	}

	boardConfig := ctdf.BoardConfig{
		Station:          entry.Station,
		LeadTimeMinutes:  config.LeadTime,
		IncludedProducts: products,
		DisplayLimit:     config.DeparturesToShow,
	}
	entry.Board = departureboard.NewBoard(config.Name, boardConfig, fetcher)

	log.Info().
		Str("id", entry.ID).
		Str("station", entry.Station.Identifier).
		Str("name", entry.Board.Name()).
		Int("leadtime", boardConfig.LeadTimeMinutes).
		Msg("Set up departure sensor")

	return entry, nil
}

// supportedProducts narrows the configured products to the ones the station actually serves.
// An empty configuration means every product of the station.
func supportedProducts(station ctdf.Station, configured []ctdf.Product) ([]ctdf.Product, error) {
	if len(configured) == 0 {
		return station.SupportedProducts, nil
	}

	var products []ctdf.Product
	for _, product := range configured {
		if !station.SupportsProduct(product) {
			log.Warn().
				Str("station", station.Identifier).
				Str("product", string(product)).
				Msg("Ignoring product not served by station")
			continue
		}
		products = append(products, product)
	}

	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	return products, nil
}
