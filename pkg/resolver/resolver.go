package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/mvg-departures/pkg/ctdf"
)

var (
	ErrStationNotFound  = errors.New("station not found")
	ErrEmptyStationName = errors.New("station name is empty")
)

type StationLookup interface {
	LookupStation(ctx context.Context, query string) ([]ctdf.Station, error)
}

// Resolver maps the free text station name a user typed to a station the departures API knows about
type Resolver struct {
	Lookup StationLookup
}

func New(lookup StationLookup) *Resolver {
	return &Resolver{Lookup: lookup}
}

// Resolve returns the first station the lookup offers for the name.
// The name goes to the API as typed. There is no ranking of candidates and nothing is cached.
func (r *Resolver) Resolve(ctx context.Context, stationName string) (ctdf.Station, error) {
	if strings.TrimSpace(stationName) == "" {
		return ctdf.Station{}, ErrEmptyStationName
	}

	candidates, err := r.Lookup.LookupStation(ctx, stationName)
	if err != nil {
		return ctdf.Station{}, fmt.Errorf("failed to look up station %q: %w", stationName, err)
	}

	if len(candidates) == 0 {
		return ctdf.Station{}, fmt.Errorf("%w: %q", ErrStationNotFound, stationName)
	}

	station := candidates[0]

	log.Debug().
		Str("query", stationName).
		Str("station", station.Identifier).
		Str("name", station.DisplayName).
		Int("candidates", len(candidates)).
		Msg("Resolved station")

	return station, nil
}

type Route struct {
	Origin      ctdf.Station `json:"origin"`
	Destination ctdf.Station `json:"destination"`
}

// ResolveRoute resolves both ends of a route independently. No journey between them is looked up.
func (r *Resolver) ResolveRoute(ctx context.Context, origin string, destination string) (Route, error) {
	originStation, err := r.Resolve(ctx, origin)
	if err != nil {
		return Route{}, fmt.Errorf("origin: %w", err)
	}

	destinationStation, err := r.Resolve(ctx, destination)
	if err != nil {
		return Route{}, fmt.Errorf("destination: %w", err)
	}

	return Route{
		Origin:      originStation,
		Destination: destinationStation,
	}, nil
}
