package departureboard

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/mvg-departures/pkg/ctdf"
)

var ErrFetchFailed = errors.New("failed to fetch departures")

type DepartureFetcher interface {
	FetchDepartures(ctx context.Context, stationID string) ([]*ctdf.Departure, error)
}

// Board keeps the latest departure view for one configured station.
// Each Refresh computes a whole new view and swaps it in, readers only ever see complete views.
type Board struct {
	name    string
	config  ctdf.BoardConfig
	fetcher DepartureFetcher
	now     func() time.Time

	view atomic.Pointer[ctdf.DepartureView]
}

type Option func(*Board)

func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

func NewBoard(name string, config ctdf.BoardConfig, fetcher DepartureFetcher, opts ...Option) *Board {
	if name == "" {
		name = config.Station.DisplayName
	}

	b := &Board{
		name:    name,
		config:  config.WithDefaults(),
		fetcher: fetcher,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func (b *Board) Config() ctdf.BoardConfig {
	return b.config
}

// Refresh fetches the departures and replaces the stored view.
// When the fetch fails the error is returned and the previous view stays in place.
func (b *Board) Refresh(ctx context.Context) (*ctdf.DepartureView, error) {
	records, err := b.fetcher.FetchDepartures(ctx, b.config.Station.Identifier)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrFetchFailed, b.config.Station.Identifier, err)
	}

	view := ctdf.GenerateDepartureView(records, b.config, b.now())
	b.view.Store(view)

	log.Debug().
		Str("sensor", b.name).
		Str("station", b.config.Station.Identifier).
		Int("fetched", len(records)).
		Int("departures", len(view.Filtered)).
		Str("state", view.State()).
		Msg("Refreshed departure board")

	return view, nil
}

// CurrentView returns the last successfully computed view, or an empty one before the first refresh
func (b *Board) CurrentView() *ctdf.DepartureView {
	if view := b.view.Load(); view != nil {
		return view
	}

	return &ctdf.DepartureView{}
}

func (b *Board) Populated() bool {
	return b.view.Load() != nil
}
