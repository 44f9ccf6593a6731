package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/mvg-departures/pkg/ctdf"
)

const DefaultRefreshRate = 30 * time.Second

type Refresher interface {
	Refresh(ctx context.Context) (*ctdf.DepartureView, error)
}

// Tracker drives the refresh cycle of a single departure board
type Tracker struct {
	ID          string
	Board       Refresher
	RefreshRate time.Duration

	// OnRefresh is called after every successful refresh
	OnRefresh func(ctx context.Context, view *ctdf.DepartureView)
}

func (t *Tracker) Run(ctx context.Context) {
	refreshRate := t.RefreshRate
	if refreshRate <= 0 {
		refreshRate = DefaultRefreshRate
	}

	log.Info().Str("id", t.ID).Dur("refresh", refreshRate).Msg("Registering departure board tracker")

	for {
		startTime := time.Now()

		t.refresh(ctx)

		waitTime := refreshRate - time.Since(startTime)
		if waitTime < 0 {
			waitTime = 0
		}

		select {
		case <-ctx.Done():
			log.Info().Str("id", t.ID).Msg("Stopping departure board tracker")
			return
		case <-time.After(waitTime):
		}
	}
}

func (t *Tracker) refresh(ctx context.Context) {
	startTime := time.Now()

	view, err := t.Board.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Str("id", t.ID).Msg("Failed to refresh departure board")
		}
		return
	}

	log.Info().
		Str("id", t.ID).
		Str("state", view.State()).
		Int("departures", len(view.Filtered)).
		Str("length", time.Since(startTime).String()).
		Msg("update departure board")

	if t.OnRefresh != nil {
		t.OnRefresh(ctx, view)
	}
}
