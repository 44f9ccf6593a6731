package tracker

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

type TrackerManager struct {
	Trackers []*Tracker
}

// Run starts every tracker and blocks until all of them have stopped after ctx is cancelled
func (m TrackerManager) Run(ctx context.Context) {
	log.Info().Int("trackers", len(m.Trackers)).Msg("Starting departure board trackers")

	var wg conc.WaitGroup
	for _, tracker := range m.Trackers {
		wg.Go(func() {
			tracker.Run(ctx)
		})
	}
	wg.Wait()
}
