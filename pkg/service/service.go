package service

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/travigo/mvg-departures/pkg/api"
	"github.com/travigo/mvg-departures/pkg/ctdf"
	"github.com/travigo/mvg-departures/pkg/entries"
	"github.com/travigo/mvg-departures/pkg/mvg"
	"github.com/travigo/mvg-departures/pkg/publisher"
	"github.com/travigo/mvg-departures/pkg/redis_client"
	"github.com/travigo/mvg-departures/pkg/resolver"
	"github.com/travigo/mvg-departures/pkg/tracker"
)

const shutdownTimeout = 10 * time.Second

type Service struct {
	Registry       *entries.Registry
	TrackerManager tracker.TrackerManager
	App            *fiber.App
}

// New sets up every sensor of the sensors file and wires a tracker for each one.
// Snapshots are pushed to the publisher after each refresh when one is given.
func New(ctx context.Context, client *mvg.Client, sensorsFile *entries.SensorsFile, snapshotPublisher *publisher.Publisher) (*Service, error) {
	registry := entries.NewRegistry()

	if err := registry.SetupAll(ctx, resolver.New(client), client, sensorsFile.Sensors); err != nil {
		return nil, err
	}

	return &Service{
		Registry:       registry,
		TrackerManager: NewTrackerManager(registry, sensorsFile.ScanInterval, snapshotPublisher),
		App:            api.NewApp(registry, snapshotPublisher),
	}, nil
}

func NewTrackerManager(registry *entries.Registry, refreshRate time.Duration, snapshotPublisher *publisher.Publisher) tracker.TrackerManager {
	var manager tracker.TrackerManager

	for _, entry := range registry.List() {
		sensorTracker := &tracker.Tracker{
			ID:          entry.ID,
			Board:       entry.Board,
			RefreshRate: refreshRate,
		}

		if snapshotPublisher != nil {
			sensorTracker.OnRefresh = func(ctx context.Context, view *ctdf.DepartureView) {
				if err := snapshotPublisher.Publish(ctx, entry.Snapshot(view)); err != nil {
					log.Error().Err(err).Str("id", entry.ID).Msg("Failed to publish sensor snapshot")
				}
			}
		}

		manager.Trackers = append(manager.Trackers, sensorTracker)
	}

	return manager
}

// Run starts the trackers and the web server and blocks until ctx is cancelled or the server fails
func (s *Service) Run(ctx context.Context, listen string) error {
	listener, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("web server: %w", err)
	}

	return s.Serve(ctx, listener)
}

// Serve is Run on an already bound listener. The listener is closed by the time Serve returns.
func (s *Service) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() {
		s.TrackerManager.Run(ctx)
	})

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("listen", listener.Addr().String()).Msg("Starting web server")
		serverErrors <- s.App.Listener(listener)
	}()

	var err error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		if shutdownErr := s.App.ShutdownWithTimeout(shutdownTimeout); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("Failed to shut down web server")
		}
		// Shutdown only knows about listeners the server already picked up
		listener.Close()
		<-serverErrors
	case err = <-serverErrors:
		listener.Close()
		if err != nil {
			err = fmt.Errorf("web server: %w", err)
		}
		cancel()
	}

	wg.Wait()

	return err
}

func connectPublisher() (*publisher.Publisher, error) {
	if err := redis_client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return publisher.NewPublisher(redis_client.Client, publisher.DefaultExpiration), nil
}
