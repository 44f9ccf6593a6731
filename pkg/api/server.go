package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/mvg-departures/pkg/api/routes"
	"github.com/travigo/mvg-departures/pkg/entries"
	"github.com/travigo/mvg-departures/pkg/publisher"
)

// NewApp builds the web API over the registry. snapshotPublisher may be nil when publishing is off.
func NewApp(registry *entries.Registry, snapshotPublisher *publisher.Publisher) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.SensorsRouter(group.Group("/sensors"), registry, snapshotPublisher)

	return webApp
}
