package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/travigo/mvg-departures/pkg/departureboard"
	"github.com/travigo/mvg-departures/pkg/entries"
	"github.com/travigo/mvg-departures/pkg/publisher"
)

type sensorsHandler struct {
	registry  *entries.Registry
	publisher *publisher.Publisher
}

// SensorsRouter serves the live sensors from the registry.
// The published route reads back what was last written to redis and is only useful when a publisher is given.
func SensorsRouter(router fiber.Router, registry *entries.Registry, snapshotPublisher *publisher.Publisher) {
	handler := &sensorsHandler{
		registry:  registry,
		publisher: snapshotPublisher,
	}

	router.Get("/", handler.listSensors)
	router.Get("/:id", handler.getSensor)
	router.Get("/:id/published", handler.getPublishedSensor)
	router.Post("/:id/refresh", handler.refreshSensor)
}

func (h *sensorsHandler) listSensors(c *fiber.Ctx) error {
	list := h.registry.List()

	snapshots := make([]*publisher.Snapshot, 0, len(list))
	for _, entry := range list {
		snapshots = append(snapshots, entry.Snapshot(nil))
	}

	return c.JSON(snapshots)
}

func (h *sensorsHandler) getSensor(c *fiber.Ctx) error {
	entry, exists := h.registry.Get(c.Params("id"))
	if !exists {
		return sensorNotFound(c)
	}

	return c.JSON(entry.Snapshot(nil))
}

func (h *sensorsHandler) getPublishedSensor(c *fiber.Ctx) error {
	if h.publisher == nil {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Snapshot publishing is not enabled",
		})
	}

	snapshot, err := h.publisher.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, publisher.ErrSnapshotNotFound) {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "No published snapshot for sensor",
		})
	} else if err != nil {
		return err
	}

	return c.JSON(snapshot)
}

func (h *sensorsHandler) refreshSensor(c *fiber.Ctx) error {
	entry, exists := h.registry.Get(c.Params("id"))
	if !exists {
		return sensorNotFound(c)
	}

	view, err := entry.Board.Refresh(c.UserContext())
	if errors.Is(err, departureboard.ErrFetchFailed) {
		log.Error().Err(err).Str("id", entry.ID).Msg("Forced refresh failed")

		c.Status(fiber.StatusBadGateway)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	} else if err != nil {
		return err
	}

	return c.JSON(entry.Snapshot(view))
}

func sensorNotFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return c.JSON(fiber.Map{
		"error": "Could not find sensor matching identifier",
	})
}
