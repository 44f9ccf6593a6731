package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/travigo/mvg-departures/pkg/ctdf"
	"github.com/travigo/mvg-departures/pkg/departureboard"
)

const DefaultExpiration = 5 * time.Minute

const keyPrefix = "mvg-departures:sensor:"

var ErrSnapshotNotFound = errors.New("sensor snapshot not found")

// Snapshot is the published form of a sensor, the same fields a host reads off the board
type Snapshot struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	State             string         `json:"state"`
	Icon              string         `json:"icon"`
	UnitOfMeasurement string         `json:"unit_of_measurement"`
	Attributes        map[string]any `json:"attributes"`
	UpdatedAt         time.Time      `json:"updated_at"`

	DestinationStation *ctdf.Station `json:"destination_station,omitempty"`
}

// NewSnapshot derives every field from the one view so a snapshot never mixes two refreshes.
// A nil view means the sensor's current view.
func NewSnapshot(id string, sensor departureboard.Sensor, view *ctdf.DepartureView) *Snapshot {
	if view == nil {
		view = sensor.CurrentView()
	}

	return &Snapshot{
		ID:                id,
		Name:              sensor.Name(),
		State:             view.State(),
		Icon:              view.Icon(),
		UnitOfMeasurement: sensor.UnitOfMeasurement(),
		Attributes:        sensor.ViewAttributes(view),
		UpdatedAt:         view.UpdatedAt,
	}
}

type Publisher struct {
	Cache *cache.Cache[string]
}

func NewPublisher(client *redis.Client, expiration time.Duration) *Publisher {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}

	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &Publisher{
		Cache: cache.New[string](redisStore),
	}
}

func (p *Publisher) Publish(ctx context.Context, snapshot *Snapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return p.Cache.Set(ctx, key(snapshot.ID), string(snapshotJSON))
}

func (p *Publisher) Get(ctx context.Context, id string) (*Snapshot, error) {
	value, err := p.Cache.Get(ctx, key(id))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrSnapshotNotFound, id, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func key(id string) string {
	return keyPrefix + id
}
