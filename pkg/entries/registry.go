package entries

import (
	"context"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/mvg-departures/pkg/departureboard"
	"github.com/travigo/mvg-departures/pkg/resolver"
)

// Registry holds the set up entries keyed by sensor id
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: map[string]*Entry{},
	}
}

func (r *Registry) Add(entry *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
}

func (r *Registry) Get(id string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, exists := r.entries[id]
	return entry, exists
}

func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		list = append(list, entry)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	return list
}

// SetupAll sets up every configured sensor concurrently and registers them.
// Nothing is registered if any of them fails.
func (r *Registry) SetupAll(ctx context.Context, stationResolver *resolver.Resolver, fetcher departureboard.DepartureFetcher, configs []SensorConfig) error {
	p := pool.NewWithResults[*Entry]().
		WithMaxGoroutines(4).
		WithContext(ctx).
		WithCancelOnError()

	for _, config := range configs {
		p.Go(func(ctx context.Context) (*Entry, error) {
			return Setup(ctx, stationResolver, fetcher, config)
		})
	}

	setupEntries, err := p.Wait()
	if err != nil {
		return err
	}

	for _, entry := range setupEntries {
		r.Add(entry)
	}

	return nil
}
