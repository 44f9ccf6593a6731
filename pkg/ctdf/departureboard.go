package ctdf

import (
	"cmp"
	"strconv"
	"time"

	"github.com/travigo/mvg-departures/pkg/util"
	"golang.org/x/exp/slices"
)

const DefaultDisplayLimit = 5

// StateNone is reported as the board state when there is no qualifying departure
const StateNone = "-"

type BoardConfig struct {
	Station          Station
	LeadTimeMinutes  int
	IncludedProducts []Product
	DisplayLimit     int
}

// WithDefaults fills in the display limit and product allowlist when they were left unset
func (c BoardConfig) WithDefaults() BoardConfig {
	if c.DisplayLimit <= 0 {
		c.DisplayLimit = DefaultDisplayLimit
	}
	if c.LeadTimeMinutes < 0 {
		c.LeadTimeMinutes = 0
	}
	if len(c.IncludedProducts) == 0 {
		c.IncludedProducts = slices.Clone(c.Station.SupportedProducts)
	}

	return c
}

func (c BoardConfig) Includes(departure *Departure) bool {
	return departure.MinutesUntilDeparture > c.LeadTimeMinutes && slices.Contains(c.IncludedProducts, departure.Product)
}

type DepartureView struct {
	Filtered []*Departure
	Upcoming []*Departure
	Current  *Departure

	UpdatedAt time.Time
}

func (v *DepartureView) IsEmpty() bool {
	return v == nil || v.Current == nil
}

func (v *DepartureView) State() string {
	if v.IsEmpty() {
		return StateNone
	}

	return strconv.Itoa(v.Current.MinutesUntilDeparture)
}

func (v *DepartureView) Icon() string {
	if v.IsEmpty() {
		return DefaultIcon
	}

	return v.Current.Product.Icon()
}

// GenerateDepartureView filters the fetched records down to the ones worth showing and orders them soonest first.
// A record is kept only if it leaves strictly after the lead time and its product is in the allowlist,
// which also drops the already departed records the API keeps returning.
// The sort is stable so records due at the same minute keep the order the API gave them in.
func GenerateDepartureView(records []*Departure, config BoardConfig, now time.Time) *DepartureView {
	config = config.WithDefaults()

	filtered := slices.Clone(records)
	util.InPlaceFilter(&filtered, func(departure *Departure) bool {
		return departure != nil && config.Includes(departure)
	})

	slices.SortStableFunc(filtered, func(a, b *Departure) int {
		return cmp.Compare(a.MinutesUntilDeparture, b.MinutesUntilDeparture)
	})

	view := &DepartureView{
		Filtered:  filtered,
		Upcoming:  filtered[:min(config.DisplayLimit, len(filtered))],
		UpdatedAt: now,
	}
	if len(filtered) > 0 {
		view.Current = filtered[0]
	}

	return view
}
