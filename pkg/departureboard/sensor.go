package departureboard

import (
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/travigo/mvg-departures/pkg/ctdf"
)

const (
	Attribution       = "Data provided by MVG (mvg.de)"
	UnitOfMeasurement = "min"
)

// Sensor is the read side a host polls for each configured station.
// State, Icon and Attributes each load the current view on their own, a reader that needs
// them together takes CurrentView once and derives everything from that view.
type Sensor interface {
	Name() string
	State() string
	Icon() string
	UnitOfMeasurement() string
	Attributes() map[string]any

	CurrentView() *ctdf.DepartureView
	ViewAttributes(view *ctdf.DepartureView) map[string]any
}

func (b *Board) Name() string {
	return b.name
}

func (b *Board) State() string {
	return b.CurrentView().State()
}

func (b *Board) Icon() string {
	return b.CurrentView().Icon()
}

func (b *Board) UnitOfMeasurement() string {
	return UnitOfMeasurement
}

func (b *Board) Attributes() map[string]any {
	return b.ViewAttributes(b.CurrentView())
}

// ViewAttributes bundles the station, the fields of the next departure and the upcoming list of the view.
// Returns nil while there is no departure to show.
func (b *Board) ViewAttributes(view *ctdf.DepartureView) map[string]any {
	if view.IsEmpty() {
		return nil
	}

	attributes := map[string]any{
		"station_name": b.config.Station.DisplayName,
		"attribution":  Attribution,
	}

	current, err := departureAttributes(view.Current)
	if err != nil {
		log.Error().Err(err).Str("sensor", b.name).Msg("Failed to marshal current departure")
	}
	for key, value := range current {
		attributes[key] = value
	}

	upcoming := make([]map[string]any, 0, len(view.Upcoming))
	for _, departure := range view.Upcoming {
		departureMap, err := departureAttributes(departure)
		if err != nil {
			log.Error().Err(err).Str("sensor", b.name).Msg("Failed to marshal upcoming departure")
			continue
		}
		upcoming = append(upcoming, departureMap)
	}
	attributes["upcoming_departures"] = upcoming

	return attributes
}

func departureAttributes(departure *ctdf.Departure) (map[string]any, error) {
	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"attributes"},
	}, departure)
	if err != nil {
		return nil, err
	}

	attributes, _ := reduced.(map[string]interface{})
	return attributes, nil
}
