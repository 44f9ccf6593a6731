package ctdf

import "time"

// Departure is a single departure record as returned by the transit API on one fetch.
// Only Product and MinutesUntilDeparture are interpreted, the rest is passed through to the attributes.
type Departure struct {
	Product               Product `json:"product" groups:"attributes"`
	MinutesUntilDeparture int     `json:"departure_time_minutes" groups:"attributes"`

	Label       string `json:"label" groups:"attributes"`
	Destination string `json:"destination" groups:"attributes"`
	Platform    string `json:"platform,omitempty" groups:"attributes"`

	DepartureTime        time.Time `json:"departure_time" groups:"attributes"`
	PlannedDepartureTime time.Time `json:"planned_departure_time" groups:"attributes"`
	DelayInMinutes       int       `json:"delay" groups:"attributes"`

	Realtime  bool `json:"realtime" groups:"attributes"`
	Cancelled bool `json:"cancelled" groups:"attributes"`
	Sev       bool `json:"sev" groups:"attributes"`
}
