package mvg

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jinzhu/copier"
	"github.com/travigo/mvg-departures/pkg/ctdf"
)

type departure struct {
	// Matching field names are carried over to ctdf.Departure by copier
	Label          string `json:"label"`
	Destination    string `json:"destination"`
	DelayInMinutes int    `json:"delayInMinutes"`
	Realtime       bool   `json:"realtime"`
	Cancelled      bool   `json:"cancelled"`
	Sev            bool   `json:"sev"`

	PlannedDepartureMillis  int64  `json:"plannedDepartureTime"`
	RealtimeDepartureMillis int64  `json:"realtimeDepartureTime"`
	TransportType           string `json:"transportType"`
	PlatformNumber          *int   `json:"platform"`
	StopPointGlobalID       string `json:"stopPointGlobalId"`
}

// FetchDepartures returns the raw upcoming departures for a station.
// No filtering happens here, records that already left are returned with a negative minute count.
func (c *Client) FetchDepartures(ctx context.Context, stationID string) ([]*ctdf.Departure, error) {
	var departures []departure
	if err := c.getJSON(ctx, "departure", url.Values{"globalId": {stationID}}, &departures); err != nil {
		return nil, err
	}

	now := c.now()
	records := make([]*ctdf.Departure, 0, len(departures))
	for _, d := range departures {
		record, err := d.toDeparture(now)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

func (d departure) toDeparture(now time.Time) (*ctdf.Departure, error) {
	record := &ctdf.Departure{}
	if err := copier.Copy(record, &d); err != nil {
		return nil, fmt.Errorf("failed to convert departure: %w", err)
	}

	record.Product = ctdf.Product(d.TransportType)
	record.PlannedDepartureTime = time.UnixMilli(d.PlannedDepartureMillis)

	record.DepartureTime = record.PlannedDepartureTime
	if d.Realtime && d.RealtimeDepartureMillis != 0 {
		record.DepartureTime = time.UnixMilli(d.RealtimeDepartureMillis)
	}

	// Truncates towards zero, so anything that left in the last minute reads as 0
	record.MinutesUntilDeparture = int(record.DepartureTime.Sub(now).Minutes())

	if d.PlatformNumber != nil {
		record.Platform = fmt.Sprint(*d.PlatformNumber)
	}

	return record, nil
}
