package mvg

import (
	"context"
	"net/url"

	"github.com/travigo/mvg-departures/pkg/ctdf"
)

const locationTypeStation = "STATION"

type location struct {
	Type           string   `json:"type"`
	GlobalID       string   `json:"globalId"`
	Name           string   `json:"name"`
	Place          string   `json:"place"`
	TransportTypes []string `json:"transportTypes"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
}

// LookupStation searches for stations matching the free text query.
// Addresses and points of interest are dropped, the stations keep the order the API ranked them in.
func (c *Client) LookupStation(ctx context.Context, query string) ([]ctdf.Station, error) {
	var locations []location
	if err := c.getJSON(ctx, "location", url.Values{"query": {query}}, &locations); err != nil {
		return nil, err
	}

	var stations []ctdf.Station
	for _, l := range locations {
		if l.Type != locationTypeStation || l.GlobalID == "" {
			continue
		}

		stations = append(stations, ctdf.Station{
			Identifier:        l.GlobalID,
			DisplayName:       l.Name,
			SupportedProducts: ctdf.ParseProducts(l.TransportTypes),
		})
	}

	return stations, nil
}
