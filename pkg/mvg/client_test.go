package mvg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/mvg-departures/pkg/ctdf"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, WithRetryInterval(time.Millisecond), WithMaxRetries(2))
}

func TestClient_LookupStation(t *testing.T) {
	mockJSON := `[
		{"type": "ADDRESS", "name": "Marienplatz 1", "place": "München"},
		{"type": "STATION", "globalId": "de:09162:2", "name": "Marienplatz", "place": "München", "transportTypes": ["UBAHN", "BUS", "SBAHN"]},
		{"type": "STATION", "globalId": "de:09162:1", "name": "Karlsplatz (Stachus)", "place": "München", "transportTypes": ["TRAM"]}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/location", r.URL.Path)
		assert.Equal(t, "Marienplatz", r.URL.Query().Get("query"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(mockJSON))
	}))
	defer server.Close()

	stations, err := newTestClient(server.URL).LookupStation(context.Background(), "Marienplatz")
	require.NoError(t, err)
	require.Len(t, stations, 2)

	assert.Equal(t, ctdf.Station{
		Identifier:        "de:09162:2",
		DisplayName:       "Marienplatz",
		SupportedProducts: []ctdf.Product{ctdf.ProductUBahn, ctdf.ProductBus, ctdf.ProductSBahn},
	}, stations[0])
	assert.Equal(t, "de:09162:1", stations[1].Identifier)
}

func TestClient_LookupStationEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	stations, err := newTestClient(server.URL).LookupStation(context.Background(), "NoSuchStation")
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestClient_FetchDepartures(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	millis := func(d time.Duration) int64 { return now.Add(d).UnixMilli() }

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/departure", r.URL.Path)
		assert.Equal(t, "de:09162:2", r.URL.Query().Get("globalId"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"plannedDepartureTime": ` + itoa(millis(4*time.Minute)) + `, "realtime": true, "delayInMinutes": 2,
			 "realtimeDepartureTime": ` + itoa(millis(6*time.Minute+30*time.Second)) + `, "transportType": "UBAHN",
			 "label": "U3", "destination": "Fürstenried West", "cancelled": false, "sev": false, "platform": 1},
			{"plannedDepartureTime": ` + itoa(millis(-6*time.Minute)) + `, "realtime": false,
			 "transportType": "BUS", "label": "132", "destination": "Forstenrieder Park", "platform": null},
			{"plannedDepartureTime": ` + itoa(millis(-30*time.Second)) + `, "realtime": false,
			 "transportType": "TRAM", "label": "19", "destination": "Pasing"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithClock(func() time.Time { return now }))

	departures, err := client.FetchDepartures(context.Background(), "de:09162:2")
	require.NoError(t, err)
	require.Len(t, departures, 3)

	subway := departures[0]
	assert.Equal(t, ctdf.ProductUBahn, subway.Product)
	assert.Equal(t, 6, subway.MinutesUntilDeparture)
	assert.Equal(t, "U3", subway.Label)
	assert.Equal(t, "Fürstenried West", subway.Destination)
	assert.Equal(t, 2, subway.DelayInMinutes)
	assert.True(t, subway.Realtime)
	assert.Equal(t, "1", subway.Platform)
	assert.True(t, subway.DepartureTime.Equal(now.Add(6*time.Minute+30*time.Second)))
	assert.True(t, subway.PlannedDepartureTime.Equal(now.Add(4*time.Minute)))

	bus := departures[1]
	assert.Equal(t, -6, bus.MinutesUntilDeparture)
	assert.Equal(t, "", bus.Platform)
	assert.True(t, bus.DepartureTime.Equal(bus.PlannedDepartureTime))

	assert.Equal(t, 0, departures[2].MinutesUntilDeparture)
}

func TestClient_RetriesTransientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchDepartures(context.Background(), "de:09162:2")
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchDepartures(context.Background(), "de:09162:2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).LookupStation(context.Background(), "Marienplatz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchDepartures(context.Background(), "de:09162:2")
	assert.ErrorContains(t, err, "failed to decode")
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
