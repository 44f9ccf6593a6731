package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/mvg-departures/pkg/api"
	"github.com/travigo/mvg-departures/pkg/entries"
	"github.com/travigo/mvg-departures/pkg/mvg"
	"github.com/travigo/mvg-departures/pkg/publisher"
)

func newMVGServer(t *testing.T, now time.Time) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/location":
			w.Write([]byte(`[{"type": "STATION", "globalId": "de:09162:70", "name": "Goetheplatz", "transportTypes": ["UBAHN", "BUS"]}]`))
		case "/departure":
			fmt.Fprintf(w, `[
				{"plannedDepartureTime": %d, "realtime": false, "transportType": "BUS", "label": "58", "destination": "Silberhornstraße"},
				{"plannedDepartureTime": %d, "realtime": false, "transportType": "UBAHN", "label": "U6", "destination": "Klinikum Großhadern"}
			]`, now.Add(10*time.Minute).UnixMilli(), now.Add(4*time.Minute).UnixMilli())
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestServicePublishesSnapshots(t *testing.T) {
	now := time.Now()
	mvgServer := newMVGServer(t, now)
	client := mvg.NewClient(mvgServer.URL, mvg.WithClock(func() time.Time { return now }))

	redisServer := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})
	t.Cleanup(func() { redisClient.Close() })
	snapshotPublisher := publisher.NewPublisher(redisClient, publisher.DefaultExpiration)

	sensorsFile, err := entries.ParseSensorsFile([]byte("scan_interval: 1h\nsensors:\n  - id: goethe\n    station: Goetheplatz\n    products: [UBAHN]\n"))
	require.NoError(t, err)

	service, err := New(context.Background(), client, sensorsFile, snapshotPublisher)
	require.NoError(t, err)
	require.Len(t, service.TrackerManager.Trackers, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.TrackerManager.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return redisServer.Exists("mvg-departures:sensor:goethe")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	snapshot, err := snapshotPublisher.Get(context.Background(), "goethe")
	require.NoError(t, err)
	assert.Equal(t, "Goetheplatz", snapshot.Name)
	assert.Equal(t, "4", snapshot.State)
	assert.Equal(t, "mdi:subway", snapshot.Icon)
	assert.Len(t, snapshot.Attributes["upcoming_departures"], 1)
}

func TestServiceSetupFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	sensorsFile, err := entries.ParseSensorsFile([]byte("sensors:\n  - id: nowhere\n    station: NoSuchStation\n"))
	require.NoError(t, err)

	_, err = New(context.Background(), mvg.NewClient(server.URL), sensorsFile, nil)
	assert.Error(t, err)
}

func TestNewTrackerManagerWithoutPublisher(t *testing.T) {
	registry := entries.NewRegistry()
	registry.Add(&entries.Entry{ID: "b"})
	registry.Add(&entries.Entry{ID: "a"})

	manager := NewTrackerManager(registry, time.Minute, nil)
	require.Len(t, manager.Trackers, 2)

	assert.Equal(t, "a", manager.Trackers[0].ID)
	assert.Equal(t, time.Minute, manager.Trackers[0].RefreshRate)
	assert.Nil(t, manager.Trackers[0].OnRefresh)
}

func TestServiceServeStopsOnCancel(t *testing.T) {
	registry := entries.NewRegistry()
	service := &Service{
		Registry: registry,
		App:      api.NewApp(registry, nil),
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- service.Serve(ctx, listener)
	}()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + address + "/core/version")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("service did not stop after cancel")
	}

	_, err = net.DialTimeout("tcp", address, time.Second)
	assert.Error(t, err)
}

func TestServiceServeCancelledBeforeStart(t *testing.T) {
	registry := entries.NewRegistry()
	service := &Service{
		Registry: registry,
		App:      api.NewApp(registry, nil),
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- service.Serve(ctx, listener)
	}()

	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatal("service did not stop")
	}

	_, err = net.DialTimeout("tcp", address, time.Second)
	assert.Error(t, err)
}

func TestServiceRunInvalidListen(t *testing.T) {
	registry := entries.NewRegistry()
	service := &Service{
		Registry: registry,
		App:      api.NewApp(registry, nil),
	}

	err := service.Run(context.Background(), "not-an-address")
	assert.Error(t, err)
}
