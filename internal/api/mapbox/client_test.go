package mapbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-walking-tours/config"
	"github.com/FACorreiaa/go-walking-tours/internal/api/external"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

func setupMapboxTest(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.MapboxConfig{
		AccessToken:     "test-token",
		GeocodeURL:      srv.URL + "/search/geocode/v6",
		IsochroneURL:    srv.URL + "/isochrone/v1/mapbox",
		OptimizationURL: srv.URL + "/optimized-trips/v1/mapbox",
	}
	return NewClient(external.New(external.Options{Name: "mapbox"}, logger), cfg, time.Hour, logger)
}

func TestClient_ReverseGeocode(t *testing.T) {
	var calls atomic.Int32
	client := setupMapboxTest(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search/geocode/v6/reverse", r.URL.Path)
		assert.Equal(t, "30.3158", r.URL.Query().Get("longitude"))
		assert.Equal(t, "59.9398", r.URL.Query().Get("latitude"))
		assert.Equal(t, "address", r.URL.Query().Get("types"))
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"type":"Point","coordinates":[30.3158,59.9398]},
			"properties":{"name":"Palace Square 2","full_address":"Palace Square 2, Saint Petersburg, Russia"}}]}`))
	})

	at := types.NewCoordinates(30.3158, 59.9398)
	places, err := client.ReverseGeocode(context.Background(), at)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Palace Square 2, Saint Petersburg, Russia", places[0].FullAddress)
	require.NotNil(t, places[0].Coordinates)
	assert.Equal(t, at, *places[0].Coordinates)

	// memoized
	_, err = client.ReverseGeocode(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ReverseGeocode_ErrorNotCached(t *testing.T) {
	var calls atomic.Int32
	client := setupMapboxTest(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	at := types.NewCoordinates(1, 2)
	_, err := client.ReverseGeocode(context.Background(), at)
	require.Error(t, err)
	_, err = client.ReverseGeocode(context.Background(), at)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Isochrone(t *testing.T) {
	client := setupMapboxTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/isochrone/v1/mapbox/walking/30.3158,59.9398", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("contours_minutes"))
		assert.Equal(t, "true", r.URL.Query().Get("polygons"))
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"type":"Polygon","coordinates":[[[30.3,59.93],[30.33,59.93],[30.33,59.95],[30.3,59.93]]]}}]}`))
	})

	polygon, err := client.Isochrone(context.Background(), types.NewCoordinates(30.3158, 59.9398), 15)
	require.NoError(t, err)
	assert.Equal(t, "Polygon", polygon.Type)
	require.Len(t, polygon.Coordinates, 1)
	assert.Len(t, polygon.Coordinates[0], 4)
}

func TestClient_Isochrone_Empty(t *testing.T) {
	client := setupMapboxTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	})

	_, err := client.Isochrone(context.Background(), types.NewCoordinates(30, 60), 10)
	assert.True(t, errors.Is(err, ErrNoIsochrone))
}

func TestClient_OptimizeRoute(t *testing.T) {
	client := setupMapboxTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/optimized-trips/v1/mapbox/walking/"))
		assert.Equal(t, "/optimized-trips/v1/mapbox/walking/-120.2,38.5;-120.95,40.7;-126.453,43.252", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "false", q.Get("roundtrip"))
		assert.Equal(t, "first", q.Get("source"))
		assert.Equal(t, "last", q.Get("destination"))
		assert.Equal(t, "full", q.Get("overview"))
		_, _ = w.Write([]byte(`{"code":"Ok",
			"trips":[{"geometry":"_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@","duration":1830.4,"distance":2412.6}],
			"waypoints":[{"waypoint_index":0},{"waypoint_index":2},{"waypoint_index":1}]}`))
	})

	coords := []types.Coordinates{
		types.NewCoordinates(-120.2, 38.5),
		types.NewCoordinates(-120.95, 40.7),
		types.NewCoordinates(-126.453, 43.252),
	}
	trip, err := client.OptimizeRoute(context.Background(), coords)
	require.NoError(t, err)

	assert.InDelta(t, 1830.4, trip.DurationSeconds, 1e-9)
	assert.InDelta(t, 2412.6, trip.DistanceMeters, 1e-9)
	assert.Equal(t, []types.Waypoint{{Index: 0}, {Index: 2}, {Index: 1}}, trip.Waypoints)

	require.Len(t, trip.Geometry, 3)
	assert.InDelta(t, -120.2, trip.Geometry[0].Lon(), 1e-6)
	assert.InDelta(t, 38.5, trip.Geometry[0].Lat(), 1e-6)
	assert.InDelta(t, -126.453, trip.Geometry[2].Lon(), 1e-6)
	assert.InDelta(t, 43.252, trip.Geometry[2].Lat(), 1e-6)
}

func TestClient_OptimizeRoute_NoTrip(t *testing.T) {
	client := setupMapboxTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"NoTrips","trips":[],"waypoints":[]}`))
	})

	trip, err := client.OptimizeRoute(context.Background(), []types.Coordinates{{1, 2}, {3, 4}})
	assert.Nil(t, trip)
	assert.True(t, errors.Is(err, ErrNoTrip))
}

func TestClient_OptimizeRoute_TooManyStops(t *testing.T) {
	client := setupMapboxTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	coords := make([]types.Coordinates, MaxTripCoordinates+1)
	_, err := client.OptimizeRoute(context.Background(), coords)
	assert.True(t, errors.Is(err, ErrTooManyStops))
}
