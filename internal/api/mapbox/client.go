package mapbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/twpayne/go-polyline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-walking-tours/config"
	"github.com/FACorreiaa/go-walking-tours/internal/api/external"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

// MaxTripCoordinates is the optimization API's per-request coordinate limit.
const MaxTripCoordinates = 12

var (
	ErrNoIsochrone  = errors.New("isochrone response contained no polygon")
	ErrNoTrip       = errors.New("optimizer returned no trip")
	ErrTooManyStops = fmt.Errorf("route optimization supports at most %d coordinates", MaxTripCoordinates)
)

// Client talks to the Mapbox geocoding v6, isochrone and optimized trips APIs.
type Client struct {
	http   *external.Client
	cfg    config.MapboxConfig
	cache  *cache.Cache
	logger *slog.Logger
}

func NewClient(httpClient *external.Client, cfg config.MapboxConfig, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if cfg.Profile == "" {
		cfg.Profile = "walking"
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Client{
		http:   httpClient,
		cfg:    cfg,
		cache:  cache.New(cacheTTL, time.Hour),
		logger: logger,
	}
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry struct {
		Type        string `json:"type"`
		Coordinates any    `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Name        string `json:"name"`
		FullAddress string `json:"full_address"`
	} `json:"properties"`
}

// ReverseGeocode returns the address candidates at c. Results are memoized
// per coordinate.
func (c *Client) ReverseGeocode(ctx context.Context, at types.Coordinates) ([]types.Place, error) {
	key := "reverse:" + at.String()
	if cached, found := c.cache.Get(key); found {
		return cached.([]types.Place), nil
	}

	q := url.Values{}
	q.Set("longitude", strconv.FormatFloat(at.Lon(), 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(at.Lat(), 'f', -1, 64))
	q.Set("types", "address")
	q.Set("access_token", c.cfg.AccessToken)

	var fc featureCollection
	if err := c.http.GetJSON(ctx, c.cfg.GeocodeURL+"/reverse?"+q.Encode(), &fc); err != nil {
		return nil, fmt.Errorf("failed to reverse geocode %s: %w", at, err)
	}
	places := toPlaces(fc)
	c.cache.Set(key, places, cache.DefaultExpiration)
	return places, nil
}

// Geocode resolves a free-text query to candidate places.
func (c *Client) Geocode(ctx context.Context, query string) ([]types.Place, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("autocomplete", "true")
	q.Set("access_token", c.cfg.AccessToken)

	var fc featureCollection
	if err := c.http.GetJSON(ctx, c.cfg.GeocodeURL+"/forward?"+q.Encode(), &fc); err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", query, err)
	}
	return toPlaces(fc), nil
}

func toPlaces(fc featureCollection) []types.Place {
	places := make([]types.Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := types.Place{FullAddress: f.Properties.FullAddress, Name: f.Properties.Name}
		if pt, ok := f.Geometry.Coordinates.([]any); ok && f.Geometry.Type == "Point" && len(pt) == 2 {
			lon, okLon := pt[0].(float64)
			lat, okLat := pt[1].(float64)
			if okLon && okLat {
				coords := types.NewCoordinates(lon, lat)
				p.Coordinates = &coords
			}
		}
		places = append(places, p)
	}
	return places
}

type isochroneResponse struct {
	Features []struct {
		Geometry types.Polygon `json:"geometry"`
	} `json:"features"`
}

// Isochrone returns the area reachable from start within minutes.
func (c *Client) Isochrone(ctx context.Context, start types.Coordinates, minutes int) (types.Polygon, error) {
	ctx, span := otel.Tracer("MapboxClient").Start(ctx, "Isochrone", trace.WithAttributes(
		attribute.String("start", start.String()),
		attribute.Int("contours_minutes", minutes),
	))
	defer span.End()

	q := url.Values{}
	q.Set("contours_minutes", strconv.Itoa(minutes))
	q.Set("polygons", "true")
	q.Set("access_token", c.cfg.AccessToken)
	u := fmt.Sprintf("%s/%s/%s?%s", c.cfg.IsochroneURL, c.cfg.Profile, url.PathEscape(start.String()), q.Encode())

	var resp isochroneResponse
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "isochrone request failed")
		return types.Polygon{}, fmt.Errorf("failed to retrieve isochrone: %w", err)
	}
	if len(resp.Features) == 0 {
		span.SetStatus(codes.Error, "empty isochrone")
		return types.Polygon{}, ErrNoIsochrone
	}
	span.SetStatus(codes.Ok, "isochrone retrieved")
	return resp.Features[0].Geometry, nil
}

type optimizationResponse struct {
	Code  string `json:"code"`
	Trips []struct {
		Geometry string  `json:"geometry"`
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"trips"`
	Waypoints []struct {
		WaypointIndex int `json:"waypoint_index"`
		TripsIndex    int `json:"trips_index"`
	} `json:"waypoints"`
}

// OptimizeRoute asks for an open trip that starts at the first coordinate and
// ends at the last one.
func (c *Client) OptimizeRoute(ctx context.Context, coords []types.Coordinates) (*types.OptimizedTrip, error) {
	ctx, span := otel.Tracer("MapboxClient").Start(ctx, "OptimizeRoute", trace.WithAttributes(
		attribute.Int("coordinates", len(coords)),
	))
	defer span.End()

	if len(coords) > MaxTripCoordinates {
		span.SetStatus(codes.Error, "too many coordinates")
		return nil, ErrTooManyStops
	}

	parts := make([]string, len(coords))
	for i, pt := range coords {
		parts[i] = pt.String()
	}

	q := url.Values{}
	q.Set("annotations", "duration")
	q.Set("roundtrip", "false")
	q.Set("source", "first")
	q.Set("destination", "last")
	q.Set("overview", "full")
	q.Set("access_token", c.cfg.AccessToken)
	u := fmt.Sprintf("%s/%s/%s?%s", c.cfg.OptimizationURL, c.cfg.Profile, url.PathEscape(strings.Join(parts, ";")), q.Encode())

	var resp optimizationResponse
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "optimization request failed")
		return nil, fmt.Errorf("failed to optimize route: %w", err)
	}
	if resp.Code != "Ok" || len(resp.Trips) == 0 {
		span.SetStatus(codes.Error, "no trip")
		return nil, fmt.Errorf("%w: code %q", ErrNoTrip, resp.Code)
	}

	trip := resp.Trips[0]
	decoded, _, err := polyline.DecodeCoords([]byte(trip.Geometry))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid geometry")
		return nil, fmt.Errorf("failed to decode route geometry: %w", err)
	}
	geometry := make([]types.Coordinates, len(decoded))
	for i, p := range decoded {
		geometry[i] = types.NewCoordinates(p[1], p[0])
	}

	waypoints := make([]types.Waypoint, len(resp.Waypoints))
	for i, w := range resp.Waypoints {
		waypoints[i] = types.Waypoint{Index: w.WaypointIndex}
	}

	span.SetStatus(codes.Ok, "route optimized")
	return &types.OptimizedTrip{
		DurationSeconds: trip.Duration,
		DistanceMeters:  trip.Distance,
		Geometry:        geometry,
		Waypoints:       waypoints,
	}, nil
}
