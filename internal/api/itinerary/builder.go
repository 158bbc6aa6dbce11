package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-walking-tours/app/observability/metrics"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

// stopDuration is the nominal time spent at each stop.
const stopDuration = "5 min"

var (
	ErrNoRoute            = errors.New("route optimizer returned no trip")
	ErrMissingCoordinates = errors.New("attraction has no coordinates")
)

type RouteOptimizer interface {
	OptimizeRoute(ctx context.Context, coords []types.Coordinates) (*types.OptimizedTrip, error)
}

// Builder turns an unordered attraction set into an optimized walking tour.
type Builder struct {
	optimizer RouteOptimizer
	logger    *slog.Logger
}

func NewBuilder(optimizer RouteOptimizer, logger *slog.Logger) *Builder {
	return &Builder{optimizer: optimizer, logger: logger}
}

// Build returns nil without error when fewer than two attractions are given.
// Every attraction must carry coordinates.
//
// Items are numbered from 1 in visiting order. The optimizer's waypoint
// index for the optional start point is dropped.
func (b *Builder) Build(ctx context.Context, attractions []types.Attraction, start *types.Coordinates) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryBuilder").Start(ctx, "Build")
	defer span.End()
	span.SetAttributes(
		attribute.Int("attractions.count", len(attractions)),
		attribute.Bool("start.present", start != nil),
	)

	if len(attractions) < 2 {
		return nil, nil
	}
	for _, a := range attractions {
		if a.Coordinates == nil {
			return nil, fmt.Errorf("%w: %d", ErrMissingCoordinates, a.ExternalID)
		}
	}

	ordered := sortByDistance(attractions, start)

	coords := make([]types.Coordinates, 0, len(ordered)+1)
	if start != nil {
		coords = append(coords, *start)
	}
	for _, a := range ordered {
		coords = append(coords, *a.Coordinates)
	}

	trip, err := b.optimizer.OptimizeRoute(ctx, coords)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Optimizer failed")
		return nil, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}
	if trip == nil || len(trip.Waypoints) != len(coords) {
		span.SetStatus(codes.Error, "Incomplete optimizer result")
		return nil, ErrNoRoute
	}

	items := make([]types.ItineraryItem, len(ordered))
	for i, a := range ordered {
		var seq int
		if start != nil {
			seq = trip.Waypoints[i+1].Index
		} else {
			seq = trip.Waypoints[i].Index + 1
		}
		items[i] = types.ItineraryItem{
			AttractionID: a.ExternalID,
			Sequence:     seq,
			Name:         a.Name,
			Coordinates:  *a.Coordinates,
			Description:  a.Description,
			Images:       append([]string{}, a.Images...),
			Duration:     stopDuration,
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Sequence < items[j].Sequence })
	renumber(items)

	it := &types.Itinerary{
		Title:    items[0].Name + " - " + items[len(items)-1].Name,
		Duration: int(math.Round(trip.DurationSeconds / 60)),
		Distance: int(math.Round(trip.DistanceMeters)),
		Route:    trip.Geometry,
		Items:    items,
	}
	metrics.Get().ItinerariesBuiltTotal.Add(ctx, 1)
	span.SetStatus(codes.Ok, "Itinerary built")
	return it, nil
}

// sortByDistance stable-sorts a copy of attractions by great-circle distance
// from start. Without a start point the input order is kept.
func sortByDistance(attractions []types.Attraction, start *types.Coordinates) []types.Attraction {
	ordered := append([]types.Attraction(nil), attractions...)
	if start == nil {
		return ordered
	}
	from := orb.Point{start.Lon(), start.Lat()}
	dist := make(map[int64]float64, len(ordered))
	for _, a := range ordered {
		dist[a.ExternalID] = geo.DistanceHaversine(from, orb.Point{a.Coordinates.Lon(), a.Coordinates.Lat()})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return dist[ordered[i].ExternalID] < dist[ordered[j].ExternalID]
	})
	return ordered
}

// renumber closes gaps left by sparse or repeated waypoint indices and flags
// the item with the highest sequence as last. items must be sorted.
func renumber(items []types.ItineraryItem) {
	for i := range items {
		items[i].Sequence = i + 1
		items[i].IsLast = i == len(items)-1
	}
}
