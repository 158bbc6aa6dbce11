package overpass

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

// ErrInvalidPolygon is returned for geometry the builder cannot query with.
var ErrInvalidPolygon = errors.New("invalid GeoJSON polygon")

const queryTimeoutSeconds = 30

// Query is one per-category request against the geodata source.
type Query struct {
	Category Category
	// Points holds the area ring in the source's (lat, lon) order.
	Points [][2]float64
	BBox   types.BBox
}

// BuildQueries validates the area polygon and returns one query per resolved
// category. Validation runs before anything else so that invalid input never
// reaches the network.
func BuildQueries(polygon types.Polygon, categories []string, table CategoryTable) ([]Query, error) {
	ring, err := exteriorRing(polygon)
	if err != nil {
		return nil, err
	}

	if ring.Orientation() == orb.CW {
		ring.Reverse()
	}

	bound := ring.Bound()
	bbox := types.BBox{bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat()}

	points := make([][2]float64, len(ring))
	for i, p := range ring {
		points[i] = [2]float64{p.Lat(), p.Lon()}
	}

	resolved := table.Resolve(categories)
	queries := make([]Query, 0, len(resolved))
	for _, c := range resolved {
		queries = append(queries, Query{Category: c, Points: points, BBox: bbox})
	}
	return queries, nil
}

func exteriorRing(polygon types.Polygon) (orb.Ring, error) {
	if polygon.Type != "Polygon" {
		return nil, fmt.Errorf("%w: geometry type %q", ErrInvalidPolygon, polygon.Type)
	}
	if len(polygon.Coordinates) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one ring, got %d", ErrInvalidPolygon, len(polygon.Coordinates))
	}
	positions := polygon.Coordinates[0]
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: empty ring", ErrInvalidPolygon)
	}

	ring := make(orb.Ring, len(positions))
	for i, pos := range positions {
		if len(pos) != 2 {
			return nil, fmt.Errorf("%w: position %d has %d values", ErrInvalidPolygon, i, len(pos))
		}
		for _, v := range pos {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: position %d is not finite", ErrInvalidPolygon, i)
			}
		}
		ring[i] = orb.Point{pos[0], pos[1]}
	}
	return ring, nil
}

// String renders the Overpass QL program. Elements matching the category rule
// are clipped to the polygon and kept only when they carry a wikipedia tag.
func (q Query) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d][bbox:%s,%s,%s,%s];",
		queryTimeoutSeconds,
		formatFloat(q.BBox.MinLat()), formatFloat(q.BBox.MinLng()),
		formatFloat(q.BBox.MaxLat()), formatFloat(q.BBox.MaxLng()),
	)
	b.WriteString("((")
	b.WriteString(q.Category.Rule)
	b.WriteString(")->.a;")
	fmt.Fprintf(&b, `nwr.a(poly:"%s")->.b;`, q.poly())
	b.WriteString(`nwr.b["wikipedia"]->.c;);.c out tags center;`)
	return b.String()
}

func (q Query) poly() string {
	parts := make([]string, 0, len(q.Points)*2)
	for _, p := range q.Points {
		parts = append(parts, formatFloat(p[0]), formatFloat(p[1]))
	}
	return strings.Join(parts, " ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
