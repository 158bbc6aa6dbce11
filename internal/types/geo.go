package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinates is a [longitude, latitude] pair.
type Coordinates [2]float64

func NewCoordinates(lon, lat float64) Coordinates {
	return Coordinates{lon, lat}
}

func (c Coordinates) Lon() float64 { return c[0] }
func (c Coordinates) Lat() float64 { return c[1] }

// String renders the pair as "lon,lat", the form used in provider URLs.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c[0], 'f', -1, 64) + "," + strconv.FormatFloat(c[1], 'f', -1, 64)
}

// ParseCoordinates parses "lon,lat".
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("coordinates must be \"lon,lat\", got %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", parts[0], err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", parts[1], err)
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("coordinates out of range: lon=%f, lat=%f", lon, lat)
	}
	return Coordinates{lon, lat}, nil
}

// Polygon is a GeoJSON polygon geometry in (lon, lat) order. Positions are
// kept as raw float slices so that arity can be validated before use.
type Polygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// BBox is [minLng, minLat, maxLng, maxLat].
type BBox [4]float64

func (b BBox) MinLng() float64 { return b[0] }
func (b BBox) MinLat() float64 { return b[1] }
func (b BBox) MaxLng() float64 { return b[2] }
func (b BBox) MaxLat() float64 { return b[3] }

// Contains reports whether c lies inside the box, edges included.
func (b BBox) Contains(c Coordinates) bool {
	return c.Lon() >= b.MinLng() && c.Lon() <= b.MaxLng() &&
		c.Lat() >= b.MinLat() && c.Lat() <= b.MaxLat()
}

// ParseBBox parses "minLng,minLat,maxLng,maxLat".
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("bbox must have 4 values, got %d", len(parts))
	}
	var b BBox
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("invalid bbox value %q: %w", p, err)
		}
		b[i] = v
	}
	if b.MinLng() > b.MaxLng() || b.MinLat() > b.MaxLat() {
		return BBox{}, fmt.Errorf("bbox minimums exceed maximums: %v", b)
	}
	return b, nil
}
