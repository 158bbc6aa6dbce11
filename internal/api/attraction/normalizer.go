package attraction

import (
	"math"
	"strings"

	"github.com/FACorreiaa/go-walking-tours/internal/api/overpass"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

// OSM tag keys copied onto attractions.
const (
	tagName        = "name"
	tagDescription = "description"
	tagWikidata    = "wikidata"
	tagWikipedia   = "wikipedia"
	tagWikimedia   = "wikimedia_commons"
	tagWebsite     = "website"
)

// Normalize maps deduplicated elements onto attractions. It never fails;
// missing or malformed fields are left unset.
func Normalize(elements []overpass.Element) []types.Attraction {
	out := make([]types.Attraction, 0, len(elements))
	for _, e := range elements {
		out = append(out, normalizeElement(e))
	}
	return out
}

func normalizeElement(e overpass.Element) types.Attraction {
	a := types.Attraction{
		ExternalID:  e.ID,
		Coordinates: elementCoordinates(e),
		Name:        tag(e.Tags, tagName),
		Description: tag(e.Tags, tagDescription),
		Wikidata:    tag(e.Tags, tagWikidata),
		Wikipedia:   tag(e.Tags, tagWikipedia),
		Wikimedia:   tag(e.Tags, tagWikimedia),
		Website:     tag(e.Tags, tagWebsite),
		Categories:  append([]string(nil), e.Categories...),
		Images:      []string{},
		ChangeKind:  types.ChangeInsert,
	}
	if a.Categories == nil {
		a.Categories = []string{}
	}
	return a
}

// elementCoordinates prefers a node's own point over a way's center.
func elementCoordinates(e overpass.Element) *types.Coordinates {
	if e.Lat != nil && e.Lon != nil && validPoint(*e.Lon, *e.Lat) {
		c := types.NewCoordinates(*e.Lon, *e.Lat)
		return &c
	}
	if e.Center != nil && validPoint(e.Center.Lon, e.Center.Lat) {
		c := types.NewCoordinates(e.Center.Lon, e.Center.Lat)
		return &c
	}
	return nil
}

func validPoint(lon, lat float64) bool {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

func tag(tags map[string]string, key string) string {
	v, ok := tags[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
