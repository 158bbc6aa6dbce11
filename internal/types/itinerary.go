package types

import (
	"time"

	"github.com/google/uuid"
)

type Language string

const (
	LanguageEnglish Language = "en_US"
	LanguageRussian Language = "ru_RU"
)

var SupportedLanguages = map[Language]struct{}{
	LanguageEnglish: {},
	LanguageRussian: {},
}

// ParseLanguage returns the default language for an empty string.
func ParseLanguage(s string) (Language, bool) {
	if s == "" {
		return LanguageEnglish, true
	}
	l := Language(s)
	_, ok := SupportedLanguages[l]
	return l, ok
}

type ItineraryItem struct {
	AttractionID int64               `json:"attractionId"`
	Sequence     int                 `json:"sequence"`
	Name         string              `json:"name"`
	Coordinates  Coordinates         `json:"coordinates"`
	Description  string              `json:"description,omitempty"`
	Images       []string            `json:"images"`
	Duration     string              `json:"duration,omitempty"`
	IsLast       bool                `json:"isLast"`
	Text         map[Language]string `json:"text,omitempty"`
	Audio        map[Language]string `json:"audio,omitempty"`
}

type Itinerary struct {
	ID          uuid.UUID       `json:"id,omitempty"`
	UserID      string          `json:"-"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Duration    int             `json:"duration"`
	Distance    int             `json:"distance"`
	Route       []Coordinates   `json:"route"`
	Items       []ItineraryItem `json:"items"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

// Item returns the item for attractionID, or nil.
func (it *Itinerary) Item(attractionID int64) *ItineraryItem {
	for i := range it.Items {
		if it.Items[i].AttractionID == attractionID {
			return &it.Items[i]
		}
	}
	return nil
}

// Waypoint is the optimizer's visiting position for one submitted point.
type Waypoint struct {
	Index int
}

// OptimizedTrip is the route optimizer's answer for an ordered coordinate list.
type OptimizedTrip struct {
	DurationSeconds float64
	DistanceMeters  float64
	Geometry        []Coordinates
	Waypoints       []Waypoint
}

type CreateItineraryRequest struct {
	AttractionIDs    []int64 `json:"attractionIds"`
	StartPointCoords string  `json:"startPointCoords,omitempty"`
	Title            string  `json:"title,omitempty"`
}

type StoreItineraryRequest struct {
	Itinerary Itinerary `json:"itinerary"`
}

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

type AudioResponse struct {
	Language Language `json:"language"`
	Audio    string   `json:"audio"`
}
