package types

// AttractionSummary is the projection sent to the generative service. It
// never includes previously generated content.
type AttractionSummary struct {
	ExternalID  int64        `json:"osm_id"`
	Name        string       `json:"name,omitempty"`
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Categories  []string     `json:"categories,omitempty"`
}

func SummaryOf(a Attraction) AttractionSummary {
	return AttractionSummary{
		ExternalID:  a.ExternalID,
		Name:        a.Name,
		Address:     a.Address,
		Coordinates: a.Coordinates,
		Categories:  a.Categories,
	}
}

type GeneratedDescription struct {
	ExternalID  int64  `json:"osm_id"`
	Description string `json:"description"`
}

type TourMember struct {
	ExternalID int64  `json:"osm_id"`
	Name       string `json:"name"`
}

type TourSuggestion struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Attractions []TourMember `json:"attraction_ids"`
}

// NarrationRequest describes one spoken-tour script to generate. Stops
// lists every stop name of the tour in visiting order.
type NarrationRequest struct {
	Attraction      Attraction
	Article         string
	Language        Language
	TourTitle       string
	TourDescription string
	Stops           []string
}
