package types

// ChangeKind tells the upsert stage whether an attraction must be written in
// the current ingestion run. It is never persisted.
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeInsert
	ChangeUpdate
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeInsert:
		return "insert"
	case ChangeUpdate:
		return "update"
	default:
		return "none"
	}
}

// Attraction is the canonical point of interest, keyed by the geodata
// source's element id. Empty strings mean the field is unset.
type Attraction struct {
	ExternalID       int64        `json:"osm_id"`
	Name             string       `json:"name,omitempty"`
	Coordinates      *Coordinates `json:"coordinates,omitempty"`
	Address          string       `json:"address,omitempty"`
	Categories       []string     `json:"categories"`
	Description      string       `json:"description,omitempty"`
	Wikidata         string       `json:"wikidata,omitempty"`
	Wikipedia        string       `json:"wikipedia,omitempty"`
	WikipediaContent string       `json:"-"`
	Wikimedia        string       `json:"wikimedia,omitempty"`
	Images           []string     `json:"images"`
	Website          string       `json:"website,omitempty"`
	ChangeKind       ChangeKind   `json:"-"`
}

// MarkDirty flags the attraction for persistence. New records stay inserts.
func (a *Attraction) MarkDirty() {
	if a.ChangeKind != ChangeInsert {
		a.ChangeKind = ChangeUpdate
	}
}

// IsDirty reports whether the upsert stage must write the attraction.
func (a *Attraction) IsDirty() bool {
	return a.ChangeKind != ChangeNone
}

// AttractionFilter narrows a store listing. Zero values match everything.
type AttractionFilter struct {
	BBox     *BBox
	Category string
	Limit    int
}

// IngestAreaRequest is the body of the explicit-area ingestion endpoint.
type IngestAreaRequest struct {
	Polygon    Polygon  `json:"polygon"`
	Categories []string `json:"categories"`
}

// Place is one geocoder candidate.
type Place struct {
	FullAddress string       `json:"full_address"`
	Name        string       `json:"name,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}
