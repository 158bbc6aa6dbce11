package overpass

// AllCategories is the sentinel that selects every known category.
const AllCategories = "ALL"

// Category pairs a category name with its Overpass QL filter statements.
// The rule is opaque to the query builder; it is spliced into the query as is.
type Category struct {
	Name string
	Rule string
}

// CategoryTable is a versioned name → rule lookup.
type CategoryTable struct {
	Version    string
	Categories []Category
}

// DefaultCategories is the table used by the ingestion service.
var DefaultCategories = CategoryTable{
	Version: "2024-06",
	Categories: []Category{
		{Name: "RUINS", Rule: `nwr["historic"="ruins"];nwr["ruins"]["ruins"!="no"];nwr["building"="ruins"];`},
		{Name: "MUSEUMS", Rule: `nwr["tourism"="museum"];nw["tourism"="gallery"];nw["amenity"="arts_centre"];`},
		{Name: "ARCHAELOGICAL_SITE", Rule: `nwr["historic"="archaeological_site"];nwr["geological"="palaeontological_site"];`},
		{Name: "MONUMENT", Rule: `nwr["historic"="monument"];`},
		{Name: "TOURIST_ATTRACTION", Rule: `nwr["tourism"="attraction"]["attraction"!="animal"]["attraction"!="maze"];nwr["tourism"="yes"];nwr["heritage"];`},
		{Name: "ARTWORK", Rule: `nwr["tourism"="artwork"];`},
		{Name: "HISTORY", Rule: `nwr["historic"="castle"][!"ruins"];nwr["historic"="castle"]["ruins"="no"];nwr["historic"="tower"][!"ruins"];nwr["historic"="tower"]["ruins"="no"];nwr["historic"="fort"][!"ruins"];nwr["historic"="fort"]["ruins"="no"];`},
	},
}

// Resolve returns the categories selected by names in table order.
// AllCategories selects the whole table; unknown names are dropped.
func (t CategoryTable) Resolve(names []string) []Category {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == AllCategories {
			out := make([]Category, len(t.Categories))
			copy(out, t.Categories)
			return out
		}
		wanted[n] = struct{}{}
	}

	var out []Category
	for _, c := range t.Categories {
		if _, ok := wanted[c.Name]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Names lists every category name in table order.
func (t CategoryTable) Names() []string {
	names := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		names[i] = c.Name
	}
	return names
}
