package overpass

// Element is one raw observation returned by the Overpass interpreter.
// Nodes carry Lat/Lon; ways and relations carry a Center when queried with
// "out center".
type Element struct {
	ID         int64             `json:"id"`
	Type       string            `json:"type"`
	Lat        *float64          `json:"lat,omitempty"`
	Lon        *float64          `json:"lon,omitempty"`
	Center     *Center           `json:"center,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
	Categories []string          `json:"-"`
}

type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type response struct {
	Elements []Element `json:"elements"`
}

// Deduplicate collapses elements sharing an id into the first-seen one,
// appending categories observed on later duplicates. Output keeps first-seen
// order.
func Deduplicate(elements []Element) []Element {
	index := make(map[int64]int, len(elements))
	out := make([]Element, 0, len(elements))

	for _, e := range elements {
		i, seen := index[e.ID]
		if !seen {
			e.Categories = appendUnique(nil, e.Categories...)
			index[e.ID] = len(out)
			out = append(out, e)
			continue
		}
		out[i].Categories = appendUnique(out[i].Categories, e.Categories...)
	}
	return out
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
