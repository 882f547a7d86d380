// Package cities provides the in-memory popular-cities dataset consumed by
// the geo resolver's memory tier. The dataset ships embedded in the binary
// and is read-only.
package cities

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/Stockholm-3/just-weather-server/internal/geo"
)

//go:embed cities.json
var cityData []byte

// Index answers bounded text lookups over the embedded city table. It is
// immutable after construction and safe for concurrent reads.
type Index struct {
	cities []geo.City
}

// NewIndex parses the embedded dataset.
func NewIndex() (*Index, error) {
	var cities []geo.City
	if err := json.Unmarshal(cityData, &cities); err != nil {
		return nil, fmt.Errorf("load embedded city dataset: %w", err)
	}
	return &Index{cities: cities}, nil
}

// maxDistance bounds how fuzzy a match may be. One edit tolerates the most
// common typo class without matching unrelated names.
const maxDistance = 1

// Search returns up to max cities matching query. Exact name matches rank
// first, then prefix matches, then near matches within one edit; within a
// rank, larger cities come first.
func (ix *Index) Search(query string, max int) []geo.City {
	if max <= 0 {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	type scored struct {
		city geo.City
		rank int
	}
	var hits []scored

	for _, c := range ix.cities {
		name := strings.ToLower(c.Name)
		switch {
		case name == q:
			hits = append(hits, scored{c, 0})
		case strings.HasPrefix(name, q):
			hits = append(hits, scored{c, 1})
		default:
			if d := levenshtein.ComputeDistance(name, q); d <= maxDistance {
				hits = append(hits, scored{c, 1 + d})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return hits[i].city.Population > hits[j].city.Population
	})

	if len(hits) > max {
		hits = hits[:max]
	}
	out := make([]geo.City, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.city)
	}
	return out
}
