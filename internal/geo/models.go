// Package geo resolves free-text place queries into coordinates through a
// three-tier lookup: in-memory popular cities, the file cache, and the
// Open-Meteo geocoding API.
package geo

// PopulationUnknown marks a result whose population the origin did not
// report. Distinct from an explicit zero.
const PopulationUnknown int64 = -1

// Query is one resolution request. Country and Region are optional filters.
type Query struct {
	Name    string
	Country string
	Region  string
}

// Result is a single geocoding match, normalized from the origin's shape.
type Result struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1,omitempty"`
	Admin2      string  `json:"admin2,omitempty"`
	Population  int64   `json:"population,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
}

// ResultSet preserves the origin's ordering. An empty set is a valid
// outcome, distinct from a failed resolution.
type ResultSet []Result

// Tier names the source a resolution was answered from.
type Tier string

const (
	TierMemory  Tier = "memory"
	TierCache   Tier = "cache"
	TierNetwork Tier = "network"
)

// City is one record of the popular-cities dataset. The resolver only reads
// these.
type City struct {
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Population  int64   `json:"population"`
}

// CityIndex is the opaque lookup capability over the popular-cities
// dataset. Implementations must be safe for concurrent reads.
type CityIndex interface {
	Search(query string, max int) []City
}

func cityResults(cities []City) ResultSet {
	set := make(ResultSet, 0, len(cities))
	for _, c := range cities {
		set = append(set, Result{
			Name:        c.Name,
			Country:     c.Country,
			CountryCode: c.CountryCode,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
			Population:  c.Population,
		})
	}
	return set
}
