package geo

import (
	"encoding/json"
	"fmt"
)

// rawResult mirrors one record of the origin's results array. Pointer fields
// distinguish absent optional values from zero values.
type rawResult struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1"`
	Admin2      string  `json:"admin2"`
	Population  *int64  `json:"population"`
	Timezone    string  `json:"timezone"`
}

type rawEnvelope struct {
	Results []rawResult `json:"results"`
}

// ParseResults maps an origin (or cached) geocoding payload into a
// ResultSet. A payload without a results array, or with an empty one, is a
// valid empty set. Malformed JSON is a parse failure.
func ParseResults(body []byte) (ResultSet, error) {
	var envelope rawEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse geocoding response: %w", err)
	}

	set := make(ResultSet, 0, len(envelope.Results))
	for _, raw := range envelope.Results {
		r := Result{
			ID:          raw.ID,
			Name:        raw.Name,
			Latitude:    raw.Latitude,
			Longitude:   raw.Longitude,
			Country:     raw.Country,
			CountryCode: raw.CountryCode,
			Admin1:      raw.Admin1,
			Admin2:      raw.Admin2,
			Population:  PopulationUnknown,
			Timezone:    raw.Timezone,
		}
		if raw.Population != nil {
			r.Population = *raw.Population
		}
		set = append(set, r)
	}
	return set, nil
}
