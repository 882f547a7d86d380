package geo

import "strings"

// FilterRegion keeps results whose admin1 or admin2 fields contain the
// region token as a case-insensitive substring. Underscore and plus in the
// token are treated as spaces, so "South_Dakota" matches "South Dakota".
// When nothing matches, the unfiltered set is returned instead: a wrong
// filter must never turn existing data into an empty answer.
func FilterRegion(set ResultSet, region string) ResultSet {
	if region == "" || len(set) == 0 {
		return set
	}

	token := strings.ToLower(strings.NewReplacer("_", " ", "+", " ").Replace(region))

	filtered := make(ResultSet, 0, len(set))
	for _, r := range set {
		if (r.Admin1 != "" && strings.Contains(strings.ToLower(r.Admin1), token)) ||
			(r.Admin2 != "" && strings.Contains(strings.ToLower(r.Admin2), token)) {
			filtered = append(filtered, r)
		}
	}

	if len(filtered) == 0 {
		return set
	}
	return filtered
}

// BestMatch picks the single best result for a preferred country. Country
// code equality wins first, then country name equality or substring match,
// then the highest population overall; population ties keep the earliest
// result. Returns false only for an empty set.
func BestMatch(set ResultSet, country string) (Result, bool) {
	if len(set) == 0 {
		return Result{}, false
	}

	if country != "" {
		if best, ok := maxPopulation(set, func(r Result) bool {
			return r.CountryCode != "" && strings.EqualFold(r.CountryCode, country)
		}); ok {
			return best, true
		}
		if best, ok := maxPopulation(set, func(r Result) bool {
			return r.Country != "" &&
				(strings.EqualFold(r.Country, country) ||
					strings.Contains(strings.ToLower(r.Country), strings.ToLower(country)))
		}); ok {
			return best, true
		}
	}

	best, _ := maxPopulation(set, func(Result) bool { return true })
	return best, true
}

func maxPopulation(set ResultSet, match func(Result) bool) (Result, bool) {
	var best Result
	found := false
	for _, r := range set {
		if !match(r) {
			continue
		}
		if !found || r.Population > best.Population {
			best = r
			found = true
		}
	}
	return best, found
}
