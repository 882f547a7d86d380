package geo

import "testing"

func TestFilterRegion(t *testing.T) {
	set := ResultSet{
		{Name: "Springfield", Admin1: "Illinois"},
		{Name: "Springfield", Admin1: "Missouri"},
		{Name: "Springfield", Admin1: "South Dakota"},
	}

	got := FilterRegion(set, "Missouri")
	if len(got) != 1 || got[0].Admin1 != "Missouri" {
		t.Errorf("FilterRegion(Missouri) = %+v", got)
	}

	// Separator normalization: underscores and pluses read as spaces.
	got = FilterRegion(set, "South_Dakota")
	if len(got) != 1 || got[0].Admin1 != "South Dakota" {
		t.Errorf("FilterRegion(South_Dakota) = %+v", got)
	}
	got = FilterRegion(set, "south+dakota")
	if len(got) != 1 || got[0].Admin1 != "South Dakota" {
		t.Errorf("FilterRegion(south+dakota) = %+v", got)
	}

	// Admin2 counts too.
	set2 := ResultSet{{Name: "X", Admin2: "Pepin"}}
	if got := FilterRegion(set2, "pepin"); len(got) != 1 {
		t.Errorf("FilterRegion admin2 = %+v", got)
	}
}

func TestFilterRegionNoMatchReturnsUnfiltered(t *testing.T) {
	set := ResultSet{
		{Name: "Springfield", Admin1: "Illinois"},
		{Name: "Springfield", Admin1: "Missouri"},
	}
	got := FilterRegion(set, "Bavaria")
	if len(got) != len(set) {
		t.Fatalf("non-matching filter returned %d results, want the original %d", len(got), len(set))
	}
}

func TestBestMatchCountryCode(t *testing.T) {
	set := ResultSet{
		{Name: "A", CountryCode: "US", Population: 500},
		{Name: "B", CountryCode: "US", Population: 9000000},
		{Name: "C", CountryCode: "SE", Population: 99000000},
	}
	best, ok := BestMatch(set, "US")
	if !ok || best.Name != "B" {
		t.Errorf("BestMatch = %+v, want the 9000000-population US entry", best)
	}

	// Case-insensitive code match.
	best, ok = BestMatch(set, "us")
	if !ok || best.Name != "B" {
		t.Errorf("BestMatch(us) = %+v", best)
	}
}

func TestBestMatchCountryName(t *testing.T) {
	set := ResultSet{
		{Name: "A", Country: "Sweden", Population: 100},
		{Name: "B", Country: "United States", Population: 900},
	}
	best, ok := BestMatch(set, "sweden")
	if !ok || best.Name != "A" {
		t.Errorf("BestMatch(sweden) = %+v", best)
	}

	// Substring match on country names.
	best, ok = BestMatch(set, "United")
	if !ok || best.Name != "B" {
		t.Errorf("BestMatch(United) = %+v", best)
	}
}

func TestBestMatchFallbacks(t *testing.T) {
	// No country preference: highest population wins.
	set := ResultSet{
		{Name: "A", Population: 100},
		{Name: "B", Population: 5000},
		{Name: "C", Population: 300},
	}
	if best, _ := BestMatch(set, ""); best.Name != "B" {
		t.Errorf("BestMatch no-country = %+v", best)
	}

	// Preferred country with no match falls back to global max.
	if best, _ := BestMatch(set, "FR"); best.Name != "B" {
		t.Errorf("BestMatch unmatched country = %+v", best)
	}

	// All populations unknown: first element wins.
	unknown := ResultSet{
		{Name: "First", Population: PopulationUnknown},
		{Name: "Second", Population: PopulationUnknown},
	}
	if best, _ := BestMatch(unknown, ""); best.Name != "First" {
		t.Errorf("BestMatch all-unknown = %+v", best)
	}

	// Population tie keeps the earliest entry.
	tie := ResultSet{
		{Name: "First", CountryCode: "US", Population: 42},
		{Name: "Second", CountryCode: "US", Population: 42},
	}
	if best, _ := BestMatch(tie, "US"); best.Name != "First" {
		t.Errorf("BestMatch tie = %+v", best)
	}

	if _, ok := BestMatch(ResultSet{}, "US"); ok {
		t.Error("BestMatch reported a result for an empty set")
	}
}
