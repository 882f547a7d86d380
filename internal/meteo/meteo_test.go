package meteo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Stockholm-3/just-weather-server/internal/cache"
)

const sampleWeather = `{
  "latitude": 59.329,
  "longitude": 18.069,
  "current_units": {
    "temperature_2m": "°F",
    "wind_speed_10m": "mph"
  },
  "current": {
    "temperature_2m": 41.5,
    "relative_humidity_2m": 82,
    "apparent_temperature": 38.1,
    "is_day": 1,
    "precipitation": 0.3,
    "weather_code": 61,
    "surface_pressure": 1004.2,
    "wind_speed_10m": 12.7,
    "wind_direction_10m": 275
  }
}`

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, int, error) {
	f.calls++
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.body, 200, nil
}

func newTestClient(t *testing.T, fetcher *fakeFetcher) (*Client, *cache.Store) {
	t.Helper()
	store, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(Config{CacheTTL: 15 * time.Minute, UseCache: true}, store, fetcher), store
}

func TestParseSnapshotUnitsVerbatim(t *testing.T) {
	snap, err := ParseSnapshot([]byte(sampleWeather), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.TemperatureUnit != "°F" || snap.WindSpeedUnit != "mph" {
		t.Errorf("units not preserved verbatim: %q %q", snap.TemperatureUnit, snap.WindSpeedUnit)
	}
	if snap.Temperature != 41.5 || snap.WeatherCode != 61 || !snap.IsDay {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	// Coordinates come from the envelope when present.
	if snap.Latitude != 59.329 || snap.Longitude != 18.069 {
		t.Errorf("coordinates: %f,%f", snap.Latitude, snap.Longitude)
	}
}

func TestParseSnapshotDefaultUnits(t *testing.T) {
	body := `{"current":{"temperature_2m":10.0,"wind_speed_10m":5.0}}`
	snap, err := ParseSnapshot([]byte(body), 1.5, 2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.TemperatureUnit != DefaultTemperatureUnit || snap.WindSpeedUnit != DefaultWindSpeedUnit {
		t.Errorf("default units: %q %q", snap.TemperatureUnit, snap.WindSpeedUnit)
	}
	// Envelope lacks coordinates; the request's are kept.
	if snap.Latitude != 1.5 || snap.Longitude != 2.5 {
		t.Errorf("coordinates: %f,%f", snap.Latitude, snap.Longitude)
	}
}

func TestParseSnapshotMissingCurrent(t *testing.T) {
	for _, body := range []string{`{}`, `{"current_units":{}}`, `nope`} {
		if _, err := ParseSnapshot([]byte(body), 0, 0); err == nil {
			t.Errorf("ParseSnapshot(%q) accepted malformed payload", body)
		}
	}
}

func TestCurrentWriteThroughAndCacheHit(t *testing.T) {
	ff := &fakeFetcher{body: []byte(sampleWeather)}
	c, _ := newTestClient(t, ff)

	first, err := c.Current(context.Background(), 59.329, 18.069)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ff.calls != 1 {
		t.Fatalf("expected one fetch, got %d", ff.calls)
	}

	// Second call must come from the cache; break the fetcher to prove it.
	ff.err = errors.New("network must not be used")
	second, err := c.Current(context.Background(), 59.329, 18.069)
	if err != nil {
		t.Fatalf("cache hit failed: %v", err)
	}
	if second.Temperature != first.Temperature || second.TemperatureUnit != first.TemperatureUnit {
		t.Errorf("cache round trip changed data: %+v vs %+v", second, first)
	}
}

func TestCurrentCoordinateRounding(t *testing.T) {
	// Coordinates equal at six decimals share one cache entry.
	ff := &fakeFetcher{body: []byte(sampleWeather)}
	c, _ := newTestClient(t, ff)

	if _, err := c.Current(context.Background(), 59.3293800001, 18.0687100001); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Current(context.Background(), 59.3293800002, 18.0687100002); err != nil {
		t.Fatal(err)
	}
	if ff.calls != 1 {
		t.Errorf("expected one fetch for equivalent coordinates, got %d", ff.calls)
	}
}

func TestCurrentNetworkFailure(t *testing.T) {
	ff := &fakeFetcher{err: errors.New("connection refused")}
	c, _ := newTestClient(t, ff)

	if _, err := c.Current(context.Background(), 1, 2); err == nil {
		t.Fatal("network failure did not surface")
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(0); got != "Clear sky" {
		t.Errorf("Describe(0) = %q", got)
	}
	if got := Describe(95); got != "Thunderstorm" {
		t.Errorf("Describe(95) = %q", got)
	}
	if got := Describe(42); got != "Unknown" {
		t.Errorf("Describe(42) = %q", got)
	}
}

func TestWindDirectionName(t *testing.T) {
	cases := []struct {
		deg  int
		want string
	}{
		{0, "North"},
		{349, "North"},
		{11, "North"},
		{45, "Northeast"},
		{90, "East"},
		{180, "South"},
		{270, "West"},
		{292, "West-Northwest"},
		{315, "Northwest"},
		{-90, "West"},
		{450, "East"},
	}
	for _, c := range cases {
		if got := WindDirectionName(c.deg); got != c.want {
			t.Errorf("WindDirectionName(%d) = %q, want %q", c.deg, got, c.want)
		}
	}
}

func TestBuildResponse(t *testing.T) {
	snap, err := ParseSnapshot([]byte(sampleWeather), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	resp := BuildResponse(snap)
	if resp.WeatherDescription != "Slight rain" {
		t.Errorf("description = %q", resp.WeatherDescription)
	}
	if resp.WindDirectionName != "West" {
		t.Errorf("wind name = %q", resp.WindDirectionName)
	}
}
