package meteo

import (
	"encoding/json"
	"fmt"
	"time"
)

// Default unit strings used when the origin omits its units substructure.
const (
	DefaultTemperatureUnit = "°C"
	DefaultWindSpeedUnit   = "km/h"
)

// Snapshot is a normalized current-weather reading. Unit strings are taken
// verbatim from the origin's current_units object, never assumed.
type Snapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Temperature   float64   `json:"temperature"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection int       `json:"wind_direction"`
	Precipitation float64   `json:"precipitation"`
	Humidity      float64   `json:"humidity"`
	Pressure      float64   `json:"surface_pressure"`
	WeatherCode   int       `json:"weather_code"`
	IsDay         bool      `json:"is_day"`

	TemperatureUnit string `json:"temperature_unit"`
	WindSpeedUnit   string `json:"wind_speed_unit"`
}

type rawCurrent struct {
	Temperature   float64 `json:"temperature_2m"`
	Humidity      float64 `json:"relative_humidity_2m"`
	IsDay         int     `json:"is_day"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weather_code"`
	Pressure      float64 `json:"surface_pressure"`
	WindSpeed     float64 `json:"wind_speed_10m"`
	WindDirection int     `json:"wind_direction_10m"`
}

type rawUnits struct {
	Temperature string `json:"temperature_2m"`
	WindSpeed   string `json:"wind_speed_10m"`
}

type rawWeather struct {
	Latitude  *float64    `json:"latitude"`
	Longitude *float64    `json:"longitude"`
	Current   *rawCurrent `json:"current"`
	Units     *rawUnits   `json:"current_units"`
}

// ParseSnapshot maps an origin (or cached) weather payload into a Snapshot.
// A payload without a current object is malformed. Missing units fall back
// to the canonical defaults.
func ParseSnapshot(body []byte, lat, lon float64) (*Snapshot, error) {
	var raw rawWeather
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse weather response: %w", err)
	}
	if raw.Current == nil {
		return nil, fmt.Errorf("parse weather response: missing current object")
	}

	snap := &Snapshot{
		Timestamp:       time.Now().UTC(),
		Latitude:        lat,
		Longitude:       lon,
		Temperature:     raw.Current.Temperature,
		WindSpeed:       raw.Current.WindSpeed,
		WindDirection:   raw.Current.WindDirection,
		Precipitation:   raw.Current.Precipitation,
		Humidity:        raw.Current.Humidity,
		Pressure:        raw.Current.Pressure,
		WeatherCode:     raw.Current.WeatherCode,
		IsDay:           raw.Current.IsDay != 0,
		TemperatureUnit: DefaultTemperatureUnit,
		WindSpeedUnit:   DefaultWindSpeedUnit,
	}

	if raw.Latitude != nil {
		snap.Latitude = *raw.Latitude
	}
	if raw.Longitude != nil {
		snap.Longitude = *raw.Longitude
	}
	if raw.Units != nil {
		if raw.Units.Temperature != "" {
			snap.TemperatureUnit = raw.Units.Temperature
		}
		if raw.Units.WindSpeed != "" {
			snap.WindSpeedUnit = raw.Units.WindSpeed
		}
	}
	return snap, nil
}

// Response is the API envelope for a snapshot, enriched with human-readable
// weather and wind descriptions.
type Response struct {
	Snapshot
	WeatherDescription string `json:"weather_description"`
	WindDirectionName  string `json:"wind_direction_name"`
}

// BuildResponse wraps a snapshot with its derived description fields.
func BuildResponse(snap *Snapshot) Response {
	return Response{
		Snapshot:           *snap,
		WeatherDescription: Describe(snap.WeatherCode),
		WindDirectionName:  WindDirectionName(snap.WindDirection),
	}
}
