// Package meteo resolves current weather for a coordinate pair through the
// Open-Meteo forecast API, with a short-TTL file cache in front of it.
package meteo

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/Stockholm-3/just-weather-server/internal/cache"
	"github.com/Stockholm-3/just-weather-server/internal/geo"
)

// DefaultBaseURL is the Open-Meteo current-weather endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// currentFields is the fixed field list requested from the origin.
const currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,is_day,precipitation,weather_code,surface_pressure,wind_speed_10m,wind_direction_10m"

// Config carries the weather client's immutable settings.
type Config struct {
	BaseURL  string
	CacheTTL time.Duration
	UseCache bool
}

// Client is the two-tier (cache → network) weather resolver. Like the geo
// resolver it serializes calls, one bridged fetch at a time.
type Client struct {
	mu      sync.Mutex
	cfg     Config
	store   *cache.Store
	fetcher geo.Fetcher
}

// NewClient wires a weather client.
func NewClient(cfg Config, store *cache.Store, fetcher geo.Fetcher) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{cfg: cfg, store: store, fetcher: fetcher}
}

// cacheKey addresses weather entries by coordinates rounded to a fixed
// precision, so nearby float noise maps to one entry.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("weather_%.6f_%.6f", lat, lon)
}

// Current returns the current weather at (lat, lon), serving from a fresh
// cache entry when one exists and fetching plus writing through otherwise.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.store.Path(cacheKey(lat, lon))

	if c.cfg.UseCache && c.store.Fresh(path, c.cfg.CacheTTL) {
		payload, err := c.store.Load(path)
		if err == nil {
			snap, perr := ParseSnapshot(payload, lat, lon)
			if perr == nil {
				log.Printf("[meteo] cache hit for %.6f,%.6f", lat, lon)
				return snap, nil
			}
			log.Printf("[meteo] cache entry unparseable, falling through: %v", perr)
		} else {
			log.Printf("[meteo] cache load failed, falling through: %v", err)
		}
	}

	body, _, err := c.fetcher.Fetch(ctx, c.buildURL(lat, lon))
	if err != nil {
		return nil, fmt.Errorf("weather fetch for %.6f,%.6f: %w", lat, lon, err)
	}
	snap, err := ParseSnapshot(body, lat, lon)
	if err != nil {
		return nil, err
	}

	if c.cfg.UseCache {
		if err := c.store.Save(path, body); err != nil {
			log.Printf("[meteo] cache write failed for %.6f,%.6f: %v", lat, lon, err)
		}
	}
	return snap, nil
}

func (c *Client) buildURL(lat, lon float64) string {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%.6f", lat))
	values.Set("longitude", fmt.Sprintf("%.6f", lon))
	values.Set("current", currentFields)
	values.Set("timezone", "GMT")
	return c.cfg.BaseURL + "?" + values.Encode()
}

// ClearCache removes every cached weather entry.
func (c *Client) ClearCache() error {
	return c.store.Clear()
}
