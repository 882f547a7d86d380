package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all process configuration. It is populated once by Load
// and treated as immutable afterwards; components take copies of the parts
// they need instead of reading globals.
type AppConfig struct {
	Port string

	// CacheDir is the root under which the geo and weather caches live.
	CacheDir     string
	CacheEnabled bool

	GeoCacheTTL     time.Duration
	WeatherCacheTTL time.Duration

	// MaxResults and Language parametrize geocoding origin requests.
	MaxResults int
	Language   string

	// FetchTimeout bounds a single bridged network fetch.
	FetchTimeout time.Duration

	// WarmCities, when non-empty, are refreshed periodically by the cache
	// warmer at WarmInterval.
	WarmCities   []string
	WarmInterval time.Duration
}

// GeoCacheDir returns the geocoding cache subdirectory.
func (c *AppConfig) GeoCacheDir() string {
	return filepath.Join(c.CacheDir, "geo_cache")
}

// WeatherCacheDir returns the weather cache subdirectory.
func (c *AppConfig) WeatherCacheDir() string {
	return filepath.Join(c.CacheDir, "weather_cache")
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:         getenvDefault("PORT", "8080"),
		CacheDir:     getenvDefault("CACHE_DIR", "./cache"),
		CacheEnabled: getenvBool("CACHE_ENABLED", true),
		MaxResults:   getenvInt("MAX_RESULTS", 10),
		Language:     getenvDefault("RESULT_LANGUAGE", "en"),
	}

	var err error
	if cfg.GeoCacheTTL, err = getenvDuration("GEO_CACHE_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.WeatherCacheTTL, err = getenvDuration("WEATHER_CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	if cfg.MaxResults <= 0 {
		return nil, fmt.Errorf("MAX_RESULTS must be positive")
	}

	if warm := os.Getenv("WARM_CITIES"); warm != "" {
		for _, city := range strings.Split(warm, ",") {
			if city = strings.TrimSpace(city); city != "" {
				cfg.WarmCities = append(cfg.WarmCities, city)
			}
		}
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

// getenvDuration parses a Go duration string, additionally accepting a bare
// integer as seconds for compatibility with older deployments.
func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
