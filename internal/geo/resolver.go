package geo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Stockholm-3/just-weather-server/internal/cache"
)

// DefaultBaseURL is the Open-Meteo geocoding search endpoint.
const DefaultBaseURL = "https://geocoding-api.open-meteo.com/v1/search"

// MinQueryLen is the shortest query the resolver accepts. Shorter input is
// the caller's fault, rejected before any tier is consulted.
const MinQueryLen = 2

// ErrInvalidInput reports an empty or too-short query.
var ErrInvalidInput = errors.New("invalid query")

// Fetcher is the blocking fetch contract the resolver issues network
// requests through. *fetch.Bridge satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, int, error)
}

// Config carries the resolver's immutable settings.
type Config struct {
	BaseURL    string
	CacheTTL   time.Duration
	UseCache   bool
	MaxResults int
	Language   string
}

// Resolver orchestrates the memory, cache and network tiers for geocoding.
// Calls are serialized internally: the underlying bridge allows one
// outstanding request at a time.
type Resolver struct {
	mu      sync.Mutex
	cfg     Config
	store   *cache.Store
	fetcher Fetcher
	cities  CityIndex
}

// NewResolver wires a resolver. cities may be nil, which disables the
// memory tier.
func NewResolver(cfg Config, store *cache.Store, fetcher Fetcher, cities CityIndex) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Resolver{cfg: cfg, store: store, fetcher: fetcher, cities: cities}
}

// Search resolves q through the cache tier with write-through on network
// fallback. The memory tier is not consulted; use SearchSmart for that.
func (r *Resolver) Search(ctx context.Context, q Query) (ResultSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validateName(q.Name); err != nil {
		return nil, err
	}
	return r.searchCached(ctx, q.Name, q.Country, r.cfg.UseCache)
}

// SearchNoCache resolves q directly against the network, reading and
// writing no cache entries.
func (r *Resolver) SearchNoCache(ctx context.Context, q Query) (ResultSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validateName(q.Name); err != nil {
		return nil, err
	}
	set, _, err := r.fetchRemote(ctx, q.Name, q.Country)
	return set, err
}

// SearchSmart resolves name through all three tiers: popular cities in
// memory, then a fresh cache entry, then the network with write-through.
// The returned Tier names the source that answered.
func (r *Resolver) SearchSmart(ctx context.Context, name string) (ResultSet, Tier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.searchSmart(ctx, name, r.cfg.UseCache)
}

// SearchSmartReadOnly is the autocomplete variant of SearchSmart: the same
// tier ordering, but the network fallback writes nothing back, so partial
// queries never pollute the shared cache.
func (r *Resolver) SearchSmartReadOnly(ctx context.Context, name string) (ResultSet, Tier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.searchSmart(ctx, name, false)
}

func (r *Resolver) searchSmart(ctx context.Context, name string, writeThrough bool) (ResultSet, Tier, error) {
	if err := validateName(name); err != nil {
		return nil, "", err
	}

	if r.cities != nil {
		if hits := r.cities.Search(name, r.cfg.MaxResults); len(hits) > 0 {
			log.Printf("[geo] %q: %d results from popular cities", name, len(hits))
			return cityResults(hits), TierMemory, nil
		}
	}

	if set, ok := r.readCache(name); ok && len(set) > 0 {
		log.Printf("[geo] %q: %d results from cache", name, len(set))
		return set, TierCache, nil
	}

	set, err := r.searchNetwork(ctx, name, "", writeThrough)
	if err != nil {
		return nil, "", err
	}
	return set, TierNetwork, nil
}

// SearchDetailed is Search plus a region-filter pass over the results.
func (r *Resolver) SearchDetailed(ctx context.Context, q Query) (ResultSet, error) {
	set, err := r.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if q.Region == "" {
		return set, nil
	}
	return FilterRegion(set, q.Region), nil
}

// searchCached is the cache→network path shared by Search and SearchSmart's
// lower tiers. useCache gates both the read and the write-through.
func (r *Resolver) searchCached(ctx context.Context, name, country string, useCache bool) (ResultSet, error) {
	if useCache {
		path := r.store.Path(cache.NormalizeKey(name))
		if r.store.Fresh(path, r.cfg.CacheTTL) {
			payload, err := r.store.Load(path)
			if err == nil {
				set, perr := ParseResults(payload)
				if perr == nil {
					return set, nil
				}
				log.Printf("[geo] cache entry unparseable, falling through: %v", perr)
			} else {
				log.Printf("[geo] cache load failed, falling through: %v", err)
			}
		}
	}
	return r.searchNetwork(ctx, name, country, useCache)
}

// readCache returns a parsed fresh cache entry, or ok=false on miss, stale
// or corrupt entries. Cache problems only ever mean "try the next tier".
func (r *Resolver) readCache(name string) (ResultSet, bool) {
	if !r.cfg.UseCache {
		return nil, false
	}
	path := r.store.Path(cache.NormalizeKey(name))
	if !r.store.Fresh(path, r.cfg.CacheTTL) {
		return nil, false
	}
	payload, err := r.store.Load(path)
	if err != nil {
		return nil, false
	}
	set, err := ParseResults(payload)
	if err != nil {
		return nil, false
	}
	return set, true
}

// searchNetwork fetches from the origin and, when writeThrough is set,
// persists the raw body so a later cache hit parses identically to a live
// response. A failed cache write is logged and swallowed; caching is an
// optimization, never a reason to fail a resolution.
func (r *Resolver) searchNetwork(ctx context.Context, name, country string, writeThrough bool) (ResultSet, error) {
	set, raw, err := r.fetchRemote(ctx, name, country)
	if err != nil {
		return nil, err
	}
	if writeThrough {
		path := r.store.Path(cache.NormalizeKey(name))
		if err := r.store.Save(path, raw); err != nil {
			log.Printf("[geo] cache write failed for %q: %v", name, err)
		}
	}
	return set, nil
}

func (r *Resolver) fetchRemote(ctx context.Context, name, country string) (ResultSet, []byte, error) {
	body, _, err := r.fetcher.Fetch(ctx, r.buildURL(name, country))
	if err != nil {
		return nil, nil, fmt.Errorf("geocoding fetch for %q: %w", name, err)
	}
	set, err := ParseResults(body)
	if err != nil {
		return nil, nil, err
	}
	return set, body, nil
}

func (r *Resolver) buildURL(name, country string) string {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", strconv.Itoa(r.cfg.MaxResults))
	values.Set("language", r.cfg.Language)
	values.Set("format", "json")
	if country != "" {
		values.Set("country", country)
	}
	return r.cfg.BaseURL + "?" + values.Encode()
}

// ClearCache removes every cached geocoding entry.
func (r *Resolver) ClearCache() error {
	return r.store.Clear()
}

func validateName(name string) error {
	if len(strings.TrimSpace(name)) < MinQueryLen {
		return fmt.Errorf("%w: need at least %d characters", ErrInvalidInput, MinQueryLen)
	}
	return nil
}
