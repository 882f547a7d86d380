// Package warmer keeps cache entries for a configured set of cities fresh
// by re-resolving them on a schedule through the normal write-through path.
// It never evicts anything; stale entries are simply superseded.
package warmer

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/Stockholm-3/just-weather-server/internal/geo"
	"github.com/Stockholm-3/just-weather-server/internal/meteo"
)

// Warmer periodically refreshes geocoding and weather entries for its
// cities. Refreshes run sequentially: the resolvers serialize on a single
// bridged fetch, so fanning out would only queue.
type Warmer struct {
	scheduler *gocron.Scheduler
	resolver  *geo.Resolver
	weather   *meteo.Client
	cities    []string
	interval  time.Duration
}

// New creates a Warmer for the given cities.
func New(cities []string, interval time.Duration, resolver *geo.Resolver, weather *meteo.Client) *Warmer {
	return &Warmer{
		scheduler: gocron.NewScheduler(time.UTC),
		resolver:  resolver,
		weather:   weather,
		cities:    cities,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the scheduler.
func (w *Warmer) Start() error {
	if len(w.cities) == 0 {
		log.Println("warmer: no cities configured; nothing to schedule")
		return nil
	}

	minutes := int(w.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := w.scheduler.Every(minutes).Minutes().Do(w.refreshAll)
	if err != nil {
		return err
	}

	w.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (w *Warmer) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}

func (w *Warmer) refreshAll() {
	log.Printf("warmer: refreshing %d cities", len(w.cities))

	for _, city := range w.cities {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		w.refresh(ctx, city)
		cancel()
	}
}

func (w *Warmer) refresh(ctx context.Context, city string) {
	set, err := w.resolver.Search(ctx, geo.Query{Name: city})
	if err != nil {
		log.Printf("warmer: geocode refresh failed for %q: %v", city, err)
		return
	}

	best, ok := geo.BestMatch(set, "")
	if !ok {
		log.Printf("warmer: no results for %q", city)
		return
	}

	if _, err := w.weather.Current(ctx, best.Latitude, best.Longitude); err != nil {
		log.Printf("warmer: weather refresh failed for %q: %v", city, err)
	}
}
