package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/Stockholm-3/just-weather-server/internal/api/http"
	"github.com/Stockholm-3/just-weather-server/internal/cache"
	"github.com/Stockholm-3/just-weather-server/internal/cities"
	"github.com/Stockholm-3/just-weather-server/internal/config"
	"github.com/Stockholm-3/just-weather-server/internal/fetch"
	"github.com/Stockholm-3/just-weather-server/internal/geo"
	"github.com/Stockholm-3/just-weather-server/internal/meteo"
	"github.com/Stockholm-3/just-weather-server/internal/warmer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	geoStore, err := cache.New(cfg.GeoCacheDir())
	if err != nil {
		log.Fatalf("failed to create geo cache: %v", err)
	}
	weatherStore, err := cache.New(cfg.WeatherCacheDir())
	if err != nil {
		log.Fatalf("failed to create weather cache: %v", err)
	}

	cityIndex, err := cities.NewIndex()
	if err != nil {
		log.Fatalf("failed to load city dataset: %v", err)
	}

	// One bridge per origin; each resolver serializes its own fetches.
	geoBridge := fetch.NewBridge(fetch.NewHTTPClient(nil, "geocoding"), cfg.FetchTimeout)
	weatherBridge := fetch.NewBridge(fetch.NewHTTPClient(nil, "openmeteo"), cfg.FetchTimeout)

	resolver := geo.NewResolver(geo.Config{
		CacheTTL:   cfg.GeoCacheTTL,
		UseCache:   cfg.CacheEnabled,
		MaxResults: cfg.MaxResults,
		Language:   cfg.Language,
	}, geoStore, geoBridge, cityIndex)

	weather := meteo.NewClient(meteo.Config{
		CacheTTL: cfg.WeatherCacheTTL,
		UseCache: cfg.CacheEnabled,
	}, weatherStore, weatherBridge)

	warm := warmer.New(cfg.WarmCities, cfg.WarmInterval, resolver, weather)
	if err := warm.Start(); err != nil {
		log.Fatalf("failed to start cache warmer: %v", err)
	}
	defer warm.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "just-weather-server",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "just-weather-server",
		})
	})

	httpapi.RegisterRoutes(app, resolver, weather)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
