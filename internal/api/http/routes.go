// Package httpapi exposes the resolver and weather client over HTTP.
package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Stockholm-3/just-weather-server/internal/geo"
	"github.com/Stockholm-3/just-weather-server/internal/meteo"
)

var validate = validator.New()

// GeoResolver is the slice of the geo resolver the routes need.
type GeoResolver interface {
	SearchDetailed(ctx context.Context, q geo.Query) (geo.ResultSet, error)
	SearchSmartReadOnly(ctx context.Context, name string) (geo.ResultSet, geo.Tier, error)
	ClearCache() error
}

// WeatherClient is the slice of the weather client the routes need.
type WeatherClient interface {
	Current(ctx context.Context, lat, lon float64) (*meteo.Snapshot, error)
	ClearCache() error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, resolver GeoResolver, weather WeatherClient) {
	v1 := app.Group("/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		// Coordinates bypass geocoding entirely.
		if c.Query("lat") != "" || c.Query("lon") != "" {
			return weatherByCoords(c, weather)
		}
		return weatherByCity(c, resolver, weather)
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		var req citiesQuery
		req.Query = c.Query("q")
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Smart search in read-only cache mode: popular cities answer
		// from memory, and autocomplete lookups never create cache
		// entries for partial queries.
		set, tier, err := resolver.SearchSmartReadOnly(c.Context(), req.Query)
		if err != nil {
			return mapResolveError(err)
		}
		return c.JSON(fiber.Map{"results": set, "source": tier})
	})

	v1.Delete("/cache", func(c *fiber.Ctx) error {
		if err := resolver.ClearCache(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear geocoding cache")
		}
		if err := weather.ClearCache(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear weather cache")
		}
		return c.JSON(fiber.Map{"status": "cache cleared"})
	})
}

func weatherByCity(c *fiber.Ctx, resolver GeoResolver, weather WeatherClient) error {
	var req weatherQuery
	req.City = c.Query("city")
	req.Country = c.Query("country")
	req.Region = c.Query("region")
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	set, err := resolver.SearchDetailed(c.Context(), geo.Query{
		Name:    req.City,
		Country: req.Country,
		Region:  req.Region,
	})
	if err != nil {
		return mapResolveError(err)
	}

	best, ok := geo.BestMatch(set, req.Country)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no matching location found")
	}

	snap, err := weather.Current(c.Context(), best.Latitude, best.Longitude)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	}

	return c.JSON(fiber.Map{
		"location": best,
		"weather":  meteo.BuildResponse(snap),
	})
}

func weatherByCoords(c *fiber.Ctx, weather WeatherClient) error {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon must both be valid numbers")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fiber.NewError(fiber.StatusBadRequest, "coordinates out of range")
	}

	snap, err := weather.Current(c.Context(), lat, lon)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	}
	return c.JSON(fiber.Map{"weather": meteo.BuildResponse(snap)})
}

func mapResolveError(err error) error {
	if errors.Is(err, geo.ErrInvalidInput) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusBadGateway, "failed to resolve location")
}

// weatherQuery holds query parameters for the by-city weather endpoint.
type weatherQuery struct {
	City    string `validate:"required,min=2"`
	Country string `validate:"omitempty,min=2"`
	Region  string `validate:"omitempty,min=2"`
}

// citiesQuery holds query parameters for the autocomplete endpoint.
type citiesQuery struct {
	Query string `validate:"required,min=2"`
}
