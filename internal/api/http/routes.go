package httpapi

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-logger/internal/store"
	"github.com/i474232898/weather-logger/internal/weather"
)

var validate = validator.New()

const serviceName = "weather-logger"

type Options struct {
	// DefaultLimit caps GET /api/v1/readings when no limit is given.
	DefaultLimit int
	// AccessLog receives fiber request logs; nil disables them.
	AccessLog io.Writer
}

// NewApp builds the Fiber app with middleware, health, metrics and the
// readings API.
func NewApp(service *weather.Service, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
	})

	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: opts.AccessLog}))
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	RegisterRoutes(app, service, opts)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the readings handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, opts Options) {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}

	v1 := app.Group("/api/v1")

	v1.Get("/readings", func(c *fiber.Ctx) error {
		var q readingsQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		units := q.units()
		if err := validate.Struct(units); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		limit := q.Limit
		if limit == 0 {
			limit = opts.DefaultLimit
		}
		readings, err := service.Find(c.UserContext(), weather.Query{
			Limit:          limit,
			CityContains:   q.City,
			DateStartsWith: q.Date,
		})
		if err != nil {
			return toHTTPError(err)
		}

		views := make([]readingView, 0, len(readings))
		for _, r := range readings {
			views = append(views, newReadingView(r, units))
		}
		return c.JSON(fiber.Map{
			"units":    units,
			"count":    len(views),
			"readings": views,
		})
	})

	v1.Get("/readings/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id must be a positive integer")
		}

		var q unitsQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		units := q.units()
		if err := validate.Struct(units); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		r, err := service.Get(c.UserContext(), int64(id))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(newReadingView(r, units))
	})

	v1.Post("/readings", func(c *fiber.Ctx) error {
		var req logRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var (
			r   weather.Reading
			err error
		)
		if strings.TrimSpace(req.City) == "" {
			r, err = service.LogCurrent(c.UserContext())
		} else {
			r, err = service.LogByCity(c.UserContext(), req.City)
		}
		if err != nil {
			return toHTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(newReadingView(r, weather.DefaultUnits()))
	})
}

// toHTTPError maps service failures onto status codes.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "reading not found")
	case errors.Is(err, weather.ErrEmptyCity):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	switch weather.KindOf(err) {
	case weather.KindEmptyResult:
		return fiber.NewError(fiber.StatusNotFound, "no location matches the requested city")
	case weather.KindNetwork, weather.KindMalformedResponse:
		return fiber.NewError(fiber.StatusBadGateway, "weather provider unavailable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to access weather logs")
	}
}
