package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/DietLens/scan-service/config"
	"github.com/DietLens/scan-service/internal/core/allergens"
	"github.com/DietLens/scan-service/internal/core/products"
	"github.com/DietLens/scan-service/internal/core/scans"
	"github.com/DietLens/scan-service/pkg/telemetry"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogfiber "github.com/samber/slog-fiber"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"log/slog"
)

var (
	httpRequestsCounter  api.Int64Counter
	httpRequestHistogram api.Float64Histogram
)

func initHttpMetrics(provider *metric.MeterProvider) {
	meter := provider.Meter("scan-service-http")

	counter, err := meter.Int64Counter("http_requests_total",
		api.WithDescription("Total number of HTTP requests"))
	if err != nil {
		slog.Error("failed to create http requests counter", slog.String("error", err.Error()))
	} else {
		httpRequestsCounter = counter
	}

	histogram, err := meter.Float64Histogram("http_request_duration_ms",
		api.WithDescription("HTTP request duration in milliseconds"))
	if err != nil {
		slog.Error("failed to create http request histogram", slog.String("error", err.Error()))
	} else {
		httpRequestHistogram = histogram
	}
}

func initGlobalMiddlewares(app *fiber.App, cfg *config.Config) {
	app.Use(
		compress.New(compress.Config{
			Level: compress.LevelDefault,
		}),

		slogfiber.NewWithFilters(slog.Default(), slogfiber.IgnorePath("/health")),

		cors.New(cors.Config{
			AllowOrigins: "*", // TODO - add allowed origins
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID",
			AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		}),

		favicon.New(),
		limiter.New(limiter.Config{
			Max:               cfg.RateLimitMax,
			Expiration:        time.Duration(cfg.RateLimitWindow) * time.Second,
			LimiterMiddleware: limiter.SlidingWindow{},
		}),
	)

	app.Use(otelfiber.Middleware())
}

func registerHttpRoutes(app *fiber.App, s *Server) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "timestamp": time.Now().Unix()})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiRoutes := app.Group("/v1")

	apiRoutes.Post("/scans/:barcode", withMetrics(func(c *fiber.Ctx) error {
		userID := userIDFromHeader(c)

		result, err := s.scanService.Scan(c.UserContext(), userID, c.Params("barcode"))
		if err != nil {
			if errors.Is(err, scans.ErrBlankBarcode) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "barcode is blank"})
			}
			if errors.Is(err, products.ErrProductNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
			}
			slog.Error("scan failed",
				"component", "http_handler",
				"endpoint", "/v1/scans/:barcode",
				"error", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}

		return c.JSON(result)
	}))

	apiRoutes.Get("/scans", withMetrics(func(c *fiber.Ctx) error {
		userID := userIDFromHeader(c)
		if userID == uuid.Nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-User-ID header required"})
		}

		limit := c.QueryInt("limit", 50)
		entries, err := s.scanService.ListHistory(c.UserContext(), userID, limit)
		if err != nil {
			slog.Error("failed to list scan history",
				"component", "http_handler",
				"endpoint", "/v1/scans",
				"error", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		return c.JSON(fiber.Map{"scans": entries})
	}))

	apiRoutes.Get("/categories", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"categories": products.Categories})
	})

	apiRoutes.Get("/products", withMetrics(func(c *fiber.Ctx) error {
		tag := c.Query("category", products.CategoryAll.APITag)
		category, ok := products.CategoryByTag(tag)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown category"})
		}

		items, err := s.browser.Browse(c.UserContext(), category)
		if err != nil {
			slog.Error("failed to browse category",
				"component", "http_handler",
				"endpoint", "/v1/products",
				"category", category.APITag,
				"error", err.Error())
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream error"})
		}

		return c.JSON(fiber.Map{"category": category.APITag, "products": items})
	}))

	apiRoutes.Delete("/products", withMetrics(func(c *fiber.Ctx) error {
		tag := c.Query("category", products.CategoryAll.APITag)
		category, ok := products.CategoryByTag(tag)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown category"})
		}

		s.browser.Reset(c.UserContext(), category)
		return c.SendStatus(fiber.StatusNoContent)
	}))

	apiRoutes.Get("/products/search", withMetrics(func(c *fiber.Ctx) error {
		terms := strings.TrimSpace(c.Query("q"))
		if terms == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "q query parameter required"})
		}

		page := c.QueryInt("page", 1)
		items, err := s.productClient.SearchProducts(c.UserContext(), terms, page)
		if err != nil {
			slog.Error("product search failed",
				"component", "http_handler",
				"endpoint", "/v1/products/search",
				"error", err.Error())
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream error"})
		}

		return c.JSON(fiber.Map{"page": page, "products": items})
	}))

	apiRoutes.Get("/products/:barcode", withMetrics(func(c *fiber.Ctx) error {
		product, err := s.productClient.GetProductByBarcode(c.UserContext(), c.Params("barcode"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}

		var allergenTags, tracesTags string
		if product.Allergens != nil {
			allergenTags = *product.Allergens
		}
		if product.Traces != nil {
			tracesTags = *product.Traces
		}

		return c.JSON(fiber.Map{
			"product":    product,
			"tags":       products.DisplayTags(allergenTags, tracesTags),
			"nutriscore": product.LatestNutriscore(),
		})
	}))

	apiRoutes.Post("/products/:barcode/like", withMetrics(func(c *fiber.Ctx) error {
		userID := userIDFromHeader(c)
		if userID == uuid.Nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-User-ID header required"})
		}

		var body struct {
			ProductName *string `json:"product_name"`
			ImageURL    *string `json:"image_url"`
		}
		if err := c.BodyParser(&body); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}

		if err := s.scanService.Like(c.UserContext(), userID, c.Params("barcode"), body.ProductName, body.ImageURL); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}))

	apiRoutes.Delete("/products/:barcode/like", withMetrics(func(c *fiber.Ctx) error {
		userID := userIDFromHeader(c)
		if userID == uuid.Nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-User-ID header required"})
		}

		if err := s.scanService.Unlike(c.UserContext(), userID, c.Params("barcode")); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}))

	apiRoutes.Get("/products/:barcode/like", withMetrics(func(c *fiber.Ctx) error {
		userID := userIDFromHeader(c)
		if userID == uuid.Nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-User-ID header required"})
		}

		liked, err := s.scanService.IsLiked(c.UserContext(), userID, c.Params("barcode"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		return c.JSON(fiber.Map{"liked": liked})
	}))

	apiRoutes.Get("/products/liked/all", withMetrics(func(c *fiber.Ctx) error {
		userID := userIDFromHeader(c)
		if userID == uuid.Nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-User-ID header required"})
		}

		liked, err := s.scanService.ListLiked(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		return c.JSON(fiber.Map{"products": liked})
	}))

	apiRoutes.Get("/restaurants", withMetrics(func(c *fiber.Ctx) error {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
		if latErr != nil || lngErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat and lng query parameters required"})
		}

		places, err := s.restaurantsClient.NearbyRestaurants(c.UserContext(), lat, lng)
		if err != nil {
			slog.Error("restaurant lookup failed",
				"component", "http_handler",
				"endpoint", "/v1/restaurants",
				"error", err.Error())
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream error"})
		}

		return c.JSON(fiber.Map{"restaurants": places})
	}))

	apiRoutes.Get("/users/:id/allergies", withMetrics(func(c *fiber.Ctx) error {
		userID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}

		prefs, err := s.userService.GetAllergyPreferences(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		return c.JSON(prefs)
	}))

	apiRoutes.Put("/users/:id/allergies", withMetrics(func(c *fiber.Ctx) error {
		userID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}

		var prefs allergens.Preferences
		if err := c.BodyParser(&prefs); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}

		if err := s.userService.UpdateAllergyPreferences(c.UserContext(), userID, prefs); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}))

	apiRoutes.Put("/users/:id/name", withMetrics(func(c *fiber.Ctx) error {
		userID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}

		var body struct {
			DisplayName string `json:"display_name"`
		}
		if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.DisplayName) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "display_name required"})
		}

		if err := s.userService.UpdateDisplayName(c.UserContext(), userID, body.DisplayName); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}))
}

// userIDFromHeader reads the caller identity from X-User-ID. A missing or
// malformed header yields uuid.Nil, which downstream code treats as an
// anonymous caller.
func userIDFromHeader(c *fiber.Ctx) uuid.UUID {
	raw := c.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}

	return userID
}

func withMetrics(handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := handler(c)

		durationMs := float64(time.Since(start).Milliseconds())

		if httpRequestsCounter != nil {
			httpRequestsCounter.Add(c.UserContext(), 1,
				api.WithAttributes(
					attribute.String("method", c.Method()),
					attribute.String("path", c.Route().Path),
					attribute.Int("status_code", c.Response().StatusCode()),
				),
			)
		}

		if httpRequestHistogram != nil {
			httpRequestHistogram.Record(c.UserContext(), durationMs,
				api.WithAttributes(
					attribute.String("method", c.Method()),
					attribute.String("path", c.Route().Path),
					attribute.Int("status_code", c.Response().StatusCode()),
				),
			)
		}

		if telemetry.ApplicationErrorsTotal != nil && c.Response().StatusCode() >= 500 {
			telemetry.ApplicationErrorsTotal.Add(c.UserContext(), 1,
				api.WithAttributes(
					attribute.String("component", "http_handler"),
					attribute.String("path", c.Route().Path),
				),
			)
		}

		return err
	}
}
