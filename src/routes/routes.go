package routes

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"order-cache/src/handlers"
	"order-cache/src/metrics"
	"order-cache/src/middleware"
)

func SetupRoutes(app *fiber.App, orderHandler *handlers.OrderHandler) {
	rateLimitDisabled := os.Getenv("RATE_LIMIT_DISABLED") == "1"

	maxRequests := 100
	if envMax := os.Getenv("RATE_LIMIT_MAX"); envMax != "" {
		if parsed, err := strconv.Atoi(envMax); err == nil && parsed > 0 {
			maxRequests = parsed
		}
	}

	windowDuration := time.Second
	if envWindow := os.Getenv("RATE_LIMIT_WINDOW"); envWindow != "" {
		if parsed, err := time.ParseDuration(envWindow); err == nil && parsed > 0 {
			windowDuration = parsed
		}
	}

	serviceAvailability := middleware.DefaultServiceAvailability()
	app.Use(serviceAvailability.Middleware())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	if !rateLimitDisabled {
		rateLimiter := middleware.NewRateLimiter(maxRequests, windowDuration)
		api.Use(rateLimiter.Middleware())
	}

	api.Post("/orders", orderHandler.SubmitOrder)
	api.Get("/orders", orderHandler.ListOrders)
	api.Get("/orders/:id", orderHandler.GetOrder)
	api.Delete("/orders/:id", orderHandler.CancelOrder)
	api.Delete("/users/:user/orders", orderHandler.CancelUserOrders)
	api.Delete("/securities/:security/orders", orderHandler.CancelSecurityOrders)
	api.Get("/securities/:security/matching-size", orderHandler.GetMatchingSize)
	api.Get("/securities/:security/snapshot", orderHandler.GetSnapshot)

	app.Get("/health", orderHandler.HealthCheck)
	app.Get("/metrics", orderHandler.Metrics)
	app.Get("/metrics/prometheus", adaptor.HTTPHandler(metrics.Handler()))
}
