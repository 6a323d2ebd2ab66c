package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"order-cache/src/cache"
	"order-cache/src/handlers"
	"order-cache/src/logger"
	"order-cache/src/routes"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()

	cfg := cache.ConfigFromEnv()
	log.Info().
		Int("store_capacity", cfg.StoreCapacity).
		Int("index_capacity", cfg.IndexCapacity).
		Uint64("max_slot", cfg.MaxSlot).
		Msg("Initializing Order Cache")

	orderCache := cache.New(cfg).WithLogger(logger.Component("cache"))
	orderHandler := handlers.NewOrderHandler(orderCache)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}

			log.Error().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("status", code).
				Str("error", err.Error()).
				Msg("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	routes.SetupRoutes(app, orderHandler)

	port := ":8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = ":" + envPort
	}

	serverError := make(chan error, 1)

	go func() {
		if err := app.Listen(port); err != nil {
			serverError <- err
		}
	}()

	log.Info().
		Str("port", port).
		Strs("endpoints", []string{
			"POST   /api/v1/orders",
			"GET    /api/v1/orders",
			"GET    /api/v1/orders/:id",
			"DELETE /api/v1/orders/:id",
			"DELETE /api/v1/users/:user/orders",
			"DELETE /api/v1/securities/:security/orders?min_qty=N",
			"GET    /api/v1/securities/:security/matching-size",
			"GET    /api/v1/securities/:security/snapshot",
			"GET    /health",
			"GET    /metrics",
			"GET    /metrics/prometheus",
		}).
		Msg("Order Cache starting")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverError:
		log.Fatal().
			Err(err).
			Str("port", port).
			Str("hint", "Port may be already in use. Try: PORT=3000 go run main.go").
			Msg("Server failed to start")
	case <-quit:
		log.Info().Msg("Received shutdown signal, shutting down...")
	}

	shutdownTimeout := 10 * time.Second
	if envTimeout := os.Getenv("SHUTDOWN_TIMEOUT"); envTimeout != "" {
		if parsed, err := time.ParseDuration(envTimeout); err == nil && parsed > 0 {
			shutdownTimeout = parsed
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		// edge case: timeout during shutdown is acceptable
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().
				Dur("timeout", shutdownTimeout).
				Msg("Timeout exceeded, shutting down...")
		} else {
			log.Error().
				Err(err).
				Msg("Error during shutdown")
		}
	} else {
		log.Info().Msg("Shutdown complete")
	}

	logger.CloseLogger()
}
