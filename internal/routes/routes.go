// Package routes defines the API routing configuration.
package routes

import (
	"time"

	"ledgerpay/internal/handlers"
	"ledgerpay/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Wallet *handlers.WalletHandler
	Charge *handlers.ChargeHandler
	Health *handlers.HealthHandler
}

// SetupRoutes configures all application routes. ackRateLimit caps
// acknowledgment attempts per IP per minute; zero disables the limiter.
func SetupRoutes(app *fiber.App, h Handlers, ackRateLimit int) {
	app.Get("/health", h.Health.HealthCheck)

	app.Get("/balance", h.Wallet.GetBalance)
	app.Get("/history", h.Wallet.GetHistory)

	app.Post("/charge", h.Charge.CreateCharge)

	ack := []fiber.Handler{}
	if ackRateLimit > 0 {
		ack = append(ack, middleware.RateLimit(ackRateLimit, time.Minute))
	}
	ack = append(ack, h.Charge.AcknowledgeCharge)
	app.Post("/charge_ack", ack...)
}
