// Package webapi exposes the ledger over HTTP: registration, login and
// the protected account and transaction routes. Handlers stay thin; all
// rules live in the service layer.
package webapi

import (
	"log/slog"
	"time"

	"github.com/amirasaad/custodia/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Services groups everything the HTTP layer depends on.
type Services struct {
	Registration RegistrationService
	Auth         AuthService
	Transfer     TransferService
	Query        QueryService
}

// NewApp builds the Fiber application and mounts all routes.
func NewApp(svcs Services, cfg config.Jwt, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Default to 500 if status code cannot be determined
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Custodia is up 🚀")
	})

	auth := app.Group("/auth")
	auth.Post("/register", RegisterUser(svcs.Registration, logger))
	auth.Post("/login", LoginUser(svcs.Auth, logger))

	protected := JwtProtected(cfg)

	accounts := app.Group("/accounts", protected)
	accounts.Get("/", ListAccounts(svcs.Query, logger))
	accounts.Get("/:id/transactions", ListAccountTransactions(svcs.Query, logger))

	transactions := app.Group("/transactions", protected)
	transactions.Post("/send", Send(svcs.Transfer, logger))
	transactions.Post("/withdraw", Withdraw(svcs.Transfer, logger))

	return app
}
