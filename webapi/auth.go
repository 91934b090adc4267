package webapi

import (
	"context"
	"log/slog"

	"github.com/amirasaad/custodia/pkg/currency"
	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/service/registration"
	"github.com/gofiber/fiber/v2"
)

// RegistrationService is the slice of the registration service the HTTP
// layer needs.
type RegistrationService interface {
	Register(ctx context.Context, email, pass string, accounts []registration.InitialAccount) (*domain.User, error)
}

// AuthService is the slice of the auth service the HTTP layer needs.
type AuthService interface {
	Login(ctx context.Context, email, pass string) (string, error)
}

// InitialAccountRequest is one account to open alongside registration.
type InitialAccountRequest struct {
	Kind     string  `json:"type" validate:"required,oneof=debit credit"`
	Currency string  `json:"currency" validate:"omitempty,alpha,len=3"`
	Balance  float64 `json:"balance" validate:"omitempty,gte=0"`
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email    string                  `json:"email" validate:"required,email"`
	Password string                  `json:"password" validate:"required,min=6"`
	Accounts []InitialAccountRequest `json:"accounts" validate:"omitempty,dive"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterUser handles POST /auth/register.
func RegisterUser(svc RegistrationService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[RegisterRequest](c)
		if req == nil {
			return err
		}

		accounts := make([]registration.InitialAccount, 0, len(req.Accounts))
		for _, a := range req.Accounts {
			accounts = append(accounts, registration.InitialAccount{
				Kind:     domain.AccountKind(a.Kind),
				Currency: currency.Code(a.Currency),
				Balance:  a.Balance,
			})
		}

		user, err := svc.Register(c.UserContext(), req.Email, req.Password, accounts)
		if err != nil {
			logger.Warn("registration failed", "email", req.Email, "error", err)
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "User registered", fiber.Map{
			"id":    user.ID,
			"email": user.Email,
		})
	}
}

// LoginUser handles POST /auth/login.
func LoginUser(svc AuthService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[LoginRequest](c)
		if req == nil {
			return err
		}

		token, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			logger.Warn("login failed", "email", req.Email, "error", err)
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Login successful", fiber.Map{
			"token": token,
		})
	}
}
