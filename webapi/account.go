package webapi

import (
	"context"
	"log/slog"

	"github.com/amirasaad/custodia/pkg/dto"
	"github.com/amirasaad/custodia/pkg/service/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// QueryService is the slice of the query service the HTTP layer needs.
type QueryService interface {
	ListAccounts(ctx context.Context, caller transfer.Identity, limit, skip, sortBy, order string) ([]dto.AccountRead, error)
	ListAccountTransactions(ctx context.Context, caller transfer.Identity, accountID uuid.UUID, limit, skip, sortBy, order string) ([]dto.TransactionRead, error)
}

// ListAccounts handles GET /accounts.
func ListAccounts(svc QueryService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := CallerIdentity(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}

		accounts, err := svc.ListAccounts(
			c.UserContext(),
			caller,
			c.Query("limit"),
			c.Query("skip"),
			c.Query("sortBy"),
			c.Query("order"),
		)
		if err != nil {
			logger.Error("account listing failed", "userID", caller.UserID, "error", err)
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Accounts retrieved", accounts)
	}
}

// ListAccountTransactions handles GET /accounts/:id/transactions.
func ListAccountTransactions(svc QueryService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := CallerIdentity(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		accountID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}

		transactions, err := svc.ListAccountTransactions(
			c.UserContext(),
			caller,
			accountID,
			c.Query("limit"),
			c.Query("skip"),
			c.Query("sortBy"),
			c.Query("order"),
		)
		if err != nil {
			logger.Error("transaction listing failed",
				"userID", caller.UserID,
				"accountID", accountID,
				"error", err,
			)
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transactions retrieved", transactions)
	}
}
