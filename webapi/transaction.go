package webapi

import (
	"context"
	"log/slog"

	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/dto"
	"github.com/amirasaad/custodia/pkg/service/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TransferService is the slice of the transaction orchestrator the HTTP
// layer needs.
type TransferService interface {
	Send(ctx context.Context, caller transfer.Identity, amount float64, fromAccountID, toAccountID uuid.UUID) (*domain.Transaction, error)
	Withdraw(ctx context.Context, caller transfer.Identity, amount float64, accountID uuid.UUID) (*domain.Transaction, error)
}

// SendRequest is the payload for POST /transactions/send.
type SendRequest struct {
	FromAccountID string  `json:"fromAccountId" validate:"required,uuid4"`
	ToAccountID   string  `json:"toAccountId" validate:"required,uuid4"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
}

// WithdrawRequest is the payload for POST /transactions/withdraw.
type WithdrawRequest struct {
	AccountID string  `json:"accountId" validate:"required,uuid4"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

// Send handles POST /transactions/send.
func Send(svc TransferService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := CallerIdentity(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		req, err := BindAndValidate[SendRequest](c)
		if req == nil {
			return err
		}
		fromID, err := uuid.Parse(req.FromAccountID)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid source account id", err.Error())
		}
		toID, err := uuid.Parse(req.ToAccountID)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid destination account id", err.Error())
		}

		tx, err := svc.Send(c.UserContext(), caller, req.Amount, fromID, toID)
		if err != nil {
			logger.Warn("send failed",
				"userID", caller.UserID,
				"fromAccountID", fromID,
				"toAccountID", toID,
				"error", err,
			)
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Transfer completed", dto.NewTransactionRead(tx))
	}
}

// Withdraw handles POST /transactions/withdraw.
func Withdraw(svc TransferService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := CallerIdentity(c)
		if err != nil {
			return DomainErrorJSON(c, err)
		}
		req, err := BindAndValidate[WithdrawRequest](c)
		if req == nil {
			return err
		}
		accountID, err := uuid.Parse(req.AccountID)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}

		tx, err := svc.Withdraw(c.UserContext(), caller, req.Amount, accountID)
		if err != nil {
			logger.Warn("withdraw failed",
				"userID", caller.UserID,
				"accountID", accountID,
				"error", err,
			)
			return DomainErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Withdrawal completed", dto.NewTransactionRead(tx))
	}
}
