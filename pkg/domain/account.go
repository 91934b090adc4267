package domain

import (
	"time"

	"github.com/amirasaad/custodia/pkg/money"
	"github.com/google/uuid"
)

// AccountKind classifies an account, e.g. "debit" or "credit".
// A user may hold at most one account of each kind.
type AccountKind string

// Built-in account kinds. The set is extensible; uniqueness per user is
// enforced by the store regardless of the kind's value.
const (
	AccountKindDebit  AccountKind = "debit"
	AccountKindCredit AccountKind = "credit"
)

// Account is a user's currency-denominated balance.
//
// Invariants:
//   - Balance is never negative after a committed transaction.
//   - Only the transfer orchestrator's atomic commit mutates the balance.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      AccountKind
	Balance   money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks the request-time invariants for taking amount out of
// the account. The balance check here is advisory; the conditional
// decrement inside the atomic commit is the authority.
func (a *Account) ValidateDebit(userID uuid.UUID, amount money.Money) error {
	if a.UserID != userID {
		return ErrNotOwner
	}
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	enough, err := a.Balance.GreaterThanOrEqual(amount)
	if err != nil {
		return err
	}
	if !enough {
		return ErrInsufficientBalance
	}
	return nil
}
