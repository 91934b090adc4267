package domain

import (
	"time"

	"github.com/amirasaad/custodia/pkg/currency"
	"github.com/amirasaad/custodia/pkg/money"
	"github.com/google/uuid"
)

// TransactionType identifies the kind of money movement.
type TransactionType string

const (
	// TransactionTypeSend is an internal transfer between two accounts.
	TransactionTypeSend TransactionType = "SEND"
	// TransactionTypeWithdraw is an external payout from one account.
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
)

// TransactionStatus is the persisted state of a transaction.
// Transitions are one-directional: PENDING → COMPLETED or
// PENDING → CANCELLED. Both COMPLETED and CANCELLED are terminal.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// IsTerminal reports whether the status can no longer change.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled
}

// Transaction records a single money movement attempt.
//
// Amount carries the authoritative settlement amount: for a SEND this is
// the converted amount in the destination currency, so downstream balance
// math and conversion math never diverge. OriginalAmount keeps the
// source-currency amount for audit when a conversion occurred.
type Transaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	ToAccountID *uuid.UUID // destination, nil for WITHDRAW
	Amount      money.Money
	Type        TransactionType
	Status      TransactionStatus

	OriginalAmount *money.Money // nil when no conversion occurred

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPendingSend builds the PENDING record for an internal transfer.
func NewPendingSend(fromAccountID, toAccountID uuid.UUID, converted money.Money, original money.Money) *Transaction {
	tx := &Transaction{
		ID:          uuid.New(),
		AccountID:   fromAccountID,
		ToAccountID: &toAccountID,
		Amount:      converted,
		Type:        TransactionTypeSend,
		Status:      TransactionStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if original.Currency() != converted.Currency() {
		tx.OriginalAmount = &original
	}
	return tx
}

// NewPendingWithdraw builds the PENDING record for an external payout.
func NewPendingWithdraw(accountID uuid.UUID, amount money.Money) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Type:      TransactionTypeWithdraw,
		Status:    TransactionStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Currency returns the currency of the settlement amount.
func (t *Transaction) Currency() currency.Code {
	return t.Amount.Currency()
}
