// Package dto holds the read models returned by the query service and the
// HTTP layer. Amounts are in main currency units.
package dto

import (
	"time"

	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/google/uuid"
)

// AccountRead is the listing shape for an account.
type AccountRead struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"type"`
	Currency  string    `json:"currency"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransactionRead is the listing shape for a transaction.
type TransactionRead struct {
	ID             uuid.UUID  `json:"id"`
	AccountID      uuid.UUID  `json:"accountId"`
	ToAccountID    *uuid.UUID `json:"toAddress,omitempty"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	OriginalAmount *float64   `json:"originalAmount,omitempty"`
	OriginalCurr   *string    `json:"originalCurrency,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// NewAccountRead maps a domain account to its read model.
func NewAccountRead(a *domain.Account) AccountRead {
	return AccountRead{
		ID:        a.ID,
		Kind:      string(a.Kind),
		Currency:  a.Balance.Currency().String(),
		Balance:   a.Balance.AmountFloat(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// NewTransactionRead maps a domain transaction to its read model.
func NewTransactionRead(t *domain.Transaction) TransactionRead {
	r := TransactionRead{
		ID:          t.ID,
		AccountID:   t.AccountID,
		ToAccountID: t.ToAccountID,
		Amount:      t.Amount.AmountFloat(),
		Currency:    t.Amount.Currency().String(),
		Type:        string(t.Type),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
	}
	if t.OriginalAmount != nil {
		amount := t.OriginalAmount.AmountFloat()
		curr := t.OriginalAmount.Currency().String()
		r.OriginalAmount = &amount
		r.OriginalCurr = &curr
	}
	return r
}
