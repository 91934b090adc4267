// Package repository implements the persistence contracts on GORM and
// Postgres.
package repository

import (
	"time"

	"github.com/amirasaad/custodia/pkg/currency"
	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/money"
	"github.com/google/uuid"
)

// User represents a user record in the database.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email      string    `gorm:"uniqueIndex:uni_users_email;not null;size:255"`
	IdentityID string    `gorm:"size:128"`
	Accounts   []Account
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Account represents an account record. The (user_id, kind) pair is
// unique: a user holds at most one account of each kind.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_user_kind"`
	Kind      string    `gorm:"size:32;not null;uniqueIndex:idx_accounts_user_kind"`
	Balance   int64     `gorm:"not null;default:0"`
	Currency  string    `gorm:"type:varchar(3);not null;default:'USD'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction represents a persisted transaction record. Amounts are in
// the smallest currency unit.
type Transaction struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccountID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ToAccountID *uuid.UUID `gorm:"type:uuid;index"`
	Amount      int64      `gorm:"not null"`
	Currency    string     `gorm:"type:varchar(3);not null"`
	Type        string     `gorm:"size:16;not null"`
	Status      string     `gorm:"size:16;not null;index"`

	// Audit fields, set when the settlement amount was converted.
	OriginalAmount   *int64
	OriginalCurrency *string `gorm:"type:varchar(3)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func toUserModel(u *domain.User) *User {
	m := &User{
		ID:         u.ID,
		Email:      u.Email,
		IdentityID: u.IdentityID,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	for i := range u.Accounts {
		m.Accounts = append(m.Accounts, *toAccountModel(&u.Accounts[i]))
	}
	return m
}

func toAccountModel(a *domain.Account) *Account {
	return &Account{
		ID:        a.ID,
		UserID:    a.UserID,
		Kind:      string(a.Kind),
		Balance:   a.Balance.Amount(),
		Currency:  a.Balance.Currency().String(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toTransactionModel(t *domain.Transaction) *Transaction {
	m := &Transaction{
		ID:          t.ID,
		AccountID:   t.AccountID,
		ToAccountID: t.ToAccountID,
		Amount:      t.Amount.Amount(),
		Currency:    t.Amount.Currency().String(),
		Type:        string(t.Type),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.OriginalAmount != nil {
		amount := t.OriginalAmount.Amount()
		curr := t.OriginalAmount.Currency().String()
		m.OriginalAmount = &amount
		m.OriginalCurrency = &curr
	}
	return m
}

func (m *User) toDomain() (*domain.User, error) {
	u := &domain.User{
		ID:         m.ID,
		Email:      m.Email,
		IdentityID: m.IdentityID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	for i := range m.Accounts {
		a, err := m.Accounts[i].toDomain()
		if err != nil {
			return nil, err
		}
		u.Accounts = append(u.Accounts, *a)
	}
	return u, nil
}

func (m *Account) toDomain() (*domain.Account, error) {
	balance, err := money.NewFromSmallestUnit(m.Balance, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		ID:        m.ID,
		UserID:    m.UserID,
		Kind:      domain.AccountKind(m.Kind),
		Balance:   balance,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (m *Transaction) toDomain() (*domain.Transaction, error) {
	amount, err := money.NewFromSmallestUnit(m.Amount, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	t := &domain.Transaction{
		ID:          m.ID,
		AccountID:   m.AccountID,
		ToAccountID: m.ToAccountID,
		Amount:      amount,
		Type:        domain.TransactionType(m.Type),
		Status:      domain.TransactionStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.OriginalAmount != nil && m.OriginalCurrency != nil {
		original, err := money.NewFromSmallestUnit(*m.OriginalAmount, currency.Code(*m.OriginalCurrency))
		if err != nil {
			return nil, err
		}
		t.OriginalAmount = &original
	}
	return t, nil
}
