// Package repository defines the persistence contracts consumed by the
// service layer. Implementations live in infra/repository.
package repository

import (
	"context"

	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/money"
	"github.com/google/uuid"
)

// SortOrder is a normalized sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListQuery carries normalized pagination and sorting. SortBy must be a
// column name already validated against the entity's whitelist.
type ListQuery struct {
	Limit  int
	Offset int
	SortBy string
	Order  SortOrder
}

// UserRepository persists users and resolves them together with their
// accounts.
type UserRepository interface {
	// Create inserts the user and any initial accounts in one statement
	// batch. A duplicate (user, kind) pair fails with
	// domain.ErrDuplicateAccountKind; a duplicate email fails with
	// domain.ErrAlreadyExists.
	Create(ctx context.Context, u *domain.User) error

	// GetByEmail resolves a user and all owned accounts.
	// Returns domain.ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AccountRepository persists accounts. Balance mutations exist only as the
// conditional delta operations used inside the orchestrator's atomic
// commit.
type AccountRepository interface {
	// Get resolves a single account.
	// Returns domain.ErrAccountNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// DebitBalance decrements the account balance if and only if the
	// resulting balance stays non-negative. Returns
	// domain.ErrInsufficientBalance when the guard fails. This conditional
	// decrement is the sole overdraw authority; any earlier balance check
	// is advisory.
	DebitBalance(ctx context.Context, id uuid.UUID, amount money.Money) error

	// CreditBalance increments the account balance.
	CreditBalance(ctx context.Context, id uuid.UUID, amount money.Money) error

	// ListByUser returns the user's accounts ordered and paginated per q.
	ListByUser(ctx context.Context, userID uuid.UUID, q ListQuery) ([]domain.Account, error)
}

// TransactionRepository persists transaction records.
type TransactionRepository interface {
	// Create inserts a transaction in its current (PENDING) state.
	Create(ctx context.Context, t *domain.Transaction) error

	// Get resolves a single transaction.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)

	// UpdateStatus transitions a transaction out of PENDING. Terminal
	// states are sticky: updating an already COMPLETED or CANCELLED
	// transaction is a no-op.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error

	// ListByAccount returns transactions where the account is the source
	// or the destination, ordered and paginated per q.
	ListByAccount(ctx context.Context, accountID uuid.UUID, q ListQuery) ([]domain.Transaction, error)
}
