package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/money"
	"github.com/amirasaad/custodia/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository bound to db.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	// Inserting the user model with its accounts persists both in one
	// batch; the unique (user_id, kind) index rejects duplicate kinds.
	if err := r.db.WithContext(ctx).Create(toUserModel(u)).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m User
	err := r.db.WithContext(ctx).Preload("Accounts").Where("email = ?", email).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, mapError(err)
	}
	return m.toDomain()
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository bound to db.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, mapError(err)
	}
	return m.toDomain()
}

func (r *accountRepository) DebitBalance(ctx context.Context, id uuid.UUID, amount money.Money) error {
	// The balance >= amount guard re-validates sufficiency at commit time.
	// Concurrent debits against the same account serialize on the row
	// lock; the loser sees the reduced balance and fails here instead of
	// overdrawing.
	res := r.db.WithContext(ctx).Model(&Account{}).
		Where("id = ? AND balance >= ?", id, amount.Amount()).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", amount.Amount()),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *accountRepository) CreditBalance(ctx context.Context, id uuid.UUID, amount money.Money) error {
	res := r.db.WithContext(ctx).Model(&Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", amount.Amount()),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID, q repository.ListQuery) ([]domain.Account, error) {
	var models []Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(orderClause(q)).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&models).Error
	if err != nil {
		return nil, mapError(err)
	}
	accounts := make([]domain.Account, 0, len(models))
	for i := range models {
		a, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, nil
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository bound to db.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	if err := r.db.WithContext(ctx).Create(toTransactionModel(t)).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var m Transaction
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, mapError(err)
	}
	return m.toDomain()
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	// Only PENDING rows transition. Terminal states are sticky, so a
	// repeated compensation or a late completion attempt is a no-op.
	res := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ? AND status = ?", id, string(domain.TransactionStatusPending)).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return mapError(res.Error)
	}
	return nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, q repository.ListQuery) ([]domain.Transaction, error) {
	var models []Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ? OR to_account_id = ?", accountID, accountID).
		Order(orderClause(q)).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&models).Error
	if err != nil {
		return nil, mapError(err)
	}
	transactions := make([]domain.Transaction, 0, len(models))
	for i := range models {
		t, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, nil
}

// orderClause renders the normalized sort. SortBy is whitelist-validated
// by the query service before it gets here.
func orderClause(q repository.ListQuery) string {
	return fmt.Sprintf("%s %s", q.SortBy, q.Order)
}
