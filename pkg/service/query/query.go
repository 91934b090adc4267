// Package query implements the ledger's read paths: account listings and
// per-account transaction history. Listings are read-through cached;
// nothing here ever mutates balances or transaction status.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/custodia/pkg/cache"
	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/dto"
	"github.com/amirasaad/custodia/pkg/repository"
	"github.com/amirasaad/custodia/pkg/service/transfer"
	"github.com/google/uuid"
)

// Service serves the ledger's read paths.
type Service struct {
	uow      repository.UnitOfWork
	listings cache.AccountListingCache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// New creates a query service. listings may be nil to disable caching.
func New(
	uow repository.UnitOfWork,
	listings cache.AccountListingCache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, listings: listings, cacheTTL: cacheTTL, logger: logger}
}

// ListAccounts returns the caller's own accounts, ordered and paginated.
// The result is cached per (email, pagination, sort) for the configured
// TTL; slightly stale listings are acceptable on this path.
func (s *Service) ListAccounts(
	ctx context.Context,
	caller transfer.Identity,
	limit, skip, sortBy, order string,
) ([]dto.AccountRead, error) {
	q := normalize(limit, skip, sortBy, order, accountSortFields)

	key := listingKey(caller.Email, q)
	if s.listings != nil {
		if cached, ok, err := s.listings.Get(ctx, key); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.logger.Warn("account listing cache read failed", "key", key, "error", err)
		}
	}

	user, err := s.uow.UserRepository().GetByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	accounts, err := s.uow.AccountRepository().ListByUser(ctx, user.ID, q)
	if err != nil {
		return nil, err
	}

	reads := make([]dto.AccountRead, 0, len(accounts))
	for i := range accounts {
		reads = append(reads, dto.NewAccountRead(&accounts[i]))
	}

	if s.listings != nil {
		if err := s.listings.Set(ctx, key, reads, s.cacheTTL); err != nil {
			s.logger.Warn("account listing cache write failed", "key", key, "error", err)
		}
	}
	return reads, nil
}

// ListAccountTransactions returns the transactions where the account is
// the source or the destination. The caller must own the account.
func (s *Service) ListAccountTransactions(
	ctx context.Context,
	caller transfer.Identity,
	accountID uuid.UUID,
	limit, skip, sortBy, order string,
) ([]dto.TransactionRead, error) {
	q := normalize(limit, skip, sortBy, order, transactionSortFields)

	account, err := s.uow.AccountRepository().Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != caller.UserID {
		return nil, domain.ErrNotOwner
	}

	transactions, err := s.uow.TransactionRepository().ListByAccount(ctx, accountID, q)
	if err != nil {
		return nil, err
	}
	reads := make([]dto.TransactionRead, 0, len(transactions))
	for i := range transactions {
		reads = append(reads, dto.NewTransactionRead(&transactions[i]))
	}
	return reads, nil
}

// listingKey builds the cache key for an account listing. The email
// segment is what InvalidateUser matches on.
func listingKey(email string, q repository.ListQuery) string {
	return fmt.Sprintf("accounts:%s:%d:%d:%s:%s", email, q.Limit, q.Offset, q.SortBy, q.Order)
}
