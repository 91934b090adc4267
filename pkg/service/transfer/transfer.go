// Package transfer implements the transaction orchestrator: the state
// machine that validates a transfer request, creates the PENDING record,
// awaits external settlement, applies the atomic balance commit and runs
// compensation when any step after record creation fails.
//
// Per-transaction steps are strictly sequential (create → settle → commit).
// The orchestrator keeps no mutable state of its own; all shared state
// lives behind the repository contracts.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/custodia/pkg/cache"
	"github.com/amirasaad/custodia/pkg/currency"
	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/money"
	"github.com/amirasaad/custodia/pkg/provider"
	"github.com/amirasaad/custodia/pkg/repository"
	"github.com/google/uuid"
)

// Identity is the authenticated caller, as yielded by token verification.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Service orchestrates SEND and WITHDRAW operations.
type Service struct {
	uow           repository.UnitOfWork
	settlement    provider.SettlementProvider
	listings      cache.AccountListingCache
	settleTimeout time.Duration
	logger        *slog.Logger
}

// New creates the orchestrator. listings may be nil when no side cache is
// configured.
func New(
	uow repository.UnitOfWork,
	settlement provider.SettlementProvider,
	listings cache.AccountListingCache,
	settleTimeout time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:           uow,
		settlement:    settlement,
		listings:      listings,
		settleTimeout: settleTimeout,
		logger:        logger,
	}
}

// Send moves amount (in the source account's currency) from one of the
// caller's accounts to the destination account, converting into the
// destination currency. The converted amount is recorded on the
// transaction as the authoritative settlement amount; the commit debits
// the source by the original amount and credits the destination by the
// converted amount.
func (s *Service) Send(
	ctx context.Context,
	caller Identity,
	amount float64,
	fromAccountID, toAccountID uuid.UUID,
) (*domain.Transaction, error) {
	log := s.logger.With(
		"operation", "send",
		"userID", caller.UserID,
		"fromAccountID", fromAccountID,
		"toAccountID", toAccountID,
	)

	if fromAccountID == toAccountID {
		return nil, domain.ErrSelfTransfer
	}

	dest, err := s.uow.AccountRepository().Get(ctx, toAccountID)
	if err != nil {
		return nil, err
	}

	src, err := s.callerAccount(ctx, caller, fromAccountID)
	if err != nil {
		return nil, err
	}

	// Convert once, before sufficiency is enforced. The conversion result
	// is what settles and what the destination is credited with.
	conv, err := currency.Convert(amount, src.Balance.Currency(), dest.Balance.Currency())
	if err != nil {
		return nil, err
	}
	srcAmount, err := money.New(amount, src.Balance.Currency())
	if err != nil {
		return nil, err
	}
	converted, err := money.NewRounded(conv.ConvertedAmount, dest.Balance.Currency())
	if err != nil {
		return nil, err
	}

	// Advisory pre-check for fast failure; the conditional decrement in
	// the commit below is the overdraw authority.
	if err = src.ValidateDebit(caller.UserID, srcAmount); err != nil {
		return nil, err
	}

	tx := domain.NewPendingSend(src.ID, dest.ID, converted, srcAmount)
	if err = s.uow.TransactionRepository().Create(ctx, tx); err != nil {
		return nil, err
	}
	log = log.With("transactionID", tx.ID)

	if err = s.settle(ctx, tx); err != nil {
		s.compensate(ctx, tx, err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.AccountRepository().DebitBalance(ctx, src.ID, srcAmount); err != nil {
			return err
		}
		if err := uow.AccountRepository().CreditBalance(ctx, dest.ID, converted); err != nil {
			return err
		}
		return uow.TransactionRepository().UpdateStatus(ctx, tx.ID, domain.TransactionStatusCompleted)
	})
	if err != nil {
		s.compensate(ctx, tx, err)
		return nil, err
	}

	tx.Status = domain.TransactionStatusCompleted
	s.invalidateListings(ctx, caller.Email)
	log.Info("send completed", "amount", srcAmount.String(), "converted", converted.String())
	return tx, nil
}

// Withdraw pays amount (in the account's currency) out of one of the
// caller's accounts to an external destination. Same state machine as Send
// minus the destination leg and the conversion.
func (s *Service) Withdraw(
	ctx context.Context,
	caller Identity,
	amount float64,
	accountID uuid.UUID,
) (*domain.Transaction, error) {
	log := s.logger.With(
		"operation", "withdraw",
		"userID", caller.UserID,
		"accountID", accountID,
	)

	src, err := s.callerAccount(ctx, caller, accountID)
	if err != nil {
		return nil, err
	}

	withdrawal, err := money.New(amount, src.Balance.Currency())
	if err != nil {
		return nil, err
	}
	if err = src.ValidateDebit(caller.UserID, withdrawal); err != nil {
		return nil, err
	}

	tx := domain.NewPendingWithdraw(src.ID, withdrawal)
	if err = s.uow.TransactionRepository().Create(ctx, tx); err != nil {
		return nil, err
	}
	log = log.With("transactionID", tx.ID)

	if err = s.settle(ctx, tx); err != nil {
		s.compensate(ctx, tx, err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.AccountRepository().DebitBalance(ctx, src.ID, withdrawal); err != nil {
			return err
		}
		return uow.TransactionRepository().UpdateStatus(ctx, tx.ID, domain.TransactionStatusCompleted)
	})
	if err != nil {
		s.compensate(ctx, tx, err)
		return nil, err
	}

	tx.Status = domain.TransactionStatusCompleted
	s.invalidateListings(ctx, caller.Email)
	log.Info("withdraw completed", "amount", withdrawal.String())
	return tx, nil
}

// callerAccount resolves the caller and locates the account among the
// caller's own accounts. Ownership is never inferred from the request
// body alone.
func (s *Service) callerAccount(ctx context.Context, caller Identity, accountID uuid.UUID) (*domain.Account, error) {
	user, err := s.uow.UserRepository().GetByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	account := user.AccountByID(accountID)
	if account == nil {
		return nil, domain.ErrNotOwner
	}
	return account, nil
}

// settle invokes the external settlement step, bounded by the configured
// timeout. A timeout is a settlement failure like any other.
func (s *Service) settle(ctx context.Context, tx *domain.Transaction) error {
	if s.settleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settleTimeout)
		defer cancel()
	}
	if err := s.settlement.Settle(ctx, tx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSettlementFailed, err)
	}
	return nil
}

// compensate cancels a PENDING transaction after settlement or commit
// failed. Best-effort: a failure here is logged and never masks cause.
// A transaction left in PENDING is picked up by out-of-band
// reconciliation.
func (s *Service) compensate(ctx context.Context, tx *domain.Transaction, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.uow.TransactionRepository().UpdateStatus(ctx, tx.ID, domain.TransactionStatusCancelled); err != nil {
		s.logger.Error("failed to cancel pending transaction",
			"transactionID", tx.ID,
			"cause", cause,
			"error", err,
		)
		return
	}
	tx.Status = domain.TransactionStatusCancelled
}

// invalidateListings drops the caller's cached account listings after a
// committed mutation. The counterparty's listings age out via TTL.
func (s *Service) invalidateListings(ctx context.Context, email string) {
	if s.listings == nil {
		return
	}
	if err := s.listings.InvalidateUser(ctx, email); err != nil {
		s.logger.Warn("failed to invalidate account listings", "error", err)
	}
}
