// Package registration provisions new users: a credential in the external
// identity directory plus the ledger's user and initial account rows. If
// ledger persistence fails after the directory identity was created, the
// identity is deleted again so no orphaned credential survives.
package registration

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/custodia/pkg/currency"
	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/money"
	"github.com/amirasaad/custodia/pkg/password"
	"github.com/amirasaad/custodia/pkg/provider"
	"github.com/amirasaad/custodia/pkg/repository"
	"github.com/google/uuid"
)

// InitialAccount describes an account opened together with the user.
type InitialAccount struct {
	Kind     domain.AccountKind
	Currency currency.Code
	Balance  float64
}

// Service registers users.
type Service struct {
	uow       repository.UnitOfWork
	directory provider.IdentityDirectory
	logger    *slog.Logger
}

// New creates a registration service.
func New(uow repository.UnitOfWork, directory provider.IdentityDirectory, logger *slog.Logger) *Service {
	return &Service{uow: uow, directory: directory, logger: logger}
}

// Register creates the directory identity and the ledger rows. The
// directory identity is the first side effect; any later failure triggers
// its best-effort deletion before the original error is returned.
func (s *Service) Register(
	ctx context.Context,
	email, pass string,
	accounts []InitialAccount,
) (u *domain.User, err error) {
	log := s.logger.With("operation", "register", "email", email)

	if !password.IsEmail(email) {
		return nil, domain.ErrInvalidEmail
	}

	u, err = s.buildUser(email, accounts)
	if err != nil {
		return nil, err
	}

	identityID, err := s.directory.CreateIdentity(ctx, email, pass)
	if err != nil {
		return nil, err
	}
	u.IdentityID = identityID

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return uow.UserRepository().Create(ctx, u)
	})
	if err != nil {
		s.rollbackIdentity(ctx, identityID, err)
		return nil, err
	}

	log.Info("user registered", "userID", u.ID, "accounts", len(u.Accounts))
	return u, nil
}

// buildUser assembles the user aggregate before any side effect happens.
func (s *Service) buildUser(email string, accounts []InitialAccount) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: now,
	}
	for _, spec := range accounts {
		code := spec.Currency
		if code == "" {
			code = currency.DefaultCurrency
		}
		balance, err := money.New(spec.Balance, code)
		if err != nil {
			return nil, err
		}
		if balance.IsNegative() {
			return nil, domain.ErrAmountMustBePositive
		}
		u.Accounts = append(u.Accounts, domain.Account{
			ID:        uuid.New(),
			UserID:    u.ID,
			Kind:      spec.Kind,
			Balance:   balance,
			CreatedAt: now,
		})
	}
	return u, nil
}

// rollbackIdentity deletes the orphaned directory identity. Best-effort:
// its own failure is logged and the persistence error stays the one the
// caller sees.
func (s *Service) rollbackIdentity(ctx context.Context, identityID string, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.directory.DeleteIdentity(ctx, identityID); err != nil {
		s.logger.Error("failed to roll back directory identity",
			"identityID", identityID,
			"cause", cause,
			"error", err,
		)
	}
}
