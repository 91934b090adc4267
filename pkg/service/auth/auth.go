// Package auth verifies credentials against the identity directory and
// issues the bearer tokens the HTTP layer checks on protected routes.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/custodia/pkg/config"
	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/provider"
	"github.com/amirasaad/custodia/pkg/repository"
	"github.com/amirasaad/custodia/pkg/service/transfer"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Service issues and parses access tokens.
type Service struct {
	uow       repository.UnitOfWork
	directory provider.IdentityDirectory
	cfg       config.Jwt
	logger    *slog.Logger
}

// New creates an auth service.
func New(
	uow repository.UnitOfWork,
	directory provider.IdentityDirectory,
	cfg config.Jwt,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, directory: directory, cfg: cfg, logger: logger}
}

// Login verifies the credential with the directory and returns a signed
// access token for the ledger user.
func (s *Service) Login(ctx context.Context, email, pass string) (string, error) {
	log := s.logger.With("operation", "login", "email", email)

	if err := s.directory.SignIn(ctx, email, pass); err != nil {
		log.Warn("login rejected", "error", err)
		return "", err
	}
	user, err := s.uow.UserRepository().GetByEmail(ctx, email)
	if err != nil {
		// Identity exists but no ledger presence: treat as bad credentials
		// rather than leaking which side is missing.
		log.Error("directory identity has no ledger user", "error", err)
		return "", domain.ErrInvalidCredentials
	}

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = user.ID.String()
	claims["email"] = user.Email
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", err
	}
	log.Info("login successful", "userID", user.ID)
	return signed, nil
}

// CurrentIdentity extracts the caller identity from a verified token.
func CurrentIdentity(token *jwt.Token) (transfer.Identity, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return transfer.Identity{}, domain.ErrUnauthenticated
	}
	rawID, ok := claims["user_id"].(string)
	if !ok {
		return transfer.Identity{}, domain.ErrUnauthenticated
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return transfer.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	email, ok := claims["email"].(string)
	if !ok {
		return transfer.Identity{}, domain.ErrUnauthenticated
	}
	return transfer.Identity{UserID: userID, Email: email}, nil
}
