package repository

import (
	"errors"
	"strings"

	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the Postgres error code for a unique-constraint
// violation.
const pgUniqueViolation = "23505"

// mapError converts storage errors to domain errors at the infrastructure
// boundary. A unique violation on the (user_id, kind) index surfaces as
// ErrDuplicateAccountKind so the registration flow can report it as such.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "user_kind") {
			return domain.ErrDuplicateAccountKind
		}
		return domain.ErrAlreadyExists
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrAlreadyExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	}
	return err
}
