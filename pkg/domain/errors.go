package domain

import "errors"

var (
	// ErrNotFound is the generic not-found error for ledger records.
	ErrNotFound = errors.New("record not found")

	// ErrUserNotFound is returned when the caller's user record is missing.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountNotFound is returned when a referenced account is absent.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNotOwner is returned when a user acts on an account they do not own.
	ErrNotOwner = errors.New("cannot perform this action")

	// ErrSelfTransfer is returned when a send targets its own source account.
	ErrSelfTransfer = errors.New("cannot send to yourself")

	// ErrInsufficientBalance is returned when an account cannot cover the
	// requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAmountMustBePositive is returned when a transaction amount is not
	// strictly positive.
	ErrAmountMustBePositive = errors.New("transaction amount must be positive")

	// ErrDuplicateAccountKind is returned when a user already has an account
	// of the requested kind.
	ErrDuplicateAccountKind = errors.New("duplicate account type")

	// ErrAlreadyExists is returned on a uniqueness violation other than the
	// account-kind constraint, e.g. a duplicate email.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrSettlementFailed is returned when the external settlement step did
	// not confirm the transfer.
	ErrSettlementFailed = errors.New("settlement failed")

	// ErrInvalidEmail is returned when a supplied email address is not
	// well formed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a bearer credential cannot be
	// verified.
	ErrUnauthenticated = errors.New("invalid or expired token")
)
