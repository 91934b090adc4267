package provider

import "context"

// IdentityDirectory is the external system that stores login credentials.
// The ledger never sees passwords beyond the registration and login calls;
// it stores only the directory's identity id.
type IdentityDirectory interface {
	// CreateIdentity provisions a credential and returns its identity id.
	CreateIdentity(ctx context.Context, email, password string) (string, error)

	// DeleteIdentity removes a credential. Used as the compensating action
	// when ledger persistence fails after the identity was created; callers
	// treat failures as best-effort.
	DeleteIdentity(ctx context.Context, identityID string) error

	// SignIn verifies a credential. Returns domain.ErrInvalidCredentials
	// when the email/password pair does not match.
	SignIn(ctx context.Context, email, password string) error
}
