package repository

import "context"

// UnitOfWork is the transaction boundary for the ledger. All repositories
// obtained inside Do share one storage transaction, so the operations the
// orchestrator groups there apply together or not at all; no partial
// application is ever observable to readers.
//
// Repositories obtained outside Do run in auto-commit mode.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an
	// error, the transaction is rolled back and the error is returned.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// AccountRepository returns the account repository bound to the
	// current session.
	AccountRepository() AccountRepository

	// TransactionRepository returns the transaction repository bound to
	// the current session.
	TransactionRepository() TransactionRepository

	// UserRepository returns the user repository bound to the current
	// session.
	UserRepository() UserRepository
}
