// Package domain holds the ledger's entities and the error taxonomy shared
// by the service and infrastructure layers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User owns a set of accounts. The identity credential itself lives in the
// external identity directory; the ledger stores only the directory's id.
type User struct {
	ID         uuid.UUID
	Email      string
	IdentityID string
	Accounts   []Account
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AccountByID returns the user's account with the given id, or nil if the
// user does not own such an account.
func (u *User) AccountByID(id uuid.UUID) *Account {
	for i := range u.Accounts {
		if u.Accounts[i].ID == id {
			return &u.Accounts[i]
		}
	}
	return nil
}
