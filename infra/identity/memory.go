// Package identity implements the external identity directory: an HTTP
// client for a hosted directory and an in-memory directory for local runs
// and tests.
package identity

import (
	"context"
	"sync"

	"github.com/amirasaad/custodia/pkg/domain"
	"github.com/amirasaad/custodia/pkg/password"
	"github.com/google/uuid"
)

type memoryIdentity struct {
	id           string
	email        string
	passwordHash string
}

// MemoryDirectory stores credentials in process memory, hashed with
// bcrypt. Safe for concurrent use.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byID    map[string]*memoryIdentity
	byEmail map[string]*memoryIdentity
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:    make(map[string]*memoryIdentity),
		byEmail: make(map[string]*memoryIdentity),
	}
}

// CreateIdentity provisions a credential and returns its identity id.
func (d *MemoryDirectory) CreateIdentity(_ context.Context, email, pass string) (string, error) {
	hash, err := password.Hash(pass)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byEmail[email]; exists {
		return "", domain.ErrAlreadyExists
	}
	ident := &memoryIdentity{id: uuid.NewString(), email: email, passwordHash: hash}
	d.byID[ident.id] = ident
	d.byEmail[email] = ident
	return ident.id, nil
}

// DeleteIdentity removes a credential. Deleting an unknown id is a no-op.
func (d *MemoryDirectory) DeleteIdentity(_ context.Context, identityID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ident, exists := d.byID[identityID]
	if !exists {
		return nil
	}
	delete(d.byID, identityID)
	delete(d.byEmail, ident.email)
	return nil
}

// SignIn verifies a credential.
func (d *MemoryDirectory) SignIn(_ context.Context, email, pass string) error {
	d.mu.RLock()
	ident, exists := d.byEmail[email]
	d.mu.RUnlock()
	if !exists || !password.Check(pass, ident.passwordHash) {
		return domain.ErrInvalidCredentials
	}
	return nil
}
