// Package cache defines the side-cache contract for read-heavy account
// listings. The cache sits outside the ledger's correctness boundary: it
// may serve slightly stale listings within its TTL, and it is never
// consulted on any path that mutates balances or transaction status.
package cache

import (
	"context"
	"time"

	"github.com/amirasaad/custodia/pkg/dto"
)

// AccountListingCache caches account listings keyed by
// (user email, pagination, sort).
type AccountListingCache interface {
	// Get returns the cached listing for key, or ok=false on a miss or an
	// expired entry.
	Get(ctx context.Context, key string) (accounts []dto.AccountRead, ok bool, err error)

	// Set stores a listing under key for at most ttl.
	Set(ctx context.Context, key string, accounts []dto.AccountRead, ttl time.Duration) error

	// InvalidateUser drops every cached listing belonging to the user.
	// Called by mutation paths that change what a listing would return.
	InvalidateUser(ctx context.Context, email string) error
}
