// Package provider defines the capability interfaces for the external
// collaborators the ledger core depends on: the settlement rail and the
// identity directory. Implementations live in infra.
package provider

import (
	"context"

	"github.com/amirasaad/custodia/pkg/domain"
)

// SettlementProvider is the opaque external step that moves funds outside
// the ledger's own storage. It has exactly two outcomes: nil (confirmed)
// or an error (not confirmed). The orchestrator invokes it at most once
// per transaction id and never retries; a timeout on ctx counts as a
// failure.
type SettlementProvider interface {
	Settle(ctx context.Context, tx *domain.Transaction) error
}
