// Package settlement provides the simulated settlement rail. The real
// rail is whatever confirms the transfer outside the ledger's storage;
// the simulator reproduces its two observable behaviors, latency and a
// binary outcome, so the orchestrator's state machine can be exercised
// end to end.
package settlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/custodia/pkg/domain"
)

// Simulated outcomes.
const (
	OutcomeApprove = "approve"
	OutcomeReject  = "reject"
)

// ErrRejected is returned when the simulated rail declines the transfer.
var ErrRejected = errors.New("settlement rejected by rail")

// Simulator settles transactions after a configured delay with a
// configured outcome.
type Simulator struct {
	latency time.Duration
	outcome string
	logger  *slog.Logger
}

// NewSimulator creates a simulator. outcome is "approve" or "reject".
func NewSimulator(latency time.Duration, outcome string, logger *slog.Logger) *Simulator {
	return &Simulator{latency: latency, outcome: outcome, logger: logger}
}

// Settle waits out the configured latency, honoring ctx cancellation, then
// reports the configured outcome. A cancelled or expired ctx is a
// settlement failure; no partial state exists on this side of the
// boundary.
func (s *Simulator) Settle(ctx context.Context, tx *domain.Transaction) error {
	log := s.logger.With("transactionID", tx.ID, "type", tx.Type)

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			log.Warn("settlement abandoned", "error", ctx.Err())
			return ctx.Err()
		case <-timer.C:
		}
	}

	if s.outcome == OutcomeReject {
		log.Warn("settlement rejected")
		return ErrRejected
	}
	log.Info("settlement confirmed", "amount", tx.Amount.String())
	return nil
}
