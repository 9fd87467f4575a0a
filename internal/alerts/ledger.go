// Package alerts implements the rain-alert scan: iterating enrolled users,
// running the rain-detection core against each user's forecast, and sending
// at most one deduplicated notification per detected event.
package alerts

import (
	"context"
	"time"

	"rainwatch/internal/types"
)

// ledgerStore is the slice of the alert-log repository the ledger needs.
type ledgerStore interface {
	Claim(ctx context.Context, key types.AlertKey, cutoff time.Time) (bool, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Ledger is the dedup/cooldown gate in front of notification sends. A send
// happens only after the ledger grants a claim for the alert key; the claim
// is recorded atomically at the storage layer, so concurrent scans cannot
// both win the same key.
//
// The ledger fails open: if the store is unreachable the claim is granted
// anyway. A duplicate notification during a database outage is a better
// failure mode than silently dropping a rain warning.
type Ledger struct {
	store     ledgerStore
	cooldown  time.Duration
	retention time.Duration
	clock     types.Clock
	log       types.Logger
}

// NewLedger creates a Ledger with the given cooldown (minimum spacing
// between notifications for the same key) and retention (how long entries
// are kept before pruning).
func NewLedger(store ledgerStore, cooldown, retention time.Duration, clock types.Clock, log types.Logger) *Ledger {
	return &Ledger{
		store:     store,
		cooldown:  cooldown,
		retention: retention,
		clock:     clock,
		log:       log,
	}
}

// ClaimSend reports whether the caller should send a notification for key.
// True means the claim was recorded and the caller owns the send; a failed
// send does not release the claim, so a broken delivery path cannot turn
// into a notification storm on subsequent scans.
func (l *Ledger) ClaimSend(ctx context.Context, key types.AlertKey) bool {
	cutoff := l.clock.Now().Add(-l.cooldown)
	granted, err := l.store.Claim(ctx, key, cutoff)
	if err != nil {
		l.log.Warn("alert ledger unavailable, sending without dedup",
			"user_id", key.UserID, "event_bucket", key.EventBucket, "error", err)
		return true
	}
	return granted
}

// PruneExpired removes ledger entries older than the retention window.
// Best effort: a failed prune is logged and retried on the next scan.
func (l *Ledger) PruneExpired(ctx context.Context) {
	cutoff := l.clock.Now().Add(-l.retention)
	removed, err := l.store.Prune(ctx, cutoff)
	if err != nil {
		l.log.Warn("failed to prune alert ledger", "error", err)
		return
	}
	if removed > 0 {
		l.log.Info("pruned alert ledger", "removed", removed)
	}
}
