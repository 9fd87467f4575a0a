package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainwatch/internal/types"
)

// fakeClock is a settable Clock shared by the tests in this package.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memStore reproduces the conditional-upsert semantics of the alert log in
// memory: a claim is denied while an entry newer than the cutoff exists.
type memStore struct {
	mu       sync.Mutex
	entries  map[types.AlertKey]time.Time
	clock    types.Clock
	claimErr error
	pruneErr error
}

func newMemStore(clock types.Clock) *memStore {
	return &memStore{entries: map[types.AlertKey]time.Time{}, clock: clock}
}

func (s *memStore) Claim(_ context.Context, key types.AlertKey, cutoff time.Time) (bool, error) {
	if s.claimErr != nil {
		return false, s.claimErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.entries[key]; ok && last.After(cutoff) {
		return false, nil
	}
	s.entries[key] = s.clock.Now()
	return true, nil
}

func (s *memStore) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	if s.pruneErr != nil {
		return 0, s.pruneErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for k, at := range s.entries {
		if at.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

func noopLogger() types.Logger {
	return types.NewLogger(nil)
}

func TestLedger_ClaimOncePerCooldown(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	ledger := NewLedger(store, 6*time.Hour, 24*time.Hour, clock, noopLogger())
	key := types.AlertKey{UserID: 1, City: "Milano", EventBucket: "14:00"}

	assert.True(t, ledger.ClaimSend(context.Background(), key))
	assert.False(t, ledger.ClaimSend(context.Background(), key), "second claim inside cooldown")

	clock.Advance(3 * time.Hour)
	assert.False(t, ledger.ClaimSend(context.Background(), key), "still inside cooldown")

	clock.Advance(4 * time.Hour)
	assert.True(t, ledger.ClaimSend(context.Background(), key), "cooldown expired")
}

func TestLedger_DistinctKeysAreIndependent(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	ledger := NewLedger(newMemStore(clock), 6*time.Hour, 24*time.Hour, clock, noopLogger())

	assert.True(t, ledger.ClaimSend(context.Background(), types.AlertKey{UserID: 1, City: "Milano", EventBucket: "14:00"}))
	assert.True(t, ledger.ClaimSend(context.Background(), types.AlertKey{UserID: 1, City: "Milano", EventBucket: "15:00"}))
	assert.True(t, ledger.ClaimSend(context.Background(), types.AlertKey{UserID: 2, City: "Milano", EventBucket: "14:00"}))
	assert.True(t, ledger.ClaimSend(context.Background(), types.AlertKey{UserID: 1, City: "Roma", EventBucket: "14:00"}))
}

func TestLedger_FailsOpenOnStoreError(t *testing.T) {
	clock := newFakeClock(time.Now())
	store := newMemStore(clock)
	store.claimErr = errors.New("connection refused")
	ledger := NewLedger(store, 6*time.Hour, 24*time.Hour, clock, noopLogger())

	assert.True(t, ledger.ClaimSend(context.Background(), types.AlertKey{UserID: 1, City: "Milano", EventBucket: "14:00"}),
		"store errors must not suppress notifications")
}

func TestLedger_PruneExpired(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	store := newMemStore(clock)
	ledger := NewLedger(store, 6*time.Hour, 24*time.Hour, clock, noopLogger())

	old := types.AlertKey{UserID: 1, City: "Milano", EventBucket: "14:00"}
	require.True(t, ledger.ClaimSend(context.Background(), old))

	clock.Advance(25 * time.Hour)
	fresh := types.AlertKey{UserID: 2, City: "Roma", EventBucket: "09:00"}
	require.True(t, ledger.ClaimSend(context.Background(), fresh))

	ledger.PruneExpired(context.Background())

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.entries, old)
	assert.Contains(t, store.entries, fresh)
}

func TestLedger_PruneErrorIsNonFatal(t *testing.T) {
	clock := newFakeClock(time.Now())
	store := newMemStore(clock)
	store.pruneErr = errors.New("timeout")
	ledger := NewLedger(store, 6*time.Hour, 24*time.Hour, clock, noopLogger())

	ledger.PruneExpired(context.Background())
}
