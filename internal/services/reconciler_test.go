package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinroyale-backend/internal/models"
)

// fakeLedger returns scripted responses and counts queries.
type fakeLedger struct {
	mu      sync.Mutex
	record  *CollateralRecord
	err     error
	queries int
}

func (l *fakeLedger) GetCollateralRecord(ctx context.Context, sessionID string) (*CollateralRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries++
	if l.err != nil {
		return nil, l.err
	}
	cp := *l.record
	return &cp, nil
}

func (l *fakeLedger) queryCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queries
}

type sweepFixture struct {
	orch   *Orchestrator
	repo   *memRepo
	ledger *fakeLedger
	rec    *Reconciler
	clock  time.Time
}

func newSweepFixture(t *testing.T, cfg ReconcilerConfig) *sweepFixture {
	t.Helper()
	orch, repo, _ := newTestOrchestrator(Timings{})
	ledger := &fakeLedger{}
	rec := NewReconciler(orch.store, orch, ledger, cfg)

	f := &sweepFixture{
		orch:   orch,
		repo:   repo,
		ledger: ledger,
		rec:    rec,
		clock:  time.Now(),
	}
	rec.now = func() time.Time { return f.clock }
	return f
}

func (f *sweepFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *sweepFixture) depositState(t *testing.T, id string) models.DepositState {
	t.Helper()
	var ds models.DepositState
	require.NoError(t, f.orch.store.With(id, func(room *Room) error {
		ds = room.Session.DepositState
		return nil
	}))
	return ds
}

func TestSweepVerifiesMatchingDeposit(t *testing.T) {
	f := newSweepFixture(t, ReconcilerConfig{})
	createTestRoom(t, f.orch, "room-1", "0xa", 4)
	require.NoError(t, f.orch.MarkDeposited("room-1", "0xtx"))

	f.ledger.record = &CollateralRecord{
		Present:  true,
		Escrowed: true,
		Contract: "0xcollection",
		TokenID:  "42",
	}

	f.advance(6 * time.Minute)
	f.rec.RunSweep(context.Background())

	ds := f.depositState(t, "room-1")
	assert.True(t, ds.Verified)
	assert.Equal(t, f.clock, ds.LastCheckedAt)
	assert.Equal(t, 1, f.ledger.queryCount())

	// The verification outcome is persisted, not just in memory.
	stored, err := f.repo.GetSession("room-1")
	require.NoError(t, err)
	assert.True(t, stored.DepositState.Verified)
}

func TestSweepResetsDepositAbsentFromLedger(t *testing.T) {
	f := newSweepFixture(t, ReconcilerConfig{})
	createTestRoom(t, f.orch, "room-1", "0xa", 4)
	require.NoError(t, f.orch.MarkDeposited("room-1", "0xtx"))

	f.ledger.record = &CollateralRecord{Present: false}

	f.advance(6 * time.Minute)
	f.rec.RunSweep(context.Background())

	ds := f.depositState(t, "room-1")
	assert.False(t, ds.Deposited)
	assert.False(t, ds.Verified)
	assert.Equal(t, f.clock, ds.LastCheckedAt)
}

func TestSweepRejectsMismatchedCollateral(t *testing.T) {
	f := newSweepFixture(t, ReconcilerConfig{})
	createTestRoom(t, f.orch, "room-1", "0xa", 4)
	require.NoError(t, f.orch.MarkDeposited("room-1", "0xtx"))

	// Right escrow state, wrong token: must not verify.
	f.ledger.record = &CollateralRecord{
		Present:  true,
		Escrowed: true,
		Contract: "0xcollection",
		TokenID:  "999",
	}

	f.advance(6 * time.Minute)
	f.rec.RunSweep(context.Background())

	ds := f.depositState(t, "room-1")
	assert.False(t, ds.Verified)
	assert.False(t, ds.Deposited)
}

func TestSweepLedgerErrorIsSoft(t *testing.T) {
	f := newSweepFixture(t, ReconcilerConfig{})
	createTestRoom(t, f.orch, "room-1", "0xa", 4)
	require.NoError(t, f.orch.MarkDeposited("room-1", "0xtx"))

	f.ledger.err = errors.New("ledger rpc timeout")

	f.advance(6 * time.Minute)
	f.rec.RunSweep(context.Background())

	// A transient ledger failure never reads as "deposit absent".
	ds := f.depositState(t, "room-1")
	assert.True(t, ds.Deposited)
	assert.False(t, ds.Verified)
	assert.Equal(t, f.clock, ds.LastCheckedAt)

	// Room stayed alive for the retry.
	_, ok := f.orch.store.Get("room-1")
	assert.True(t, ok)

	// Next sweep past the cooldown retries and succeeds.
	f.ledger.mu.Lock()
	f.ledger.err = nil
	f.ledger.record = &CollateralRecord{
		Present:  true,
		Escrowed: true,
		Contract: "0xcollection",
		TokenID:  "42",
	}
	f.ledger.mu.Unlock()

	f.advance(3 * time.Minute)
	f.rec.RunSweep(context.Background())
	assert.True(t, f.depositState(t, "room-1").Verified)
}

func TestSweepHonorsCooldown(t *testing.T) {
	f := newSweepFixture(t, ReconcilerConfig{})
	createTestRoom(t, f.orch, "room-1", "0xa", 4)
	require.NoError(t, f.orch.MarkDeposited("room-1", "0xtx"))

	f.ledger.record = &CollateralRecord{Present: false}

	f.advance(6 * time.Minute)
	f.rec.RunSweep(context.Background())
	require.Equal(t, 1, f.ledger.queryCount())

	// Re-claim the deposit; within the cooldown the ledger stays idle.
	require.NoError(t, f.orch.MarkDeposited("room-1", "0xtx2"))
	f.advance(30 * time.Second)
	f.rec.RunSweep(context.Background())
	assert.Equal(t, 1, f.ledger.queryCount())

	f.advance(2 * time.Minute)
	f.rec.RunSweep(context.Background())
	assert.Equal(t, 2, f.ledger.queryCount())
}

func TestSweepSkipsFreshSessions(t *testing.T) {
	f := newSweepFixture(t, ReconcilerConfig{})
	createTestRoom(t, f.orch, "room-1", "0xa", 4)
	require.NoError(t, f.orch.MarkDeposited("room-1", "0xtx"))

	f.ledger.record = &CollateralRecord{Present: false}

	// Inside the grace window nothing is judged or queried.
	f.advance(time.Minute)
	f.rec.RunSweep(context.Background())
	assert.Equal(t, 0, f.ledger.queryCount())
	assert.True(t, f.depositState(t, "room-1").Deposited)
}

func TestSweepEvictsAbandonedRooms(t *testing.T) {
	f := newSweepFixture(t, ReconcilerConfig{})
	createTestRoom(t, f.orch, "room-old", "0xa", 4)
	createTestRoom(t, f.orch, "room-new", "0xb", 4)

	// Age only room-old past the max age.
	require.NoError(t, f.orch.store.With("room-old", func(room *Room) error {
		room.Session.CreatedAt = f.clock.Add(-15 * time.Minute)
		return nil
	}))

	f.rec.RunSweep(context.Background())

	_, ok := f.orch.store.Get("room-old")
	assert.False(t, ok)
	_, ok = f.orch.store.Get("room-new")
	assert.True(t, ok)

	// Eviction is recorded durably as a cancellation.
	stored, err := f.repo.GetSession("room-old")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCancelled, stored.Phase)
	assert.Equal(t, "deposit never confirmed", stored.CancelReason)

	// No ledger traffic for class (a) rooms.
	assert.Equal(t, 0, f.ledger.queryCount())
}

func TestSweepNeverTouchesVerifiedOrActiveRooms(t *testing.T) {
	f := newSweepFixture(t, ReconcilerConfig{})

	createTestRoom(t, f.orch, "room-verified", "0xa", 4)
	require.NoError(t, f.orch.store.With("room-verified", func(room *Room) error {
		room.Session.DepositState.Deposited = true
		room.Session.DepositState.Verified = true
		room.Session.CreatedAt = f.clock.Add(-time.Hour)
		return nil
	}))

	// A room mid-flip without a confirmed deposit is out of sweep scope:
	// eviction would strand resolved flips.
	createTestRoom(t, f.orch, "room-flipping", "0xb", 4)
	require.NoError(t, f.orch.store.With("room-flipping", func(room *Room) error {
		room.Session.Phase = models.PhaseExecutingFlips
		room.Session.CreatedAt = f.clock.Add(-time.Hour)
		return nil
	}))

	f.rec.RunSweep(context.Background())

	_, ok := f.orch.store.Get("room-verified")
	assert.True(t, ok)
	_, ok = f.orch.store.Get("room-flipping")
	assert.True(t, ok)
	assert.Equal(t, 0, f.ledger.queryCount())
	assert.True(t, f.depositState(t, "room-verified").Verified)
}

func TestSweepEvictsStalledUnfundedChoosingRoom(t *testing.T) {
	f := newSweepFixture(t, ReconcilerConfig{})

	createTestRoom(t, f.orch, "room-1", "0xa", 2)
	require.NoError(t, f.orch.AddPlayer("room-1", "0xb"))

	state, err := f.orch.GetFullState("room-1")
	require.NoError(t, err)
	require.Equal(t, models.PhaseChoosing, state.Phase)

	require.NoError(t, f.orch.store.With("room-1", func(room *Room) error {
		room.Session.CreatedAt = f.clock.Add(-time.Hour)
		return nil
	}))

	// Past max age with no deposit: reclaimed even though play started.
	f.rec.RunSweep(context.Background())

	_, ok := f.orch.store.Get("room-1")
	assert.False(t, ok)
}

func TestReconcilerConfigDefaults(t *testing.T) {
	cfg := ReconcilerConfig{}
	cfg.applyDefaults()

	assert.Equal(t, 5*time.Minute, cfg.Interval)
	assert.Equal(t, 10*time.Minute, cfg.MaxAge)
	assert.Equal(t, 2*time.Minute, cfg.Cooldown)
	assert.Equal(t, 5*time.Minute, cfg.Grace)

	custom := ReconcilerConfig{Interval: time.Second, MaxAge: time.Minute}
	custom.applyDefaults()
	assert.Equal(t, time.Second, custom.Interval)
	assert.Equal(t, time.Minute, custom.MaxAge)
	assert.Equal(t, 2*time.Minute, custom.Cooldown)
}
