package services

import (
	"context"
	"log"
	"time"

	"coinroyale-backend/internal/models"
)

// ReconcilerConfig carries the sweep timings. Zero values fall back to
// the design defaults.
type ReconcilerConfig struct {
	Interval time.Duration // how often the sweep runs
	MaxAge   time.Duration // unconfirmed deposits older than this are evicted
	Cooldown time.Duration // minimum gap between ledger checks per session
	Grace    time.Duration // newly created sessions are skipped entirely
}

func (c *ReconcilerConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 10 * time.Minute
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 2 * time.Minute
	}
	if c.Grace <= 0 {
		c.Grace = 5 * time.Minute
	}
}

// Reconciler keeps the local deposit belief consistent with the ledger
// and reaps abandoned rooms. It is the only unsolicited writer of room
// state: every other transition is caused by a player action or a
// deadline that action set up.
type Reconciler struct {
	store  *SessionStore
	orch   *Orchestrator
	ledger LedgerClient
	cfg    ReconcilerConfig

	now func() time.Time // injectable clock for tests
}

func NewReconciler(store *SessionStore, orch *Orchestrator, ledger LedgerClient, cfg ReconcilerConfig) *Reconciler {
	cfg.applyDefaults()
	return &Reconciler{
		store:  store,
		orch:   orch,
		ledger: ledger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunSweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunSweep inspects every room pending collateral exactly once.
func (r *Reconciler) RunSweep(ctx context.Context) {
	now := r.now()
	checked, evicted := 0, 0

	for _, id := range r.store.IDs() {
		action := r.inspect(ctx, id, now)
		switch action {
		case sweepChecked:
			checked++
		case sweepEvicted:
			evicted++
		}
	}

	if checked > 0 || evicted > 0 {
		log.Printf("[SWEEP] Checked %d sessions, evicted %d", checked, evicted)
	}
}

type sweepAction int

const (
	sweepSkipped sweepAction = iota
	sweepChecked
	sweepEvicted
)

// inspect classifies one room and applies the matching correction. The
// room lock is held only while reading/writing local state, never
// across the ledger query.
func (r *Reconciler) inspect(ctx context.Context, id string, now time.Time) sweepAction {
	type candidate struct {
		deposited bool
		verified  bool
		contract  string
		tokenID   string
		createdAt time.Time
		checkedAt time.Time
		phase     models.Phase
	}

	var c candidate
	err := r.store.With(id, func(room *Room) error {
		s := room.Session
		c = candidate{
			deposited: s.DepositState.Deposited,
			verified:  s.DepositState.Verified,
			contract:  s.Collateral.Contract,
			tokenID:   s.Collateral.TokenID,
			createdAt: s.CreatedAt,
			checkedAt: s.DepositState.LastCheckedAt,
			phase:     s.Phase,
		}
		return nil
	})
	if err != nil {
		return sweepSkipped
	}

	if c.verified || c.phase.Terminal() {
		return sweepSkipped
	}

	// Ledger propagation delay: a fresh session must not be judged.
	if now.Sub(c.createdAt) < r.cfg.Grace {
		return sweepSkipped
	}

	// Class (a): never confirmed and past max age. Abandoned escrow
	// intent; reclaim the room. Refund paths are the caller's concern.
	if !c.deposited {
		if now.Sub(c.createdAt) > r.cfg.MaxAge && preActive(c.phase) {
			if err := r.orch.CancelSession(id, "deposit never confirmed"); err != nil {
				log.Printf("[SWEEP] Failed to cancel %s: %v", id, err)
				return sweepSkipped
			}
			return sweepEvicted
		}
		return sweepSkipped
	}

	// Class (b): deposit claimed but unverified. Respect the cooldown so
	// the ledger client is not hammered.
	if now.Sub(c.checkedAt) < r.cfg.Cooldown {
		return sweepSkipped
	}

	record, lerr := r.ledger.GetCollateralRecord(ctx, id)

	// Every check moves lastCheckedAt, success or not; that is what
	// makes the cooldown effective.
	_ = r.store.With(id, func(room *Room) error {
		s := room.Session
		s.DepositState.LastCheckedAt = now

		if lerr != nil {
			// Soft failure: retried next sweep. A transient RPC error
			// must never read as "deposit absent".
			log.Printf("[SWEEP] Ledger check failed for %s: %v", id, lerr)
			return nil
		}

		if record.Present && record.Escrowed &&
			record.Contract == c.contract && record.TokenID == c.tokenID {
			s.DepositState.Verified = true
			log.Printf("[SWEEP] Deposit verified for %s (tx %s)", id, s.DepositState.DepositTxHash)
		} else {
			// The ledger is authoritative: the claimed deposit is not
			// there. Fall back into class (a) handling next sweep.
			s.DepositState.Deposited = false
			s.DepositState.Verified = false
			log.Printf("[SWEEP] Deposit missing on ledger for %s, flags reset", id)
		}
		return nil
	})

	_ = r.persistAfterCheck(id)
	return sweepChecked
}

// preActive covers every phase before flips can run; a room that far
// along necessarily passed deposit verification already.
func preActive(p models.Phase) bool {
	return p == models.PhaseFilling || p == models.PhaseChoosing || p == models.PhaseChargingPower
}

func (r *Reconciler) persistAfterCheck(id string) error {
	return r.store.With(id, func(room *Room) error {
		if err := r.orch.repo.SaveSession(room.Session); err != nil {
			log.Printf("[SWEEP] Failed to persist %s: %v", id, err)
		}
		return nil
	})
}
