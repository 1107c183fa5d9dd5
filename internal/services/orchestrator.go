package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"coinroyale-backend/internal/models"
)

// How long a held charge button takes to sweep 0 to 100. Only the
// interpolated broadcast uses this; the authoritative power is whatever
// StopPowerCharge records.
const chargeRampDuration = 2 * time.Second

// Timings are the per-phase deadlines the orchestrator arms.
type Timings struct {
	Choice    time.Duration
	Power     time.Duration
	Flip      time.Duration
	PowerTick time.Duration
	Retention time.Duration
}

// FlipOutcome is what ExecuteFlip returns to the acting player.
type FlipOutcome struct {
	FlipID     string      `json:"flip_id"`
	CommitHash string      `json:"commit_hash"`
	Result     models.Side `json:"result"`
	Target     models.Side `json:"target"`
	Survived   bool        `json:"survived"`
}

// Orchestrator is the single authority mutating a session's phase and
// player set. All mutations happen under the room lock; illegal actions
// are rejected synchronously and mutate nothing.
type Orchestrator struct {
	store     *SessionStore
	fairness  *FairnessEngine
	repo      GameRepository
	broadcast Broadcaster
	timings   Timings
}

func NewOrchestrator(store *SessionStore, fairness *FairnessEngine, repo GameRepository, broadcast Broadcaster, timings Timings) *Orchestrator {
	if timings.PowerTick <= 0 {
		timings.PowerTick = 50 * time.Millisecond
	}
	return &Orchestrator{
		store:     store,
		fairness:  fairness,
		repo:      repo,
		broadcast: broadcast,
		timings:   timings,
	}
}

// CreateSession registers a new room in FILLING with the creator as its
// first player.
func (o *Orchestrator) CreateSession(id, creator string, req *models.CreateSessionRequest) (*models.GameSession, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	if id == "" {
		id = models.GenerateSessionID()
	}

	now := time.Now()
	session := &models.GameSession{
		ID:             id,
		Creator:        creator,
		MaxPlayers:     req.MaxPlayers,
		CurrentPlayers: 1,
		EntryFee:       req.EntryFee,
		ServiceFee:     req.ServiceFee,
		Collateral:     req.Collateral,
		Players: map[string]*models.PlayerState{
			creator: {Address: creator, SlotNumber: 1},
		},
		PlayerOrder: []string{creator},
		Phase:       models.PhaseFilling,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	room, err := o.store.Put(session)
	if err != nil {
		return nil, err
	}

	// The room is joinable the moment Put returns, so the persist and
	// snapshot must happen under the room lock.
	room.mu.Lock()
	o.persist(session)
	snapshot := copySession(session)
	room.mu.Unlock()

	log.Printf("[GAME] Session created: %s by %s (%d slots)", id, creator, req.MaxPlayers)

	o.broadcast.Publish(id, EventStateUpdate, snapshot)
	return copySession(snapshot), nil
}

// MarkDeposited records the creator's deposit transaction. The sweep
// verifies it against the ledger before the room may start flipping.
func (o *Orchestrator) MarkDeposited(id, txHash string) error {
	return o.store.With(id, func(room *Room) error {
		if room.Session.Phase.Terminal() {
			return models.ErrSessionEnded
		}
		room.Session.DepositState.Deposited = true
		room.Session.DepositState.DepositTxHash = txHash
		o.persist(room.Session)
		return nil
	})
}

// AddPlayer joins an address into a FILLING room. Filling the last slot
// advances the room automatically, same as an explicit early start.
func (o *Orchestrator) AddPlayer(id, address string) error {
	return o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Player(address) != nil {
			return models.ErrAlreadyJoined
		}
		if s.CurrentPlayers >= s.MaxPlayers {
			return models.ErrRoomFull
		}
		if s.Phase != models.PhaseFilling {
			return models.ErrWrongPhase
		}

		s.Players[address] = &models.PlayerState{
			Address:    address,
			SlotNumber: len(s.PlayerOrder) + 1,
		}
		s.PlayerOrder = append(s.PlayerOrder, address)
		s.CurrentPlayers++
		s.UpdatedAt = time.Now()

		o.broadcast.Publish(id, EventJoinSuccess, map[string]interface{}{
			"address": address,
			"slot":    s.Players[address].SlotNumber,
			"players": s.CurrentPlayers,
		})

		if s.CurrentPlayers == s.MaxPlayers {
			o.startRoundLocked(room)
		} else {
			o.persist(s)
			o.broadcast.Publish(id, EventStateUpdate, copySession(s))
		}
		return nil
	})
}

// AddSpectator grants an address read-only observer access.
func (o *Orchestrator) AddSpectator(id, address string) error {
	return o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase.Terminal() {
			return models.ErrSessionEnded
		}
		if s.Player(address) != nil {
			return models.ErrAlreadyJoined
		}
		if !s.IsSpectator(address) {
			s.Spectators = append(s.Spectators, address)
			o.persist(s)
		}
		return nil
	})
}

// StartEarly forces the fill-to-choose transition before the room is
// full. Creator only, at least two players.
func (o *Orchestrator) StartEarly(id, requester string) error {
	return o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase != models.PhaseFilling {
			return models.ErrWrongPhase
		}
		if requester != s.Creator {
			return models.ErrNotCreator
		}
		if s.CurrentPlayers < 2 {
			return models.ErrInsufficientPlayers
		}

		o.startRoundLocked(room)
		return nil
	})
}

// SetChoice records a player's called side. Last write wins until the
// choice deadline.
func (o *Orchestrator) SetChoice(id, address string, side models.Side) error {
	return o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase != models.PhaseChoosing {
			return models.ErrWrongPhase
		}
		if !side.Valid() {
			return fmt.Errorf("%w: side must be heads or tails", models.ErrInvalidFlipRequest)
		}
		player := s.Player(address)
		if player == nil {
			return models.ErrNotAPlayer
		}
		if player.Eliminated {
			return models.ErrEliminated
		}

		player.Choice = side
		s.UpdatedAt = time.Now()

		o.broadcast.Publish(id, EventPlayerChose, map[string]interface{}{
			"address": address,
			"side":    side,
			"round":   s.RoundNumber,
		})

		if allChosen(s) {
			o.enterChargingLocked(room)
		}
		return nil
	})
}

// StartPowerCharge spawns the live charge-bar ticker for one player.
// The interpolated values are presentation only.
func (o *Orchestrator) StartPowerCharge(id, address string) error {
	return o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase != models.PhaseChargingPower {
			return models.ErrWrongPhase
		}
		player := s.Player(address)
		if player == nil {
			return models.ErrNotAPlayer
		}
		if player.Eliminated {
			return models.ErrEliminated
		}

		stop := room.startChargeLocked(address)
		round := s.RoundNumber
		go o.runChargeTicker(id, address, round, stop)
		return nil
	})
}

// runChargeTicker broadcasts interpolated power until stopped. Scoped to
// one (room, player, round) charge window.
func (o *Orchestrator) runChargeTicker(roomID, address string, round int, stop chan struct{}) {
	ticker := time.NewTicker(o.timings.PowerTick)
	defer ticker.Stop()

	started := time.Now()
	for {
		select {
		case <-ticker.C:
			elapsed := time.Since(started)
			power := models.ClampPower(float64(elapsed) / float64(chargeRampDuration) * 100)
			o.broadcast.Publish(roomID, EventPowerUpdate, map[string]interface{}{
				"address": address,
				"power":   power,
				"round":   round,
			})
		case <-stop:
			return
		}
	}
}

// StopPowerCharge records the final power and stops the ticker.
func (o *Orchestrator) StopPowerCharge(id, address string, finalPower float64) error {
	return o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase != models.PhaseChargingPower {
			return models.ErrWrongPhase
		}
		player := s.Player(address)
		if player == nil {
			return models.ErrNotAPlayer
		}
		if player.Eliminated {
			return models.ErrEliminated
		}

		room.stopChargeLocked(address)
		player.Power = models.ClampPower(finalPower)
		player.PowerSet = true
		s.UpdatedAt = time.Now()

		o.broadcast.Publish(id, EventPowerUpdate, map[string]interface{}{
			"address": address,
			"power":   player.Power,
			"round":   s.RoundNumber,
			"final":   true,
		})

		if allCharged(s) {
			o.enterExecutingLocked(room)
		}
		return nil
	})
}

// ExecuteFlip runs the commit-reveal flip for one player. Idempotent for
// a player whose flip already resolved this round.
func (o *Orchestrator) ExecuteFlip(id, address string) (*FlipOutcome, error) {
	var outcome *FlipOutcome
	err := o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase != models.PhaseExecutingFlips {
			return models.ErrWrongPhase
		}
		if !s.DepositState.Verified {
			return models.ErrDepositUnverified
		}
		player := s.Player(address)
		if player == nil {
			return models.ErrNotAPlayer
		}
		if player.Eliminated {
			return models.ErrEliminated
		}

		var err error
		outcome, err = o.flipPlayerLocked(room, player)
		if err != nil {
			return err
		}

		if allFlipped(s) {
			o.resolveRoundLocked(room)
		}
		return nil
	})
	return outcome, err
}

// flipPlayerLocked starts and immediately resolves a fairness session
// for the player. The commit event is published before the reveal.
func (o *Orchestrator) flipPlayerLocked(room *Room, player *models.PlayerState) (*FlipOutcome, error) {
	s := room.Session

	if player.FlipResult != "" {
		return &FlipOutcome{
			FlipID:     player.FlipID,
			Result:     player.FlipResult,
			Target:     s.RoundTarget,
			Survived:   player.FlipResult == s.RoundTarget,
			CommitHash: o.commitHashFor(player.FlipID),
		}, nil
	}
	if player.Choice == "" || !player.PowerSet {
		return nil, models.ErrNotReadyToFlip
	}

	start, err := o.fairness.StartFlipSession(s.ID, player.Address, player.Choice, player.Power, player.CoinSkin)
	if err != nil {
		return nil, err
	}

	o.broadcast.Publish(s.ID, EventFlipCommitted, map[string]interface{}{
		"address":     player.Address,
		"flip_id":     start.FlipID,
		"commit_hash": start.CommitHash,
		"animation":   start.Animation,
		"round":       s.RoundNumber,
	})

	resolution, err := o.fairness.ResolveFlipSession(start.FlipID)
	if err != nil && !errors.Is(err, models.ErrAlreadyResolved) {
		return nil, err
	}

	player.FlipID = start.FlipID
	player.FlipResult = resolution.Result
	s.UpdatedAt = time.Now()

	if flip, ok := o.fairness.GetFlip(start.FlipID); ok {
		if err := o.repo.SaveFlipRecord(flip); err != nil {
			log.Printf("[GAME] Failed to persist flip record %s: %v", start.FlipID, err)
		}
	}

	o.broadcast.Publish(s.ID, EventFlipResult, map[string]interface{}{
		"address":   player.Address,
		"flip_id":   start.FlipID,
		"result":    resolution.Result,
		"seed":      resolution.Seed,
		"signature": resolution.Signature,
		"round":     s.RoundNumber,
	})

	return &FlipOutcome{
		FlipID:     start.FlipID,
		CommitHash: start.CommitHash,
		Result:     resolution.Result,
		Target:     s.RoundTarget,
		Survived:   resolution.Result == s.RoundTarget,
	}, nil
}

// UpdateCoinSkin swaps a player's cosmetic skin. Valid any phase before
// the session ends.
func (o *Orchestrator) UpdateCoinSkin(id, address, skin string) error {
	return o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase.Terminal() {
			return models.ErrSessionEnded
		}
		player := s.Player(address)
		if player == nil {
			return models.ErrNotAPlayer
		}

		player.CoinSkin = skin
		s.UpdatedAt = time.Now()
		o.broadcast.Publish(id, EventStateUpdate, copySession(s))
		return nil
	})
}

// GetFullState returns a detached snapshot of the room. Never mutates.
func (o *Orchestrator) GetFullState(id string) (*models.GameSession, error) {
	var snapshot *models.GameSession
	err := o.store.With(id, func(room *Room) error {
		snapshot = copySession(room.Session)
		return nil
	})
	if err != nil {
		// Fall back to the durable record for rooms already torn down.
		if errors.Is(err, models.ErrSessionNotFound) {
			return o.repo.GetSession(id)
		}
		return nil, err
	}
	return snapshot, nil
}

// ListSessions returns detached snapshots of every live room.
func (o *Orchestrator) ListSessions() []*models.GameSession {
	ids := o.store.IDs()
	sessions := make([]*models.GameSession, 0, len(ids))
	for _, id := range ids {
		_ = o.store.With(id, func(room *Room) error {
			sessions = append(sessions, copySession(room.Session))
			return nil
		})
	}
	return sessions
}

// ConfirmSettlement records withdrawal confirmations after completion.
func (o *Orchestrator) ConfirmSettlement(id string, creatorPaid, nftClaimed bool) error {
	err := o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase != models.PhaseCompleted {
			return models.ErrWrongPhase
		}
		if creatorPaid {
			s.Settlement.CreatorPaid = true
		}
		if nftClaimed {
			s.Settlement.NFTClaimed = true
		}
		o.persist(s)
		return nil
	})
	if err == nil || !errors.Is(err, models.ErrSessionNotFound) {
		return err
	}

	// Room already left the store; settle against the durable record.
	session, getErr := o.repo.GetSession(id)
	if getErr != nil {
		return getErr
	}
	if session.Phase != models.PhaseCompleted {
		return models.ErrWrongPhase
	}
	if creatorPaid {
		session.Settlement.CreatorPaid = true
	}
	if nftClaimed {
		session.Settlement.NFTClaimed = true
	}
	return o.repo.SaveSession(session)
}

// CancelSession moves a pre-COMPLETED room into the absorbing CANCELLED
// state and tears it down. The reconciliation sweep is the only caller
// besides deadline expiry.
func (o *Orchestrator) CancelSession(id, reason string) error {
	err := o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase == models.PhaseCompleted || s.Phase == models.PhaseCancelled {
			return models.ErrSessionEnded
		}

		room.stopRoundTimerLocked()
		room.stopAllChargesLocked()

		s.Phase = models.PhaseCancelled
		s.CancelReason = reason
		s.UpdatedAt = time.Now()
		o.persist(s)

		log.Printf("[GAME] Session %s cancelled: %s", id, reason)
		o.broadcast.Publish(id, EventSessionCancelled, map[string]interface{}{
			"reason": reason,
		})
		return nil
	})
	if err != nil {
		return err
	}

	o.store.Remove(id)
	return nil
}

// Restore reloads non-terminal sessions from the durable record into
// the store after a restart. In-flight round input is lost, so restored
// rooms re-enter their round from CHOOSING.
func (o *Orchestrator) Restore() error {
	ids, err := o.repo.ListSessionIDs()
	if err != nil {
		return err
	}

	restored := 0
	for _, id := range ids {
		session, err := o.repo.GetSession(id)
		if err != nil {
			log.Printf("[GAME] Skipping unreadable session %s: %v", id, err)
			continue
		}
		if session.Phase.Terminal() {
			continue
		}

		room, err := o.store.Put(session)
		if err != nil {
			continue
		}

		room.mu.Lock()
		if session.Phase != models.PhaseFilling {
			o.startRoundAtLocked(room, session.RoundNumber)
		}
		room.mu.Unlock()
		restored++
	}

	if restored > 0 {
		log.Printf("[GAME] Restored %d active sessions", restored)
	}
	return nil
}

// --- internal transitions (room lock held) ---

// startRoundLocked begins the next round: clears per-round player state,
// draws the target side, and arms the choice deadline.
func (o *Orchestrator) startRoundLocked(room *Room) {
	o.startRoundAtLocked(room, room.Session.RoundNumber+1)
}

func (o *Orchestrator) startRoundAtLocked(room *Room, round int) {
	s := room.Session

	s.Phase = models.PhaseChoosing
	s.RoundNumber = round
	s.RoundTarget = drawTargetSide()
	s.RoundDeadline = time.Now().Add(o.timings.Choice)
	s.UpdatedAt = time.Now()

	for _, p := range s.Players {
		if p.Eliminated {
			continue
		}
		p.Choice = ""
		p.Power = 0
		p.PowerSet = false
		p.FlipResult = ""
		p.FlipID = ""
	}

	o.armDeadlineLocked(room, o.timings.Choice)
	o.persist(s)
	o.broadcast.Publish(s.ID, EventStateUpdate, copySession(s))
}

func (o *Orchestrator) enterChargingLocked(room *Room) {
	s := room.Session
	s.Phase = models.PhaseChargingPower
	s.RoundDeadline = time.Now().Add(o.timings.Power)
	s.UpdatedAt = time.Now()

	o.armDeadlineLocked(room, o.timings.Power)
	o.persist(s)
	o.broadcast.Publish(s.ID, EventStateUpdate, copySession(s))
}

// enterExecutingLocked gates the flip phase on deposit verification. An
// unverified room stays in CHARGING_POWER with a fresh deadline until
// the sweep either verifies or evicts it.
func (o *Orchestrator) enterExecutingLocked(room *Room) {
	s := room.Session

	if !s.DepositState.Verified {
		s.RoundDeadline = time.Now().Add(o.timings.Power)
		o.armDeadlineLocked(room, o.timings.Power)
		log.Printf("[GAME] Session %s waiting on deposit verification", s.ID)
		o.broadcast.Publish(s.ID, EventStateUpdate, copySession(s))
		return
	}

	room.stopAllChargesLocked()
	s.Phase = models.PhaseExecutingFlips
	s.RoundDeadline = time.Now().Add(o.timings.Flip)
	s.UpdatedAt = time.Now()

	o.armDeadlineLocked(room, o.timings.Flip)
	o.persist(s)
	o.broadcast.Publish(s.ID, EventStateUpdate, copySession(s))
}

// resolveRoundLocked applies the elimination rule: survivors are the
// active players whose flip matched the round target. A round no one
// survives is replayed with the same players.
func (o *Orchestrator) resolveRoundLocked(room *Room) {
	s := room.Session
	room.stopRoundTimerLocked()

	s.Phase = models.PhaseRoundResolved
	s.UpdatedAt = time.Now()

	var survivors, losers []*models.PlayerState
	for _, p := range s.ActivePlayers() {
		if p.FlipResult == s.RoundTarget {
			survivors = append(survivors, p)
		} else {
			losers = append(losers, p)
		}
	}

	eliminated := []string{}
	if len(survivors) > 0 {
		for _, p := range losers {
			p.Eliminated = true
			eliminated = append(eliminated, p.Address)
		}
	}

	o.broadcast.Publish(s.ID, EventRoundResolved, map[string]interface{}{
		"round":      s.RoundNumber,
		"target":     s.RoundTarget,
		"eliminated": eliminated,
		"survivors":  len(s.ActivePlayers()),
	})

	active := s.ActivePlayers()
	switch {
	case len(active) == 1:
		o.completeLocked(room, active[0].Address)
	case len(active) == 0:
		// Unreachable with the replay rule, but never leave a room stuck.
		o.completeAsCancelledLocked(room, "no surviving players")
	default:
		o.startRoundLocked(room)
	}
}

func (o *Orchestrator) completeLocked(room *Room, winner string) {
	s := room.Session
	room.stopRoundTimerLocked()
	room.stopAllChargesLocked()

	s.Phase = models.PhaseCompleted
	s.Winner = winner
	s.UpdatedAt = time.Now()
	o.persist(s)

	log.Printf("[GAME] Session %s completed, winner %s after %d rounds", s.ID, winner, s.RoundNumber)
	o.broadcast.Publish(s.ID, EventSessionCompleted, map[string]interface{}{
		"winner": winner,
		"rounds": s.RoundNumber,
	})
	o.broadcast.Publish(s.ID, EventStateUpdate, copySession(s))

	if o.timings.Retention > 0 {
		id := s.ID
		time.AfterFunc(o.timings.Retention, func() {
			o.store.Remove(id)
		})
	}
}

func (o *Orchestrator) completeAsCancelledLocked(room *Room, reason string) {
	s := room.Session
	room.stopRoundTimerLocked()
	room.stopAllChargesLocked()

	s.Phase = models.PhaseCancelled
	s.CancelReason = reason
	s.UpdatedAt = time.Now()
	o.persist(s)

	o.broadcast.Publish(s.ID, EventSessionCancelled, map[string]interface{}{
		"reason": reason,
	})
}

// armDeadlineLocked schedules deadline handling for the current phase
// and round. The handler re-checks both so a stale timer is a no-op.
func (o *Orchestrator) armDeadlineLocked(room *Room, d time.Duration) {
	id := room.Session.ID
	phase := room.Session.Phase
	round := room.Session.RoundNumber

	room.armRoundTimerLocked(d, func() {
		o.handleDeadline(id, phase, round)
	})
}

// handleDeadline processes deadline expiry as a regular input event: a
// slow or disconnected player can never stall the room.
func (o *Orchestrator) handleDeadline(id string, phase models.Phase, round int) {
	err := o.store.With(id, func(room *Room) error {
		s := room.Session
		if s.Phase != phase || s.RoundNumber != round {
			return nil // stale timer
		}

		log.Printf("[GAME] Session %s deadline expired in %s (round %d)", id, phase, round)

		switch phase {
		case models.PhaseChoosing:
			// Players who never chose are out of the round.
			for _, p := range s.ActivePlayers() {
				if p.Choice == "" {
					p.Eliminated = true
				}
			}
			active := s.ActivePlayers()
			switch {
			case len(active) == 0:
				o.completeAsCancelledLocked(room, "choice deadline expired with no participants")
			case len(active) == 1:
				o.completeLocked(room, active[0].Address)
			default:
				o.enterChargingLocked(room)
			}

		case models.PhaseChargingPower:
			// A charge never released lands at zero power.
			for _, p := range s.ActivePlayers() {
				if !p.PowerSet {
					room.stopChargeLocked(p.Address)
					p.Power = 0
					p.PowerSet = true
				}
			}
			o.enterExecutingLocked(room)

		case models.PhaseExecutingFlips:
			// Flip on behalf of anyone who stalled, then resolve.
			for _, p := range s.ActivePlayers() {
				if p.FlipResult == "" {
					if _, err := o.flipPlayerLocked(room, p); err != nil {
						log.Printf("[GAME] Auto-flip failed for %s in %s: %v", p.Address, id, err)
						p.Eliminated = true
					}
				}
			}
			o.resolveRoundLocked(room)
		}
		return nil
	})
	if err != nil && !errors.Is(err, models.ErrSessionNotFound) {
		log.Printf("[GAME] Deadline handling failed for %s: %v", id, err)
	}
}

func (o *Orchestrator) persist(session *models.GameSession) {
	if err := o.repo.SaveSession(session); err != nil {
		log.Printf("[GAME] Failed to persist session %s: %v", session.ID, err)
	}
}

func (o *Orchestrator) commitHashFor(flipID string) string {
	if flip, ok := o.fairness.GetFlip(flipID); ok {
		return flip.CommitHash
	}
	return ""
}

func allChosen(s *models.GameSession) bool {
	for _, p := range s.ActivePlayers() {
		if p.Choice == "" {
			return false
		}
	}
	return true
}

func allCharged(s *models.GameSession) bool {
	for _, p := range s.ActivePlayers() {
		if !p.PowerSet {
			return false
		}
	}
	return true
}

func allFlipped(s *models.GameSession) bool {
	for _, p := range s.ActivePlayers() {
		if p.FlipResult == "" {
			return false
		}
	}
	return true
}

func drawTargetSide() models.Side {
	// crypto/rand.Read never returns an error as of Go 1.24.
	var b [1]byte
	rand.Read(b[:])
	if b[0]%2 == 0 {
		return models.SideHeads
	}
	return models.SideTails
}

// copySession produces a detached snapshot safe to hand to observers.
func copySession(s *models.GameSession) *models.GameSession {
	out := *s

	out.Players = make(map[string]*models.PlayerState, len(s.Players))
	for addr, p := range s.Players {
		cp := *p
		out.Players[addr] = &cp
	}
	out.PlayerOrder = append([]string(nil), s.PlayerOrder...)
	out.Spectators = append([]string(nil), s.Spectators...)

	return &out
}
