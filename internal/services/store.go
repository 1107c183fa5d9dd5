package services

import (
	"sync"
	"time"

	"coinroyale-backend/internal/models"
)

// Room pairs a session with the synchronization it needs: a per-room
// mutex so actions on one room serialize without blocking other rooms,
// the round deadline timer, and the stop channels of any live
// power-charge broadcast tickers.
type Room struct {
	mu      sync.Mutex
	Session *models.GameSession

	roundTimer  *time.Timer
	chargeStops map[string]chan struct{}
}

func newRoom(session *models.GameSession) *Room {
	return &Room{
		Session:     session,
		chargeStops: make(map[string]chan struct{}),
	}
}

// SessionStore is the in-memory registry of active rooms. The registry
// mutex only guards the map itself; all session state is guarded by the
// per-room mutex so unrelated rooms stay independent under load.
type SessionStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		rooms: make(map[string]*Room),
	}
}

// Put registers a new room. Fails if the id is already taken.
func (s *SessionStore) Put(session *models.GameSession) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[session.ID]; exists {
		return nil, models.ErrDuplicateSession
	}

	room := newRoom(session)
	s.rooms[session.ID] = room
	return room, nil
}

func (s *SessionStore) Get(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	return room, ok
}

// Remove drops a room from the registry and tears down its timers.
func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	room, ok := s.rooms[id]
	delete(s.rooms, id)
	s.mu.Unlock()

	if !ok {
		return
	}

	room.mu.Lock()
	room.stopRoundTimerLocked()
	room.stopAllChargesLocked()
	room.mu.Unlock()
}

// IDs returns a snapshot of registered room ids. The sweep iterates over
// this instead of holding the registry lock while touching rooms.
func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// With runs fn with the room locked. Returns ErrSessionNotFound for
// unknown ids so callers reject unknown rooms uniformly.
func (s *SessionStore) With(id string, fn func(*Room) error) error {
	room, ok := s.Get(id)
	if !ok {
		return models.ErrSessionNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	return fn(room)
}

// armRoundTimerLocked replaces the room's deadline timer. Caller holds
// the room mutex.
func (r *Room) armRoundTimerLocked(d time.Duration, fire func()) {
	r.stopRoundTimerLocked()
	r.roundTimer = time.AfterFunc(d, fire)
}

func (r *Room) stopRoundTimerLocked() {
	if r.roundTimer != nil {
		r.roundTimer.Stop()
		r.roundTimer = nil
	}
}

// startChargeLocked registers a stop channel for a player's power
// ticker, cancelling any previous one for the same player first.
func (r *Room) startChargeLocked(address string) chan struct{} {
	r.stopChargeLocked(address)
	stop := make(chan struct{})
	r.chargeStops[address] = stop
	return stop
}

func (r *Room) stopChargeLocked(address string) {
	if stop, ok := r.chargeStops[address]; ok {
		close(stop)
		delete(r.chargeStops, address)
	}
}

func (r *Room) stopAllChargesLocked() {
	for addr, stop := range r.chargeStops {
		close(stop)
		delete(r.chargeStops, addr)
	}
}
