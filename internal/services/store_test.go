package services

import (
	"errors"
	"testing"
	"time"

	"coinroyale-backend/internal/models"
)

func testSession(id string) *models.GameSession {
	return &models.GameSession{
		ID:         id,
		Creator:    "0xa",
		MaxPlayers: 4,
		Phase:      models.PhaseFilling,
		Players: map[string]*models.PlayerState{
			"0xa": {Address: "0xa", SlotNumber: 1},
		},
		PlayerOrder:    []string{"0xa"},
		CurrentPlayers: 1,
		CreatedAt:      time.Now(),
	}
}

func TestStorePutAndGet(t *testing.T) {
	store := NewSessionStore()

	room, err := store.Put(testSession("room-1"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if room.Session.ID != "room-1" {
		t.Errorf("Expected room-1, got %s", room.Session.ID)
	}

	got, ok := store.Get("room-1")
	if !ok {
		t.Fatal("Get should find the stored room")
	}
	if got != room {
		t.Error("Get should return the same room instance")
	}

	if _, ok := store.Get("missing"); ok {
		t.Error("Get should miss on unknown id")
	}
}

func TestStoreRejectsDuplicates(t *testing.T) {
	store := NewSessionStore()

	if _, err := store.Put(testSession("room-1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	_, err := store.Put(testSession("room-1"))
	if !errors.Is(err, models.ErrDuplicateSession) {
		t.Errorf("Expected ErrDuplicateSession, got %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	store := NewSessionStore()

	room, _ := store.Put(testSession("room-1"))

	// A pending round timer must not outlive the room.
	fired := make(chan struct{}, 1)
	room.mu.Lock()
	room.armRoundTimerLocked(20*time.Millisecond, func() {
		fired <- struct{}{}
	})
	room.mu.Unlock()

	store.Remove("room-1")

	if _, ok := store.Get("room-1"); ok {
		t.Error("Room should be gone after Remove")
	}
	select {
	case <-fired:
		t.Error("Round timer fired after Remove")
	case <-time.After(60 * time.Millisecond):
	}

	// Removing twice is harmless.
	store.Remove("room-1")
}

func TestStoreIDsAndCount(t *testing.T) {
	store := NewSessionStore()

	if store.Count() != 0 {
		t.Errorf("Expected empty store, got %d", store.Count())
	}

	store.Put(testSession("room-1"))
	store.Put(testSession("room-2"))

	if store.Count() != 2 {
		t.Errorf("Expected 2 rooms, got %d", store.Count())
	}

	ids := store.IDs()
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen["room-1"] || !seen["room-2"] {
		t.Errorf("IDs missing rooms: %v", ids)
	}
}

func TestStoreWith(t *testing.T) {
	store := NewSessionStore()
	store.Put(testSession("room-1"))

	err := store.With("room-1", func(room *Room) error {
		room.Session.CurrentPlayers = 3
		return nil
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}

	room, _ := store.Get("room-1")
	if room.Session.CurrentPlayers != 3 {
		t.Errorf("Mutation did not stick: %d", room.Session.CurrentPlayers)
	}

	err = store.With("missing", func(room *Room) error { return nil })
	if !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	wantErr := errors.New("boom")
	err = store.With("room-1", func(room *Room) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("With should surface the callback error, got %v", err)
	}
}

func TestChargeStopChannels(t *testing.T) {
	store := NewSessionStore()
	room, _ := store.Put(testSession("room-1"))

	room.mu.Lock()
	stop := room.startChargeLocked("0xa")
	room.mu.Unlock()

	// Restarting a charge closes the previous stop channel.
	room.mu.Lock()
	stop2 := room.startChargeLocked("0xa")
	room.mu.Unlock()

	select {
	case <-stop:
	default:
		t.Error("First stop channel should be closed after restart")
	}

	room.mu.Lock()
	room.stopChargeLocked("0xa")
	room.mu.Unlock()

	select {
	case <-stop2:
	default:
		t.Error("Stop channel should be closed after stopChargeLocked")
	}

	// Stopping an address with no active charge is a no-op.
	room.mu.Lock()
	room.stopChargeLocked("0xb")
	room.mu.Unlock()
}
