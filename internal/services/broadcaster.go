package services

// Event types pushed to room observers.
const (
	EventStateUpdate      = "state_update"
	EventJoinSuccess      = "join_success"
	EventPlayerChose      = "player_chose"
	EventPowerUpdate      = "power_update"
	EventFlipCommitted    = "flip_committed"
	EventFlipResult       = "flip_result"
	EventRoundResolved    = "round_resolved"
	EventSessionCancelled = "session_cancelled"
	EventSessionCompleted = "session_completed"
)

// Broadcaster fans engine events out to every observer of a room.
// Fire-and-forget: the engine never assumes delivery.
type Broadcaster interface {
	Publish(roomID, eventType string, payload interface{})
}

// NopBroadcaster discards everything. Used when no transport is wired.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(roomID, eventType string, payload interface{}) {}
