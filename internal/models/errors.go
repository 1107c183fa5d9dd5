package models

import "errors"

// Rejections are synchronous and never mutate room state. Handlers map
// them onto HTTP/WS error payloads with errors.Is.
var (
	ErrInvalidRequest      = errors.New("invalid session request")
	ErrDuplicateSession    = errors.New("session id already exists")
	ErrSessionNotFound     = errors.New("session not found")
	ErrRoomFull            = errors.New("room full")
	ErrWrongPhase          = errors.New("action not valid in current phase")
	ErrAlreadyJoined       = errors.New("address already joined")
	ErrNotCreator          = errors.New("only the creator may start early")
	ErrInsufficientPlayers = errors.New("at least 2 players required")
	ErrNotAPlayer          = errors.New("address is not a player in this room")
	ErrEliminated          = errors.New("player is eliminated")
	ErrNotReadyToFlip      = errors.New("choice and power required before flipping")
	ErrDepositUnverified   = errors.New("deposit not yet confirmed")
	ErrSessionEnded        = errors.New("session already ended")

	ErrInvalidFlipRequest = errors.New("invalid flip request")
	ErrFlipNotFound       = errors.New("flip session not found")
	ErrAlreadyResolved    = errors.New("flip already resolved")
	ErrFlipUnresolved     = errors.New("flip not yet resolved")

	// ErrLedgerUnavailable marks a soft external failure: the sweep
	// retries it next interval and never treats it as "deposit absent".
	ErrLedgerUnavailable = errors.New("ledger query failed")

	// ErrFairnessViolation indicates a hash or signature mismatch on
	// verification. Never expected in correct operation.
	ErrFairnessViolation = errors.New("fairness verification failed")
)
