package services

import "coinroyale-backend/internal/models"

// GameRepository is the durable record behind the in-memory store.
// Sessions keep their status, deposit flags, winner and settlement flags
// across process restarts; resolved flips are retained for audit.
type GameRepository interface {
	SaveSession(session *models.GameSession) error
	GetSession(id string) (*models.GameSession, error)
	DeleteSession(id string) error
	ListSessionIDs() ([]string, error)

	SaveFlipRecord(flip *models.FlipSession) error
	GetFlipRecord(flipID string) (*models.FlipSession, error)
}
