package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateSessionID() string {
	return fmt.Sprintf("room_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateFlipID() string {
	return fmt.Sprintf("flip_%s", uuid.New().String())
}

// ClampPower bounds a charge value to the playable range.
func ClampPower(power float64) float64 {
	if power < 0 {
		return 0
	}
	if power > 100 {
		return 100
	}
	return power
}

type CreateSessionRequest struct {
	ID         string     `json:"id"`
	MaxPlayers int        `json:"max_players" binding:"required,min=2,max=16"`
	EntryFee   float64    `json:"entry_fee"`
	ServiceFee float64    `json:"service_fee"`
	Collateral Collateral `json:"collateral" binding:"required"`
}

func (r *CreateSessionRequest) Validate() error {
	if r.MaxPlayers < 2 || r.MaxPlayers > 16 {
		return fmt.Errorf("max_players must be between 2 and 16")
	}
	if r.Collateral.Contract == "" || r.Collateral.TokenID == "" {
		return fmt.Errorf("collateral contract and token_id are required")
	}
	if r.EntryFee < 0 || r.ServiceFee < 0 {
		return fmt.Errorf("fees cannot be negative")
	}
	return nil
}

type SetChoiceRequest struct {
	Side Side `json:"side" binding:"required"`
}

type StopPowerRequest struct {
	Power float64 `json:"power"`
}

type CoinSkinRequest struct {
	Skin string `json:"skin" binding:"required"`
}
