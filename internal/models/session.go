package models

import "time"

type Phase string

const (
	PhaseFilling       Phase = "FILLING"
	PhaseChoosing      Phase = "CHOOSING"
	PhaseChargingPower Phase = "CHARGING_POWER"
	PhaseExecutingFlips Phase = "EXECUTING_FLIPS"
	PhaseRoundResolved Phase = "ROUND_RESOLVED"
	PhaseCompleted     Phase = "COMPLETED"
	PhaseCancelled     Phase = "CANCELLED"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseCancelled
}

type Side string

const (
	SideHeads Side = "heads"
	SideTails Side = "tails"
)

func (s Side) Valid() bool {
	return s == SideHeads || s == SideTails
}

// Collateral is the NFT at stake for a session. Immutable after creation.
type Collateral struct {
	Contract   string `json:"contract" redis:"contract"`
	TokenID    string `json:"token_id" redis:"token_id"`
	Name       string `json:"name" redis:"name"`
	Image      string `json:"image" redis:"image"`
	Collection string `json:"collection" redis:"collection"`
}

// DepositState tracks whether the collateral has actually been escrowed
// on chain. Verified gates progression out of FILLING.
type DepositState struct {
	Deposited     bool      `json:"deposited" redis:"deposited"`
	Verified      bool      `json:"verified" redis:"verified"`
	DepositTxHash string    `json:"deposit_tx_hash,omitempty" redis:"deposit_tx_hash"`
	LastCheckedAt time.Time `json:"last_checked_at" redis:"last_checked_at"`
}

// Settlement flags are mutated only by withdrawal confirmations after
// the session completes.
type Settlement struct {
	CreatorPaid bool `json:"creator_paid" redis:"creator_paid"`
	NFTClaimed  bool `json:"nft_claimed" redis:"nft_claimed"`
}

type PlayerState struct {
	Address    string `json:"address" redis:"address"`
	SlotNumber int    `json:"slot_number" redis:"slot_number"`
	Eliminated bool   `json:"eliminated" redis:"eliminated"`

	// Cleared at the start of each round.
	Choice     Side    `json:"choice,omitempty" redis:"choice"`
	Power      float64 `json:"power" redis:"power"`
	PowerSet   bool    `json:"power_set" redis:"power_set"`
	FlipResult Side    `json:"flip_result,omitempty" redis:"flip_result"`
	FlipID     string  `json:"flip_id,omitempty" redis:"flip_id"`

	// Opaque display data, passed through to observers untouched.
	CoinSkin string `json:"coin_skin,omitempty" redis:"coin_skin"`
}

type GameSession struct {
	ID             string     `json:"id" redis:"id"`
	Creator        string     `json:"creator" redis:"creator"`
	MaxPlayers     int        `json:"max_players" redis:"max_players"`
	CurrentPlayers int        `json:"current_players" redis:"current_players"`
	EntryFee       float64    `json:"entry_fee" redis:"entry_fee"`
	ServiceFee     float64    `json:"service_fee" redis:"service_fee"`
	Collateral     Collateral `json:"collateral" redis:"collateral"`

	// PlayerOrder preserves join order; slot numbers are stable for the
	// lifetime of the session.
	Players     map[string]*PlayerState `json:"players" redis:"players"`
	PlayerOrder []string                `json:"player_order" redis:"player_order"`
	Spectators  []string                `json:"spectators,omitempty" redis:"spectators"`

	Phase         Phase     `json:"phase" redis:"phase"`
	RoundNumber   int       `json:"round_number" redis:"round_number"`
	RoundTarget   Side      `json:"round_target,omitempty" redis:"round_target"`
	RoundDeadline time.Time `json:"round_deadline" redis:"round_deadline"`
	Winner        string    `json:"winner,omitempty" redis:"winner"`
	CancelReason  string    `json:"cancel_reason,omitempty" redis:"cancel_reason"`

	DepositState DepositState `json:"deposit_state" redis:"deposit_state"`
	Settlement   Settlement   `json:"settlement" redis:"settlement"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	UpdatedAt time.Time `json:"updated_at" redis:"updated_at"`
}

// Player returns the state for an address, or nil if not joined.
func (g *GameSession) Player(address string) *PlayerState {
	if g.Players == nil {
		return nil
	}
	return g.Players[address]
}

// ActivePlayers returns non-eliminated players in join order.
func (g *GameSession) ActivePlayers() []*PlayerState {
	var active []*PlayerState
	for _, addr := range g.PlayerOrder {
		if p := g.Players[addr]; p != nil && !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

// IsSpectator reports whether the address joined as an observer.
func (g *GameSession) IsSpectator(address string) bool {
	for _, s := range g.Spectators {
		if s == address {
			return true
		}
	}
	return false
}
