package models

import "time"

type FlipStatus string

const (
	FlipInProgress FlipStatus = "IN_PROGRESS"
	FlipResolved   FlipStatus = "RESOLVED"
)

// AnimationParams drive the client-side coin animation. Derived
// deterministically from power and skin; purely cosmetic.
type AnimationParams struct {
	DurationMs      int     `json:"duration_ms"`
	SpeedMultiplier float64 `json:"speed_multiplier"`
}

// FlipSession is one commit-reveal flip attempt. The seed stays
// server-side until the flip is resolved; CommitHash is public from the
// moment the session starts.
type FlipSession struct {
	FlipID        string  `json:"flip_id" redis:"flip_id"`
	GameID        string  `json:"game_id" redis:"game_id"`
	PlayerAddress string  `json:"player_address" redis:"player_address"`
	Choice        Side    `json:"choice" redis:"choice"`
	Power         float64 `json:"power" redis:"power"`
	CoinSkin      string  `json:"coin_skin,omitempty" redis:"coin_skin"`

	Seed       string `json:"seed,omitempty" redis:"seed"`
	CommitHash string `json:"commit_hash" redis:"commit_hash"`

	Status     FlipStatus `json:"status" redis:"status"`
	Result     Side       `json:"result,omitempty" redis:"result"`
	Signature  string     `json:"signature,omitempty" redis:"signature"`
	ResolvedAt time.Time  `json:"resolved_at,omitempty" redis:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at" redis:"created_at"`

	Animation AnimationParams `json:"animation" redis:"animation"`
}

// FlipVerification is the audit view published to third parties.
type FlipVerification struct {
	FlipID     string `json:"flip_id"`
	CommitHash string `json:"commit_hash"`
	Result     Side   `json:"result"`
	Seed       string `json:"seed"`
	Signature  string `json:"signature"`
	Verified   bool   `json:"verified"`
}
