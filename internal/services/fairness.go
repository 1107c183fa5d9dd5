package services

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sync"
	"time"

	"coinroyale-backend/internal/models"
)

// Physics constants for the outcome simulation. The flip is decided by a
// discrete decay of angular velocity seeded entirely from the committed
// seed, so any holder of the seed can reproduce the result.
const (
	simStep          = 1.0 / 60.0
	simDecay         = 0.985
	simStopThreshold = 0.5
	minAngularVel    = 20.0
	maxAngularVel    = 80.0
)

type skinProfile struct {
	Speed    float64
	Duration float64
}

// Skin material multipliers are cosmetic: they scale animation pacing
// and the base angular velocity but never bias the outcome distribution,
// since the final angle is uniform in the seed either way.
var skinProfiles = map[string]skinProfile{
	"default":  {Speed: 1.0, Duration: 1.0},
	"gold":     {Speed: 0.9, Duration: 1.2},
	"silver":   {Speed: 1.1, Duration: 0.9},
	"obsidian": {Speed: 0.8, Duration: 1.4},
	"neon":     {Speed: 1.3, Duration: 0.8},
}

func profileForSkin(skin string) skinProfile {
	if p, ok := skinProfiles[skin]; ok {
		return p
	}
	return skinProfiles["default"]
}

// FlipStart is what the engine publishes at commit time. The seed is
// deliberately absent.
type FlipStart struct {
	FlipID     string                 `json:"flip_id"`
	CommitHash string                 `json:"commit_hash"`
	Animation  models.AnimationParams `json:"animation"`
}

// FlipResolution is the reveal: result, seed and a signature binding the
// two to the flip id.
type FlipResolution struct {
	FlipID    string      `json:"flip_id"`
	Result    models.Side `json:"result"`
	Seed      string      `json:"seed"`
	Signature string      `json:"signature"`
}

// FairnessEngine produces commit-reveal coin flips. The commit hash is
// observable before any resolution; resolution is terminal and
// reproducible from the seed alone.
type FairnessEngine struct {
	signingKey []byte

	mu    sync.RWMutex
	flips map[string]*models.FlipSession
}

func NewFairnessEngine(signingKey string) *FairnessEngine {
	return &FairnessEngine{
		signingKey: []byte(signingKey),
		flips:      make(map[string]*models.FlipSession),
	}
}

// StartFlipSession fixes the seed for one player's flip and publishes
// only its hash. Animation parameters are derived from power and skin.
func (fe *FairnessEngine) StartFlipSession(gameID, playerAddress string, choice models.Side, power float64, skin string) (*FlipStart, error) {
	if !choice.Valid() {
		return nil, fmt.Errorf("%w: side must be heads or tails", models.ErrInvalidFlipRequest)
	}
	if power < 0 || power > 100 {
		return nil, fmt.Errorf("%w: power must be within [0,100]", models.ErrInvalidFlipRequest)
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate seed: %v", err)
	}

	commit := sha256.Sum256(seed)

	flip := &models.FlipSession{
		FlipID:        models.GenerateFlipID(),
		GameID:        gameID,
		PlayerAddress: playerAddress,
		Choice:        choice,
		Power:         power,
		CoinSkin:      skin,
		Seed:          hex.EncodeToString(seed),
		CommitHash:    hex.EncodeToString(commit[:]),
		Status:        models.FlipInProgress,
		CreatedAt:     time.Now(),
		Animation:     animationParams(power, skin),
	}

	fe.mu.Lock()
	fe.flips[flip.FlipID] = flip
	fe.mu.Unlock()

	return &FlipStart{
		FlipID:     flip.FlipID,
		CommitHash: flip.CommitHash,
		Animation:  flip.Animation,
	}, nil
}

// ResolveFlipSession reveals the outcome. A second call returns the
// original resolution together with ErrAlreadyResolved and mutates
// nothing, so no two resolutions of the same flip can diverge.
func (fe *FairnessEngine) ResolveFlipSession(flipID string) (*FlipResolution, error) {
	fe.mu.Lock()
	defer fe.mu.Unlock()

	flip, ok := fe.flips[flipID]
	if !ok {
		return nil, models.ErrFlipNotFound
	}

	if flip.Status == models.FlipResolved {
		return &FlipResolution{
			FlipID:    flip.FlipID,
			Result:    flip.Result,
			Seed:      flip.Seed,
			Signature: flip.Signature,
		}, models.ErrAlreadyResolved
	}

	seed, err := hex.DecodeString(flip.Seed)
	if err != nil {
		return nil, fmt.Errorf("corrupt seed for flip %s: %v", flipID, err)
	}

	flip.Result = computeOutcome(seed, flip.Power, flip.CoinSkin)
	flip.Signature = fe.sign(flip.FlipID, flip.Result, flip.Seed)
	flip.Status = models.FlipResolved
	flip.ResolvedAt = time.Now()

	return &FlipResolution{
		FlipID:    flip.FlipID,
		Result:    flip.Result,
		Seed:      flip.Seed,
		Signature: flip.Signature,
	}, nil
}

// VerifyFlipResult recomputes the commitment and signature for a
// resolved flip. Pure read.
func (fe *FairnessEngine) VerifyFlipResult(flipID string) (*models.FlipVerification, error) {
	fe.mu.RLock()
	flip, ok := fe.flips[flipID]
	fe.mu.RUnlock()

	if !ok {
		return nil, models.ErrFlipNotFound
	}
	if flip.Status != models.FlipResolved {
		return nil, models.ErrFlipUnresolved
	}

	return fe.verify(flip), nil
}

// VerifyRecord audits a flip record loaded from persistent storage, for
// flips that have already aged out of memory.
func (fe *FairnessEngine) VerifyRecord(flip *models.FlipSession) (*models.FlipVerification, error) {
	if flip.Status != models.FlipResolved {
		return nil, models.ErrFlipUnresolved
	}
	return fe.verify(flip), nil
}

func (fe *FairnessEngine) verify(flip *models.FlipSession) *models.FlipVerification {
	verified := false

	// A truncated or tampered stored seed must fail verification, not
	// crash it: computeOutcome reads 16 bytes of noise from the seed.
	if seed, err := hex.DecodeString(flip.Seed); err == nil && len(seed) >= 16 {
		commit := sha256.Sum256(seed)
		hashOK := hex.EncodeToString(commit[:]) == flip.CommitHash

		expectedSig := fe.sign(flip.FlipID, flip.Result, flip.Seed)
		sigOK := hmac.Equal([]byte(expectedSig), []byte(flip.Signature))

		resultOK := computeOutcome(seed, flip.Power, flip.CoinSkin) == flip.Result

		verified = hashOK && sigOK && resultOK
	}

	return &models.FlipVerification{
		FlipID:     flip.FlipID,
		CommitHash: flip.CommitHash,
		Result:     flip.Result,
		Seed:       flip.Seed,
		Signature:  flip.Signature,
		Verified:   verified,
	}
}

// GetFlip returns the stored session for a flip id, if still in memory.
func (fe *FairnessEngine) GetFlip(flipID string) (*models.FlipSession, bool) {
	fe.mu.RLock()
	defer fe.mu.RUnlock()

	flip, ok := fe.flips[flipID]
	return flip, ok
}

// Forget drops a flip from memory once its audit record is persisted.
func (fe *FairnessEngine) Forget(flipID string) {
	fe.mu.Lock()
	delete(fe.flips, flipID)
	fe.mu.Unlock()
}

func (fe *FairnessEngine) sign(flipID string, result models.Side, seedHex string) string {
	h := hmac.New(sha256.New, fe.signingKey)
	fmt.Fprintf(h, "%s:%s:%s", flipID, result, seedHex)
	return hex.EncodeToString(h.Sum(nil))
}

// computeOutcome runs the decay simulation. Two noise values come from
// the seed: one perturbs the launch angular velocity, the other sets the
// initial angle. The coin "lands" when angular velocity falls below the
// stop threshold; the final angle modulo 2pi decides the face.
func computeOutcome(seed []byte, power float64, skin string) models.Side {
	velNoise := float64(binary.BigEndian.Uint64(seed[0:8])) / float64(math.MaxUint64)
	angleNoise := float64(binary.BigEndian.Uint64(seed[8:16])) / float64(math.MaxUint64)

	profile := profileForSkin(skin)

	baseVel := (minAngularVel + (power/100.0)*(maxAngularVel-minAngularVel)) * profile.Speed
	vel := baseVel * (0.9 + 0.2*velNoise)
	angle := angleNoise * 2 * math.Pi

	for vel >= simStopThreshold {
		angle += vel * simStep
		vel *= simDecay
	}

	angle = math.Mod(angle, 2*math.Pi)
	if angle < math.Pi {
		return models.SideHeads
	}
	return models.SideTails
}

func animationParams(power float64, skin string) models.AnimationParams {
	profile := profileForSkin(skin)

	durationMs := int(3000 * profile.Duration * (1 + power/200.0))
	speed := profile.Speed * (0.5 + power/100.0)

	return models.AnimationParams{
		DurationMs:      durationMs,
		SpeedMultiplier: math.Round(speed*100) / 100,
	}
}
