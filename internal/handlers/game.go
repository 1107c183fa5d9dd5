package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coinroyale-backend/internal/models"
	"coinroyale-backend/internal/services"
)

type GameHandler struct {
	orchestrator *services.Orchestrator
	fairness     *services.FairnessEngine
	redisService *services.RedisService
}

func NewGameHandler(orchestrator *services.Orchestrator, fairness *services.FairnessEngine, redisService *services.RedisService) *GameHandler {
	return &GameHandler{
		orchestrator: orchestrator,
		fairness:     fairness,
		redisService: redisService,
	}
}

// statusFor maps the engine's typed rejections onto HTTP codes. Typed
// errors go only to the requester, never room-wide.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrFlipNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateSession),
		errors.Is(err, models.ErrAlreadyJoined),
		errors.Is(err, models.ErrRoomFull),
		errors.Is(err, models.ErrWrongPhase),
		errors.Is(err, models.ErrAlreadyResolved),
		errors.Is(err, models.ErrSessionEnded):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotCreator),
		errors.Is(err, models.ErrEliminated),
		errors.Is(err, models.ErrNotAPlayer):
		return http.StatusForbidden
	case errors.Is(err, models.ErrLedgerUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func rejectWith(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
	})
}

func (h *GameHandler) rateLimited(c *gin.Context, action string, limit int) bool {
	address := c.GetString("address")

	allowed, err := h.redisService.CheckRateLimit(address, action, limit, time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return true
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please wait."})
		return true
	}
	return false
}

func (h *GameHandler) CreateSession(c *gin.Context) {
	address := c.GetString("address")

	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if h.rateLimited(c, "create", services.DefaultRateLimitJoin) {
		return
	}

	session, err := h.orchestrator.CreateSession(req.ID, address, &req)
	if err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"game":    session,
	})
}

func (h *GameHandler) JoinSession(c *gin.Context) {
	address := c.GetString("address")
	id := c.Param("id")

	if h.rateLimited(c, "join", services.DefaultRateLimitJoin) {
		return
	}

	if err := h.orchestrator.AddPlayer(id, address); err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) Spectate(c *gin.Context) {
	address := c.GetString("address")
	id := c.Param("id")

	if err := h.orchestrator.AddSpectator(id, address); err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) StartEarly(c *gin.Context) {
	address := c.GetString("address")
	id := c.Param("id")

	if err := h.orchestrator.StartEarly(id, address); err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) ConfirmDeposit(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		TxHash string `json:"tx_hash" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if err := h.orchestrator.MarkDeposited(id, req.TxHash); err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) SetChoice(c *gin.Context) {
	address := c.GetString("address")
	id := c.Param("id")

	var req models.SetChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if err := h.orchestrator.SetChoice(id, address, req.Side); err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) StartPowerCharge(c *gin.Context) {
	address := c.GetString("address")
	id := c.Param("id")

	if err := h.orchestrator.StartPowerCharge(id, address); err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) StopPowerCharge(c *gin.Context) {
	address := c.GetString("address")
	id := c.Param("id")

	var req models.StopPowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if err := h.orchestrator.StopPowerCharge(id, address, req.Power); err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) ExecuteFlip(c *gin.Context) {
	address := c.GetString("address")
	id := c.Param("id")

	if h.rateLimited(c, "flip", services.DefaultRateLimitFlip) {
		return
	}

	outcome, err := h.orchestrator.ExecuteFlip(id, address)
	if err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flip":    outcome,
	})
}

func (h *GameHandler) UpdateCoinSkin(c *gin.Context) {
	address := c.GetString("address")
	id := c.Param("id")

	var req models.CoinSkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if err := h.orchestrator.UpdateCoinSkin(id, address, req.Skin); err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"games":   h.orchestrator.ListSessions(),
	})
}

func (h *GameHandler) GetState(c *gin.Context) {
	id := c.Param("id")

	snapshot, err := h.orchestrator.GetFullState(id)
	if err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"game":    snapshot,
	})
}

func (h *GameHandler) ConfirmSettlement(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		CreatorPaid bool `json:"creator_paid"`
		NFTClaimed  bool `json:"nft_claimed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if err := h.orchestrator.ConfirmSettlement(id, req.CreatorPaid, req.NFTClaimed); err != nil {
		rejectWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifyFlip audits a resolved flip: in-memory first, then the durable
// record for flips that aged out.
func (h *GameHandler) VerifyFlip(c *gin.Context) {
	flipID := c.Param("flipId")

	verification, err := h.fairness.VerifyFlipResult(flipID)
	if err != nil && errors.Is(err, models.ErrFlipNotFound) {
		record, rerr := h.redisService.GetFlipRecord(flipID)
		if rerr != nil {
			rejectWith(c, rerr)
			return
		}
		verification, err = h.fairness.VerifyRecord(record)
	}
	if err != nil {
		rejectWith(c, err)
		return
	}

	status := http.StatusOK
	if !verification.Verified {
		// Hash or signature mismatch is always surfaced loudly.
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"success":      verification.Verified,
		"verification": verification,
	})
}
