package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coinroyale-backend/internal/services"
)

type AuthHandler struct {
	jwtService *services.JWTService
}

func NewAuthHandler(jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{jwtService: jwtService}
}

// Authenticate issues a bearer token for a wallet address. Signature
// verification of the wallet challenge happens in the wallet-connect
// collaborator; this service only binds the verified address to a token.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	address := strings.ToLower(strings.TrimSpace(req.Address))
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address"})
		return
	}

	token, err := h.jwtService.GenerateToken(address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"address": address,
	})
}
