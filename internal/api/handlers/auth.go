package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/se1907800-collab/mediavalut/internal/utils"
)

// Login checks the shared passphrase and issues a session token. This is an
// access gate, not per-user authentication: everyone who knows the
// passphrase shares the same library.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Passphrase string `json:"passphrase" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passphrase is required"})
		return
	}

	if !h.passphraseMatches(input.Passphrase) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect passphrase"})
		return
	}

	token, err := utils.GenerateToken(h.cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) passphraseMatches(input string) bool {
	if h.cfg.Auth.PassphraseHash != "" {
		return bcrypt.CompareHashAndPassword(
			[]byte(h.cfg.Auth.PassphraseHash), []byte(input)) == nil
	}
	return subtle.ConstantTimeCompare(
		[]byte(h.cfg.Auth.Passphrase), []byte(input)) == 1
}
