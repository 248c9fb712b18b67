package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/se1907800-collab/mediavalut/internal/config"
)

// GenerateToken issues a session token after the passphrase gate. There are
// no per-user identities; the token only proves the gate was passed.
func GenerateToken(cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub": "library",
		"exp": time.Now().Add(cfg.Auth.Expiration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Auth.JWTSecret))
}

// ValidateToken checks signature and expiry.
func ValidateToken(tokenString, secret string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}
