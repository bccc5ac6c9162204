package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fanvault/backoffice/internal/config"
)

const sessionTTL = 72 * time.Hour

// issueToken signs a session JWT for the user.
func issueToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.C.JWTSecret))
}
