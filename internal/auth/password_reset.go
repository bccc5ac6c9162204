package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/fanvault/backoffice/internal/alerts"
	"github.com/fanvault/backoffice/internal/config"
	"github.com/fanvault/backoffice/internal/db"
)

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

const genericResetMessage = "If the email exists, a reset link has been sent."

// POST /auth/password/request
// Always responds with the generic message to avoid user enumeration.
// Issues a single-use random token stored in password_reset_tokens.
func RequestPasswordReset(c echo.Context) error {
	req := new(RequestPasswordResetRequest)
	if err := c.Bind(req); err != nil || req.Email == "" {
		return c.JSON(http.StatusOK, echo.Map{"message": genericResetMessage})
	}

	email := strings.ToLower(req.Email)

	var userID, name string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, name FROM users WHERE email = $1`, email).Scan(&userID, &name)
	if err != nil || userID == "" {
		return c.JSON(http.StatusOK, echo.Map{"message": genericResetMessage})
	}

	token, err := newResetToken()
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"message": genericResetMessage})
	}

	expiresAt := time.Now().Add(config.C.PasswordResetTTL)
	_, err = db.Conn.Exec(context.Background(), `
        INSERT INTO password_reset_tokens (token, user_id, expires_at, created_at)
        VALUES ($1, $2, $3, $4)
    `, token, userID, expiresAt, time.Now())
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"message": genericResetMessage})
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s",
		strings.TrimRight(config.C.AppURL, "/"), url.QueryEscape(token))
	_ = alerts.EnqueuePasswordReset(userID, email, resetURL, name)

	return c.JSON(http.StatusOK, echo.Map{"message": genericResetMessage})
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// POST /auth/password/reset
// Consumes the token inside a transaction: expired or already-used tokens
// are rejected, a valid one is marked used and the password replaced.
func ResetPassword(c echo.Context) error {
	req := new(ResetPasswordRequest)
	if err := c.Bind(req); err != nil || req.Token == "" || len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	var (
		userID    string
		expiresAt time.Time
		usedAt    *time.Time
	)
	err = tx.QueryRow(ctx, `
        SELECT user_id, expires_at, used_at FROM password_reset_tokens
        WHERE token = $1 FOR UPDATE
    `, req.Token).Scan(&userID, &expiresAt, &usedAt)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid or expired token"})
	}
	if !tokenUsable(usedAt, expiresAt, time.Now()) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid or expired token"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "server error"})
	}

	if _, err = tx.Exec(ctx,
		`UPDATE password_reset_tokens SET used_at = NOW() WHERE token = $1`, req.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to consume token"})
	}

	ct, err := tx.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, string(hashed), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to update password"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "user not found"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated successfully"})
}

// tokenUsable reports whether a reset token may still be consumed:
// never used and not past its expiry.
func tokenUsable(usedAt *time.Time, expiresAt, now time.Time) bool {
	return usedAt == nil && now.Before(expiresAt)
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
