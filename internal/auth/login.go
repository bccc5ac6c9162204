package auth

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/fanvault/backoffice/internal/common"
	"github.com/fanvault/backoffice/internal/db"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// POST /login
func Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}

	email := strings.ToLower(req.Email)

	// Check the brute-force block before touching the database.
	if remaining, blocked := loginTracker.Blocked(email); blocked {
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"success":     false,
			"error":       "too many failed attempts",
			"retry_after": int(math.Ceil(remaining.Seconds())),
		})
	}

	var (
		userID   string
		password string
		role     string
		isActive bool
	)
	err := db.Conn.QueryRow(context.Background(), `
        SELECT id, password, role, is_active FROM users WHERE email = $1
    `, email).Scan(&userID, &password, &role, &isActive)
	if err != nil {
		loginTracker.Fail(email)
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(password), []byte(req.Password)); err != nil {
		loginTracker.Fail(email)
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid credentials"})
	}

	if !isActive {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "account suspended"})
	}

	loginTracker.Clear(email)

	signed, err := issueToken(userID, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "token generation failed"})
	}

	return c.JSON(http.StatusOK, LoginResponse{Token: signed})
}
