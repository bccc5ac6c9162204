package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/fanvault/backoffice/internal/alerts"
	"github.com/fanvault/backoffice/internal/common"
	"github.com/fanvault/backoffice/internal/db"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignupResponse struct {
	Token string `json:"token"`
}

// POST /signup
func Signup(c echo.Context) error {
	req := new(SignupRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "server error"})
	}

	email := strings.ToLower(req.Email)
	ctx := context.Background()

	// New accounts always start as fans.
	userID := uuid.New().String()
	_, err = db.Conn.Exec(ctx, `
        INSERT INTO users (id, name, email, password, role, created_at)
        VALUES ($1, $2, $3, $4, 'fan', $5)
    `, userID, req.Name, email, string(hashed), time.Now())
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "email already exists"})
	}

	_ = alerts.EnqueueWelcomeEmail(userID, email, req.Name)

	signed, err := issueToken(userID, "fan")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "token generation failed"})
	}

	return c.JSON(http.StatusOK, SignupResponse{Token: signed})
}
