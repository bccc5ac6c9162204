package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fanvault/backoffice/internal/db"
)

// Me returns the currently authenticated user's profile.
// Runs behind JWTMiddleware.
func Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	var (
		id, name, email, role string
		isActive              bool
		createdAt             time.Time
	)
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, name, email, role, is_active, created_at FROM users WHERE id = $1`, userID).
		Scan(&id, &name, &email, &role, &isActive, &createdAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":         id,
		"name":       name,
		"email":      email,
		"role":       role,
		"is_active":  isActive,
		"created_at": createdAt,
	})
}
