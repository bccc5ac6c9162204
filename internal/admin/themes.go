package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fanvault/backoffice/internal/common"
	"github.com/fanvault/backoffice/internal/db"
)

type Theme struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Colors    json.RawMessage `json:"colors"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GET /admin/themes
func ListThemes(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, name, colors, is_active, created_at, updated_at FROM themes ORDER BY name`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch themes"})
	}
	defer rows.Close()

	items := []Theme{}
	for rows.Next() {
		var t Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.Colors, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read theme"})
		}
		items = append(items, t)
	}
	return c.JSON(http.StatusOK, echo.Map{"themes": items})
}

type CreateThemeRequest struct {
	Name   string          `json:"name" validate:"required"`
	Colors json.RawMessage `json:"colors"`
}

// POST /admin/themes
func CreateTheme(c echo.Context) error {
	req := new(CreateThemeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}
	if len(req.Colors) == 0 {
		req.Colors = json.RawMessage(`{}`)
	}
	if !json.Valid(req.Colors) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "colors must be valid JSON"})
	}

	themeID := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(), `
        INSERT INTO themes (id, name, colors, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, FALSE, NOW(), NOW())
    `, themeID, req.Name, req.Colors)
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "theme name already exists"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"theme_id": themeID})
}

// POST /admin/themes/:id/activate
// At most one theme is active: the rest are deactivated in the same
// transaction.
func ActivateTheme(c echo.Context) error {
	themeID := c.Param("id")
	if themeID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "theme id required"})
	}

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `UPDATE themes SET is_active = FALSE WHERE is_active`); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to deactivate themes"})
	}

	ct, err := tx.Exec(ctx,
		`UPDATE themes SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, themeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to activate theme"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "theme not found"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "theme activated", "theme_id": themeID})
}

// DELETE /admin/themes/:id
// Idempotent: deleting a missing theme still returns 200.
func DeleteTheme(c echo.Context) error {
	themeID := c.Param("id")
	if themeID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "theme id required"})
	}

	if _, err := db.Conn.Exec(context.Background(), `DELETE FROM themes WHERE id = $1`, themeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to delete theme"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "theme deleted", "theme_id": themeID})
}
