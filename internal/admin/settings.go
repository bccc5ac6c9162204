package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fanvault/backoffice/internal/db"
)

type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedBy *string         `json:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GET /admin/settings
func ListSettings(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(),
		`SELECT key, value, updated_by::text, updated_at FROM system_settings ORDER BY key`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch settings"})
	}
	defer rows.Close()

	items := []Setting{}
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read setting"})
		}
		items = append(items, s)
	}
	return c.JSON(http.StatusOK, echo.Map{"settings": items})
}

type UpsertSettingRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

// PUT /admin/settings/:key
func UpsertSetting(c echo.Context) error {
	adminID, _ := c.Get("user_id").(string)
	key := c.Param("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "setting key required"})
	}

	req := new(UpsertSettingRequest)
	if err := c.Bind(req); err != nil || len(req.Value) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if !json.Valid(req.Value) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "value must be valid JSON"})
	}

	_, err := db.Conn.Exec(context.Background(), `
        INSERT INTO system_settings (key, value, updated_by, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (key) DO UPDATE SET value = $2, updated_by = $3, updated_at = NOW()
    `, key, req.Value, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to save setting"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "setting saved", "key": key})
}
