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

type PaymentGateway struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Provider  string          `json:"provider"`
	Config    json.RawMessage `json:"config"`
	IsEnabled bool            `json:"is_enabled"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GET /admin/gateways
func ListGateways(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, name, provider, config, is_enabled, created_at, updated_at
         FROM payment_gateways ORDER BY name`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch gateways"})
	}
	defer rows.Close()

	items := []PaymentGateway{}
	for rows.Next() {
		var g PaymentGateway
		if err := rows.Scan(&g.ID, &g.Name, &g.Provider, &g.Config, &g.IsEnabled, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read gateway"})
		}
		items = append(items, g)
	}
	return c.JSON(http.StatusOK, echo.Map{"gateways": items})
}

type CreateGatewayRequest struct {
	Name     string          `json:"name" validate:"required"`
	Provider string          `json:"provider" validate:"required"`
	Config   json.RawMessage `json:"config"`
}

// POST /admin/gateways
func CreateGateway(c echo.Context) error {
	req := new(CreateGatewayRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}
	if len(req.Config) == 0 {
		req.Config = json.RawMessage(`{}`)
	}
	if !json.Valid(req.Config) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "config must be valid JSON"})
	}

	gatewayID := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(), `
        INSERT INTO payment_gateways (id, name, provider, config, is_enabled, created_at, updated_at)
        VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
    `, gatewayID, req.Name, req.Provider, req.Config)
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "gateway name already exists"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"gateway_id": gatewayID})
}

type UpdateGatewayRequest struct {
	Provider  *string         `json:"provider"`
	Config    json.RawMessage `json:"config"`
	IsEnabled *bool           `json:"is_enabled"`
}

// PATCH /admin/gateways/:id
func UpdateGateway(c echo.Context) error {
	gatewayID := c.Param("id")
	if gatewayID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "gateway id required"})
	}

	req := new(UpdateGatewayRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if len(req.Config) > 0 && !json.Valid(req.Config) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "config must be valid JSON"})
	}

	var cfg interface{}
	if len(req.Config) > 0 {
		cfg = req.Config
	}

	ct, err := db.Conn.Exec(context.Background(), `
        UPDATE payment_gateways SET
            provider = COALESCE($1, provider),
            config = COALESCE($2, config),
            is_enabled = COALESCE($3, is_enabled),
            updated_at = NOW()
        WHERE id = $4
    `, req.Provider, cfg, req.IsEnabled, gatewayID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to update gateway"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "gateway not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "gateway updated", "gateway_id": gatewayID})
}

// DELETE /admin/gateways/:id
// Idempotent: deleting a missing gateway still returns 200.
func DeleteGateway(c echo.Context) error {
	gatewayID := c.Param("id")
	if gatewayID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "gateway id required"})
	}

	if _, err := db.Conn.Exec(context.Background(),
		`DELETE FROM payment_gateways WHERE id = $1`, gatewayID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to delete gateway"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "gateway deleted", "gateway_id": gatewayID})
}
