package shop

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fanvault/backoffice/internal/common"
	"github.com/fanvault/backoffice/internal/db"
)

type Product struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creator_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GET /admin/products
func ListProducts(c echo.Context) error {
	pq := common.ParsePageQuery(c, "-created_at", "created_at", "title", "price_cents", "status")

	where := "WHERE 1=1"
	args := []interface{}{}
	if status := c.QueryParam("status"); status != "" {
		args = append(args, status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if creator := c.QueryParam("creator_id"); creator != "" {
		args = append(args, creator)
		where += " AND creator_id = $" + strconv.Itoa(len(args))
	}

	ctx := context.Background()

	var total int
	if err := db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not count products"})
	}

	query := `SELECT id, creator_id, title, COALESCE(description, ''), price_cents, status, created_at, updated_at
              FROM products ` + where + ` ORDER BY ` + pq.OrderBy + ` LIMIT ` + strconv.Itoa(pq.Limit) + ` OFFSET ` + strconv.Itoa(pq.Offset())
	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch products"})
	}
	defer rows.Close()

	items := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CreatorID, &p.Title, &p.Description, &p.PriceCents, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read product record"})
		}
		items = append(items, p)
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": pq.Page, "limit": pq.Limit})
}

type CreateProductRequest struct {
	CreatorID   string `json:"creator_id" validate:"required,uuid4"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
}

// POST /admin/products
func CreateProduct(c echo.Context) error {
	req := new(CreateProductRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}

	productID := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(), `
        INSERT INTO products (id, creator_id, title, description, price_cents, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, 'draft', NOW(), NOW())
    `, productID, req.CreatorID, req.Title, req.Description, req.PriceCents)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to create product"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"product_id": productID})
}

type UpdateProductRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft active archived"`
}

// PATCH /admin/products/:id
func UpdateProduct(c echo.Context) error {
	productID := c.Param("id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "product id required"})
	}

	req := new(UpdateProductRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}

	ct, err := db.Conn.Exec(context.Background(), `
        UPDATE products SET
            title = COALESCE($1, title),
            description = COALESCE($2, description),
            price_cents = COALESCE($3, price_cents),
            status = COALESCE($4, status),
            updated_at = NOW()
        WHERE id = $5
    `, req.Title, req.Description, req.PriceCents, req.Status, productID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to update product"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "product not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "product updated", "product_id": productID})
}

// POST /admin/products/:id/archive
func ArchiveProduct(c echo.Context) error {
	productID := c.Param("id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "product id required"})
	}

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE products SET status = 'archived', updated_at = NOW() WHERE id = $1`, productID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to archive product"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "product not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "product archived", "product_id": productID})
}

// DELETE /admin/products/:id
// Idempotent: deleting a missing product still returns 200.
func DeleteProduct(c echo.Context) error {
	productID := c.Param("id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "product id required"})
	}

	if _, err := db.Conn.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, productID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to delete product"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted", "product_id": productID})
}

