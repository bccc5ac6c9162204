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

type Order struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	BuyerID     string    `json:"buyer_id"`
	CreatorID   string    `json:"creator_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// legalTransitions is the order lifecycle: forward fulfillment plus
// cancellation and refund exits.
var legalTransitions = map[string][]string{
	"pending":   {"paid", "cancelled"},
	"paid":      {"shipped", "cancelled", "refunded"},
	"shipped":   {"completed", "refunded"},
	"completed": {"refunded"},
	"cancelled": {},
	"refunded":  {},
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GET /admin/orders
func ListOrders(c echo.Context) error {
	pq := common.ParsePageQuery(c, "-created_at", "created_at", "amount_cents", "status")

	where := "WHERE 1=1"
	args := []interface{}{}
	if status := c.QueryParam("status"); status != "" {
		args = append(args, status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if buyer := c.QueryParam("buyer_id"); buyer != "" {
		args = append(args, buyer)
		where += " AND buyer_id = $" + strconv.Itoa(len(args))
	}

	ctx := context.Background()

	var total int
	if err := db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not count orders"})
	}

	query := `SELECT id, product_id, buyer_id, creator_id, amount_cents, status, created_at, updated_at
              FROM orders ` + where + ` ORDER BY ` + pq.OrderBy + ` LIMIT ` + strconv.Itoa(pq.Limit) + ` OFFSET ` + strconv.Itoa(pq.Offset())
	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch orders"})
	}
	defer rows.Close()

	items := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.ProductID, &o.BuyerID, &o.CreatorID, &o.AmountCents, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read order record"})
		}
		items = append(items, o)
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": pq.Page, "limit": pq.Limit})
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped completed cancelled refunded"`
}

// PATCH /admin/orders/:id/status
// Enforces the lifecycle matrix; a refund also writes a refund transaction
// for the buyer.
func UpdateOrderStatus(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "order id required"})
	}

	req := new(UpdateOrderStatusRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	var buyerID, status string
	var amount int64
	err = tx.QueryRow(ctx,
		`SELECT buyer_id, amount_cents, status FROM orders WHERE id = $1 FOR UPDATE`, orderID,
	).Scan(&buyerID, &amount, &status)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "order not found"})
	}

	if !CanTransition(status, req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"error":   "illegal status transition from " + status + " to " + req.Status,
		})
	}

	if _, err = tx.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, req.Status, orderID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to update order status"})
	}

	switch req.Status {
	case "paid":
		_, err = tx.Exec(ctx, `
            INSERT INTO transactions (id, user_id, order_id, type, amount_cents, status, reference, created_at)
            VALUES ($1, $2, $3, 'purchase', $4, 'completed', $3, NOW())
        `, uuid.New().String(), buyerID, orderID, amount)
	case "refunded":
		_, err = tx.Exec(ctx, `
            INSERT INTO transactions (id, user_id, order_id, type, amount_cents, status, reference, created_at)
            VALUES ($1, $2, $3, 'refund', $4, 'completed', $3, NOW())
        `, uuid.New().String(), buyerID, orderID, -amount)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to record transaction"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "order updated", "order_id": orderID, "status": req.Status})
}
