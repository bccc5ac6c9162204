package transactions

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fanvault/backoffice/internal/common"
	"github.com/fanvault/backoffice/internal/db"
)

type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	OrderID     *string   `json:"order_id"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	Reference   *string   `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}

// GET /transactions/me
func MyTransactions(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(), `
        SELECT id, user_id, order_id::text, type, amount_cents, status, reference, created_at
        FROM transactions WHERE user_id = $1 ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch transactions"})
	}
	defer rows.Close()

	items := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.OrderID, &t.Type, &t.AmountCents, &t.Status, &t.Reference, &t.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read transaction"})
		}
		items = append(items, t)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": items})
}

// GET /admin/transactions
func List(c echo.Context) error {
	pq := common.ParsePageQuery(c, "-created_at", "created_at", "amount_cents", "type", "status")

	where := "WHERE 1=1"
	args := []interface{}{}
	if txType := c.QueryParam("type"); txType != "" {
		args = append(args, txType)
		where += " AND type = $" + strconv.Itoa(len(args))
	}
	if status := c.QueryParam("status"); status != "" {
		args = append(args, status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if user := c.QueryParam("user_id"); user != "" {
		args = append(args, user)
		where += " AND user_id = $" + strconv.Itoa(len(args))
	}

	ctx := context.Background()

	var total int
	if err := db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM transactions `+where, args...).Scan(&total); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not count transactions"})
	}

	query := `SELECT id, user_id, order_id::text, type, amount_cents, status, reference, created_at
              FROM transactions ` + where + ` ORDER BY ` + pq.OrderBy + ` LIMIT ` + strconv.Itoa(pq.Limit) + ` OFFSET ` + strconv.Itoa(pq.Offset())
	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch transactions"})
	}
	defer rows.Close()

	items := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.OrderID, &t.Type, &t.AmountCents, &t.Status, &t.Reference, &t.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read transaction"})
		}
		items = append(items, t)
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": pq.Page, "limit": pq.Limit})
}
