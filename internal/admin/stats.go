package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fanvault/backoffice/internal/db"
)

// GET /admin/stats
func Stats(c echo.Context) error {
	ctx := context.Background()

	var users, creators, products, orders, openComplaints, pendingVerifications int
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'creator'`).Scan(&creators)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&products)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orders)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE status IN ('open','in_review')`).Scan(&openComplaints)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM verifications WHERE status = 'pending'`).Scan(&pendingVerifications)

	var revenueCents, pendingPayoutCents int64
	_ = db.Conn.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
        WHERE type = 'purchase' AND status = 'completed'
    `).Scan(&revenueCents)
	_ = db.Conn.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount_cents), 0) FROM payouts WHERE status = 'pending'
    `).Scan(&pendingPayoutCents)

	return c.JSON(http.StatusOK, echo.Map{
		"users":                 users,
		"creators":              creators,
		"products":              products,
		"orders":                orders,
		"open_complaints":       openComplaints,
		"pending_verifications": pendingVerifications,
		"revenue_cents":         revenueCents,
		"pending_payout_cents":  pendingPayoutCents,
	})
}
