package payouts

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/fanvault/backoffice/internal/alerts"
	"github.com/fanvault/backoffice/internal/common"
	"github.com/fanvault/backoffice/internal/db"
	"github.com/fanvault/backoffice/internal/feed"
)

type Payout struct {
	ID          string     `json:"id"`
	CreatorID   string     `json:"creator_id"`
	AmountCents int64      `json:"amount_cents"`
	Method      string     `json:"method"`
	Destination string     `json:"destination"`
	Status      string     `json:"status"`
	ReviewedBy  *string    `json:"reviewed_by"`
	ReviewNote  *string    `json:"review_note"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
}

type RequestPayoutRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required,oneof=bank_transfer paypal crypto"`
	Destination string `json:"destination" validate:"required"`
}

// POST /payouts
// Creators may not request more than their available balance: completed
// order earnings minus payouts that are not rejected.
func RequestPayout(c echo.Context) error {
	creatorID, ok := c.Get("user_id").(string)
	if !ok || creatorID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	req := new(RequestPayoutRequest)
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

	// Lock the creator row so concurrent requests serialize on the
	// balance arithmetic instead of both reading the same sums.
	var lockedID string
	if err := tx.QueryRow(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, creatorID).Scan(&lockedID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "creator not found"})
	}

	var earned int64
	if err := tx.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount_cents), 0) FROM orders
        WHERE creator_id = $1 AND status = 'completed'
    `, creatorID).Scan(&earned); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not compute earnings"})
	}

	var committed int64
	if err := tx.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount_cents), 0) FROM payouts
        WHERE creator_id = $1 AND status <> 'rejected'
    `, creatorID).Scan(&committed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not compute payouts"})
	}

	if req.AmountCents > availableBalance(earned, committed) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "insufficient available balance"})
	}

	payoutID := uuid.New().String()
	_, err = tx.Exec(ctx, `
        INSERT INTO payouts (id, creator_id, amount_cents, method, destination, status, created_at)
        VALUES ($1, $2, $3, $4, $5, 'pending', NOW())
    `, payoutID, creatorID, req.AmountCents, req.Method, req.Destination)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to create payout request"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction failed"})
	}

	feed.Publish("payout.requested", echo.Map{
		"payout_id": payoutID, "creator_id": creatorID, "amount_cents": req.AmountCents,
	})

	return c.JSON(http.StatusCreated, echo.Map{"payout_id": payoutID, "status": "pending"})
}

// GET /payouts/me
func MyPayouts(c echo.Context) error {
	creatorID, ok := c.Get("user_id").(string)
	if !ok || creatorID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(), `
        SELECT id, creator_id, amount_cents, method, destination, status,
               reviewed_by::text, review_note, created_at, reviewed_at
        FROM payouts WHERE creator_id = $1 ORDER BY created_at DESC
    `, creatorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch payouts"})
	}
	defer rows.Close()

	items, err := scanPayouts(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read payout record"})
	}
	return c.JSON(http.StatusOK, echo.Map{"payouts": items})
}

// GET /admin/payouts
func ListPayouts(c echo.Context) error {
	pq := common.ParsePageQuery(c, "-created_at", "created_at", "amount_cents", "status")

	where := "WHERE 1=1"
	args := []interface{}{}
	if status := c.QueryParam("status"); status != "" {
		args = append(args, status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}

	ctx := context.Background()

	var total int
	if err := db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM payouts `+where, args...).Scan(&total); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not count payouts"})
	}

	query := `SELECT id, creator_id, amount_cents, method, destination, status,
                     reviewed_by::text, review_note, created_at, reviewed_at
              FROM payouts ` + where + ` ORDER BY ` + pq.OrderBy + ` LIMIT ` + strconv.Itoa(pq.Limit) + ` OFFSET ` + strconv.Itoa(pq.Offset())
	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch payouts"})
	}
	defer rows.Close()

	items, err := scanPayouts(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read payout record"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": pq.Page, "limit": pq.Limit})
}

type ReviewPayoutRequest struct {
	Note string `json:"note"`
}

// POST /admin/payouts/:id/approve
func ApprovePayout(c echo.Context) error {
	return reviewPayout(c, "approved")
}

// POST /admin/payouts/:id/reject
func RejectPayout(c echo.Context) error {
	return reviewPayout(c, "rejected")
}

// reviewPayout settles a pending payout. Approval writes a payout
// transaction against the creator; either way the decision email goes out.
func reviewPayout(c echo.Context, decision string) error {
	reviewerID, _ := c.Get("user_id").(string)
	payoutID := c.Param("id")
	if payoutID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "payout id required"})
	}

	req := new(ReviewPayoutRequest)
	_ = c.Bind(req)

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	var creatorID, status string
	var amount int64
	err = tx.QueryRow(ctx,
		`SELECT creator_id, amount_cents, status FROM payouts WHERE id = $1 FOR UPDATE`, payoutID,
	).Scan(&creatorID, &amount, &status)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "payout not found"})
	}
	if status != "pending" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "payout not pending"})
	}

	_, err = tx.Exec(ctx, `
        UPDATE payouts SET status = $1, reviewed_by = $2, review_note = NULLIF($3, ''), reviewed_at = NOW()
        WHERE id = $4
    `, decision, reviewerID, req.Note, payoutID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to update payout"})
	}

	if decision == "approved" {
		_, err = tx.Exec(ctx, `
            INSERT INTO transactions (id, user_id, type, amount_cents, status, reference, created_at)
            VALUES ($1, $2, 'payout', $3, 'completed', $4, NOW())
        `, uuid.New().String(), creatorID, amount, payoutID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to record payout transaction"})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction failed"})
	}

	var email string
	if err := db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, creatorID).Scan(&email); err == nil {
		_ = alerts.EnqueuePayoutDecision(payoutID, creatorID, email, decision, req.Note, amount)
	}
	_ = alerts.CreateNotification(creatorID, "payout."+decision,
		"Payout "+decision, "Your payout request was "+decision+".", &payoutID)

	feed.Publish("payout."+decision, echo.Map{"payout_id": payoutID, "creator_id": creatorID})

	return c.JSON(http.StatusOK, echo.Map{"message": "payout " + decision, "payout_id": payoutID})
}

// availableBalance is what a creator may still withdraw: completed order
// earnings minus payouts that were not rejected.
func availableBalance(earned, committed int64) int64 {
	return earned - committed
}

func scanPayouts(rows pgx.Rows) ([]Payout, error) {
	var items []Payout
	for rows.Next() {
		var p Payout
		if err := rows.Scan(&p.ID, &p.CreatorID, &p.AmountCents, &p.Method, &p.Destination, &p.Status,
			&p.ReviewedBy, &p.ReviewNote, &p.CreatedAt, &p.ReviewedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if items == nil {
		items = []Payout{}
	}
	return items, nil
}
