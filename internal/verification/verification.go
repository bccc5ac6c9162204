package verification

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fanvault/backoffice/internal/alerts"
	"github.com/fanvault/backoffice/internal/common"
	"github.com/fanvault/backoffice/internal/db"
	"github.com/fanvault/backoffice/internal/feed"
)

type Verification struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	DocumentType string     `json:"document_type"`
	DocumentRef  string     `json:"document_ref"`
	Status       string     `json:"status"`
	ReviewedBy   *string    `json:"reviewed_by"`
	ReviewNote   *string    `json:"review_note"`
	CreatedAt    time.Time  `json:"created_at"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
}

type SubmitVerificationRequest struct {
	DocumentType string `json:"document_type" validate:"required,oneof=passport id_card driving_license"`
	DocumentRef  string `json:"document_ref" validate:"required"`
}

// POST /verification
// One pending submission per user at a time.
func Submit(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	req := new(SubmitVerificationRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}

	ctx := context.Background()

	var pending int
	if err := db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM verifications WHERE user_id = $1 AND status = 'pending'`, userID,
	).Scan(&pending); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not check submissions"})
	}
	if pending > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": "a submission is already pending review"})
	}

	verificationID := uuid.New().String()
	_, err := db.Conn.Exec(ctx, `
        INSERT INTO verifications (id, user_id, document_type, document_ref, status, created_at)
        VALUES ($1, $2, $3, $4, 'pending', NOW())
    `, verificationID, userID, req.DocumentType, req.DocumentRef)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to create submission"})
	}

	feed.Publish("verification.submitted", echo.Map{"verification_id": verificationID, "user_id": userID})

	return c.JSON(http.StatusCreated, echo.Map{"verification_id": verificationID, "status": "pending"})
}

// GET /verification/me
func MySubmissions(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(), `
        SELECT id, user_id, document_type, document_ref, status,
               reviewed_by::text, review_note, created_at, reviewed_at
        FROM verifications WHERE user_id = $1 ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch submissions"})
	}
	defer rows.Close()

	items := []Verification{}
	for rows.Next() {
		var v Verification
		if err := rows.Scan(&v.ID, &v.UserID, &v.DocumentType, &v.DocumentRef, &v.Status,
			&v.ReviewedBy, &v.ReviewNote, &v.CreatedAt, &v.ReviewedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read submission"})
		}
		items = append(items, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"verifications": items})
}

// GET /admin/verifications
func List(c echo.Context) error {
	pq := common.ParsePageQuery(c, "-created_at", "created_at", "status")

	where := "WHERE 1=1"
	args := []interface{}{}
	if status := c.QueryParam("status"); status != "" {
		args = append(args, status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}

	ctx := context.Background()

	var total int
	if err := db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM verifications `+where, args...).Scan(&total); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not count submissions"})
	}

	query := `SELECT id, user_id, document_type, document_ref, status,
                     reviewed_by::text, review_note, created_at, reviewed_at
              FROM verifications ` + where + ` ORDER BY ` + pq.OrderBy + ` LIMIT ` + strconv.Itoa(pq.Limit) + ` OFFSET ` + strconv.Itoa(pq.Offset())
	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch submissions"})
	}
	defer rows.Close()

	items := []Verification{}
	for rows.Next() {
		var v Verification
		if err := rows.Scan(&v.ID, &v.UserID, &v.DocumentType, &v.DocumentRef, &v.Status,
			&v.ReviewedBy, &v.ReviewNote, &v.CreatedAt, &v.ReviewedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read submission"})
		}
		items = append(items, v)
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": pq.Page, "limit": pq.Limit})
}

type ReviewRequest struct {
	Note string `json:"note"`
}

// POST /admin/verifications/:id/approve
func Approve(c echo.Context) error {
	return review(c, "approved")
}

// POST /admin/verifications/:id/reject
func Reject(c echo.Context) error {
	return review(c, "rejected")
}

func review(c echo.Context, decision string) error {
	reviewerID, _ := c.Get("user_id").(string)
	verificationID := c.Param("id")
	if verificationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "verification id required"})
	}

	req := new(ReviewRequest)
	_ = c.Bind(req)

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	var userID, status string
	err = tx.QueryRow(ctx,
		`SELECT user_id, status FROM verifications WHERE id = $1 FOR UPDATE`, verificationID,
	).Scan(&userID, &status)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "submission not found"})
	}
	if status != "pending" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "submission not pending"})
	}

	ct, err := tx.Exec(ctx, `
        UPDATE verifications SET status = $1, reviewed_by = $2, review_note = NULLIF($3, ''), reviewed_at = NOW()
        WHERE id = $4 AND status = 'pending'
    `, decision, reviewerID, req.Note, verificationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to update submission"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "submission not pending"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction failed"})
	}

	var email string
	if err := db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err == nil {
		_ = alerts.EnqueueVerificationDecision(verificationID, userID, email, decision, req.Note)
	}
	_ = alerts.CreateNotification(userID, "verification."+decision,
		"Verification "+decision, "Your identity verification was "+decision+".", &verificationID)

	feed.Publish("verification."+decision, echo.Map{"verification_id": verificationID, "user_id": userID})

	return c.JSON(http.StatusOK, echo.Map{"message": "verification " + decision, "verification_id": verificationID})
}
