package complaints

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

type Complaint struct {
	ID          string     `json:"id"`
	ReporterID  string     `json:"reporter_id"`
	SubjectType string     `json:"subject_type"`
	SubjectID   string     `json:"subject_id"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	Resolution  *string    `json:"resolution"`
	ResolvedBy  *string    `json:"resolved_by"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

type CreateComplaintRequest struct {
	SubjectType string `json:"subject_type" validate:"required,oneof=user product order"`
	SubjectID   string `json:"subject_id" validate:"required,uuid4"`
	Reason      string `json:"reason" validate:"required,min=10"`
}

// POST /complaints
func Create(c echo.Context) error {
	reporterID, ok := c.Get("user_id").(string)
	if !ok || reporterID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized"})
	}

	req := new(CreateComplaintRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}

	complaintID := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(), `
        INSERT INTO complaints (id, reporter_id, subject_type, subject_id, reason, status, created_at)
        VALUES ($1, $2, $3, $4, $5, 'open', NOW())
    `, complaintID, reporterID, req.SubjectType, req.SubjectID, req.Reason)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to create complaint"})
	}

	feed.Publish("complaint.opened", echo.Map{
		"complaint_id": complaintID, "subject_type": req.SubjectType, "subject_id": req.SubjectID,
	})

	return c.JSON(http.StatusCreated, echo.Map{"complaint_id": complaintID, "status": "open"})
}

// GET /admin/complaints
func List(c echo.Context) error {
	pq := common.ParsePageQuery(c, "-created_at", "created_at", "status", "subject_type")

	where := "WHERE 1=1"
	args := []interface{}{}
	if status := c.QueryParam("status"); status != "" {
		args = append(args, status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if subjectType := c.QueryParam("subject_type"); subjectType != "" {
		args = append(args, subjectType)
		where += " AND subject_type = $" + strconv.Itoa(len(args))
	}

	ctx := context.Background()

	var total int
	if err := db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM complaints `+where, args...).Scan(&total); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not count complaints"})
	}

	query := `SELECT id, reporter_id, subject_type, subject_id, reason, status,
                     resolution, resolved_by::text, created_at, resolved_at
              FROM complaints ` + where + ` ORDER BY ` + pq.OrderBy + ` LIMIT ` + strconv.Itoa(pq.Limit) + ` OFFSET ` + strconv.Itoa(pq.Offset())
	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch complaints"})
	}
	defer rows.Close()

	items := []Complaint{}
	for rows.Next() {
		var cm Complaint
		if err := rows.Scan(&cm.ID, &cm.ReporterID, &cm.SubjectType, &cm.SubjectID, &cm.Reason, &cm.Status,
			&cm.Resolution, &cm.ResolvedBy, &cm.CreatedAt, &cm.ResolvedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read complaint"})
		}
		items = append(items, cm)
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": pq.Page, "limit": pq.Limit})
}

// POST /admin/complaints/:id/claim
// Moves an open complaint to in_review under the caller's name.
func Claim(c echo.Context) error {
	moderatorID, _ := c.Get("user_id").(string)
	complaintID := c.Param("id")
	if complaintID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "complaint id required"})
	}

	ct, err := db.Conn.Exec(context.Background(), `
        UPDATE complaints SET status = 'in_review', resolved_by = $1
        WHERE id = $2 AND status = 'open'
    `, moderatorID, complaintID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to claim complaint"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "complaint not open"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "complaint claimed", "complaint_id": complaintID})
}

type ResolveComplaintRequest struct {
	Resolution string `json:"resolution" validate:"required"`
}

// POST /admin/complaints/:id/resolve
func Resolve(c echo.Context) error {
	return closeComplaint(c, "resolved")
}

// POST /admin/complaints/:id/dismiss
func Dismiss(c echo.Context) error {
	return closeComplaint(c, "dismissed")
}

// closable reports whether a complaint in the given status may still be
// resolved or dismissed. Closed complaints are final.
func closable(status string) bool {
	return status == "open" || status == "in_review"
}

func closeComplaint(c echo.Context, outcome string) error {
	moderatorID, _ := c.Get("user_id").(string)
	complaintID := c.Param("id")
	if complaintID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "complaint id required"})
	}

	req := new(ResolveComplaintRequest)
	if outcome == "resolved" {
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
		}
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
			})
		}
	} else {
		_ = c.Bind(req)
	}

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	var reporterID, status string
	err = tx.QueryRow(ctx,
		`SELECT reporter_id, status FROM complaints WHERE id = $1 FOR UPDATE`, complaintID,
	).Scan(&reporterID, &status)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "complaint not found"})
	}
	if !closable(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "complaint already closed"})
	}

	ct, err := tx.Exec(ctx, `
        UPDATE complaints SET status = $1, resolution = NULLIF($2, ''), resolved_by = $3, resolved_at = NOW()
        WHERE id = $4 AND status IN ('open','in_review')
    `, outcome, req.Resolution, moderatorID, complaintID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to close complaint"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "complaint already closed"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "transaction failed"})
	}

	var email string
	if err := db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, reporterID).Scan(&email); err == nil {
		_ = alerts.EnqueueComplaintResolved(complaintID, reporterID, email, outcome, req.Resolution)
	}
	_ = alerts.CreateNotification(reporterID, "complaint."+outcome,
		"Report "+outcome, "Your report was "+outcome+".", &complaintID)

	return c.JSON(http.StatusOK, echo.Map{"message": "complaint " + outcome, "complaint_id": complaintID})
}
