package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fanvault/backoffice/internal/common"
	"github.com/fanvault/backoffice/internal/db"
	"github.com/fanvault/backoffice/internal/feed"
)

type AdminUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// GET /admin/users
func ListUsers(c echo.Context) error {
	pq := common.ParsePageQuery(c, "-created_at", "created_at", "name", "email", "role")

	where := "WHERE 1=1"
	args := []interface{}{}
	if role := c.QueryParam("role"); role != "" {
		args = append(args, role)
		where += " AND role = $" + strconv.Itoa(len(args))
	}
	if q := c.QueryParam("q"); q != "" {
		args = append(args, "%"+q+"%")
		n := strconv.Itoa(len(args))
		where += " AND (name ILIKE $" + n + " OR email ILIKE $" + n + ")"
	}

	ctx := context.Background()

	var total int
	if err := db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not count users"})
	}

	query := `SELECT id, name, email, role, is_active, created_at
              FROM users ` + where + ` ORDER BY ` + pq.OrderBy + ` LIMIT ` + strconv.Itoa(pq.Limit) + ` OFFSET ` + strconv.Itoa(pq.Offset())
	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "could not fetch users"})
	}
	defer rows.Close()

	items := []AdminUser{}
	for rows.Next() {
		var u AdminUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to read user record"})
		}
		items = append(items, u)
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": pq.Page, "limit": pq.Limit})
}

// POST /admin/users/:id/suspend
func SuspendUser(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "user id required"})
	}

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET is_active = FALSE WHERE id = $1`, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to suspend user"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "user not found"})
	}

	feed.Publish("user.suspended", echo.Map{"user_id": userID})

	return c.JSON(http.StatusOK, echo.Map{"message": "user suspended", "user_id": userID})
}

// POST /admin/users/:id/activate
func ActivateUser(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "user id required"})
	}

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET is_active = TRUE WHERE id = $1`, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to activate user"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "user activated", "user_id": userID})
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=fan creator moderator admin"`
}

// POST /admin/users/:id/role
func SetUserRole(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "user id required"})
	}

	req := new(SetRoleRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false, "error": "validation failed", "fields": common.ValidationFields(err),
		})
	}

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET role = $1 WHERE id = $2`, req.Role, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to update role"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "role updated", "user_id": userID, "role": req.Role})
}

// DELETE /admin/users/:id
// Idempotent: deleting a missing user still returns 200.
func DeleteUser(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "user id required"})
	}

	if _, err := db.Conn.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to delete user"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted", "user_id": userID})
}
