package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanvault/backoffice/internal/config"
)

func signToken(t *testing.T, secret, userID, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runJWT(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler := JWTMiddleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
		})
	})
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	config.C.JWTSecret = "test-secret"

	t.Run("missing header", func(t *testing.T) {
		rec := runJWT(t, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := runJWT(t, "Basic abc123")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", "u1", "fan", time.Hour)
		rec := runJWT(t, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, "test-secret", "u1", "fan", -time.Hour)
		rec := runJWT(t, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes claims through", func(t *testing.T) {
		token := signToken(t, "test-secret", "u1", "creator", time.Hour)
		rec := runJWT(t, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"user_id":"u1"`)
		assert.Contains(t, rec.Body.String(), `"role":"creator"`)
	})
}

func runWithRole(t *testing.T, role string, mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("role", role)
	}
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	return rec
}

func TestRequireRoles(t *testing.T) {
	mw := RequireRoles("admin", "moderator")

	assert.Equal(t, http.StatusOK, runWithRole(t, "admin", mw).Code)
	assert.Equal(t, http.StatusOK, runWithRole(t, "moderator", mw).Code)
	assert.Equal(t, http.StatusForbidden, runWithRole(t, "fan", mw).Code)
	assert.Equal(t, http.StatusForbidden, runWithRole(t, "creator", mw).Code)
	assert.Equal(t, http.StatusForbidden, runWithRole(t, "", mw).Code)
}

func TestAdminGuard(t *testing.T) {
	mw := echo.MiddlewareFunc(AdminGuard)

	assert.Equal(t, http.StatusOK, runWithRole(t, "admin", mw).Code)

	for _, role := range []string{"moderator", "creator", "fan", ""} {
		rec := runWithRole(t, role, mw)
		assert.Equal(t, http.StatusForbidden, rec.Code, "role %q must be rejected", role)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	}
}
