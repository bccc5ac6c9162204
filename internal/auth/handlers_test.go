package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanvault/backoffice/internal/common"
)

func postJSON(t *testing.T, handler echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = common.NewRequestValidator()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestSignupRejectsInvalidPayload(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed email", `{"name":"Ada","email":"not-an-email","password":"longenough"}`},
		{"short password", `{"name":"Ada","email":"ada@example.com","password":"short"}`},
		{"missing name", `{"email":"ada@example.com","password":"longenough"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, Signup, "/signup", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
			assert.Contains(t, rec.Body.String(), `"fields"`)
		})
	}
}

func TestLoginRejectsInvalidPayload(t *testing.T) {
	rec := postJSON(t, Login, "/login", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestLoginBlockedReturns429(t *testing.T) {
	const email = "blocked-handler-test@example.com"
	defer loginTracker.Clear(email)

	for i := 0; i < 3; i++ {
		loginTracker.Fail(email)
	}

	rec := postJSON(t, Login, "/login", `{"email":"`+email+`","password":"whatever1"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"retry_after"`)
}

func TestResetTokenUsable(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	used := now.Add(-time.Minute)

	assert.True(t, tokenUsable(nil, now.Add(30*time.Minute), now))
	assert.False(t, tokenUsable(&used, now.Add(30*time.Minute), now), "used token is single-use")
	assert.False(t, tokenUsable(nil, now.Add(-time.Second), now), "expired token is rejected")
	assert.False(t, tokenUsable(nil, now, now), "token expires exactly at expiry")
}

func TestResetTokenShape(t *testing.T) {
	tok, err := newResetToken()
	require.NoError(t, err)
	assert.Len(t, tok, 64)

	other, err := newResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}
