package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiterBurstThenDeny(t *testing.T) {
	rl := NewIPRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d within burst should pass", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"), "request over budget must be denied")
}

func TestIPRateLimiterPerIPIsolation(t *testing.T) {
	rl := NewIPRateLimiter(1, time.Minute)

	require.True(t, rl.Allow("10.0.0.1"))
	require.False(t, rl.Allow("10.0.0.1"))

	// A different client has its own bucket.
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestIPRateLimiterCleanupEvictsIdle(t *testing.T) {
	rl := NewIPRateLimiter(1, time.Minute)
	rl.idleAfter = 0

	rl.Allow("10.0.0.1")
	time.Sleep(time.Millisecond)
	rl.cleanup()

	rl.mu.Lock()
	_, kept := rl.limiters["10.0.0.1"]
	rl.mu.Unlock()
	assert.False(t, kept)
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	rl := NewIPRateLimiter(1, time.Minute)
	e := echo.New()
	handler := RateLimit(rl)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:51234"
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)

	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
