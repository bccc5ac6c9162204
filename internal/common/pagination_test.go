package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func pageCtx(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParsePageQueryDefaults(t *testing.T) {
	pq := ParsePageQuery(pageCtx(""), "-created_at", "created_at", "name")

	assert.Equal(t, 1, pq.Page)
	assert.Equal(t, defaultLimit, pq.Limit)
	assert.Equal(t, "created_at DESC", pq.OrderBy)
	assert.Equal(t, 0, pq.Offset())
}

func TestParsePageQueryClamps(t *testing.T) {
	pq := ParsePageQuery(pageCtx("page=0&limit=0"), "created_at", "created_at")
	assert.Equal(t, 1, pq.Page)
	assert.Equal(t, defaultLimit, pq.Limit)

	pq = ParsePageQuery(pageCtx("page=-3&limit=9999"), "created_at", "created_at")
	assert.Equal(t, 1, pq.Page)
	assert.Equal(t, maxLimit, pq.Limit)

	pq = ParsePageQuery(pageCtx("page=abc&limit=xyz"), "created_at", "created_at")
	assert.Equal(t, 1, pq.Page)
	assert.Equal(t, defaultLimit, pq.Limit)
}

func TestParsePageQueryOffset(t *testing.T) {
	pq := ParsePageQuery(pageCtx("page=3&limit=25"), "created_at", "created_at")

	assert.Equal(t, 3, pq.Page)
	assert.Equal(t, 25, pq.Limit)
	assert.Equal(t, 50, pq.Offset())
}

func TestParsePageQuerySortWhitelist(t *testing.T) {
	sortable := []string{"created_at", "amount_cents"}

	pq := ParsePageQuery(pageCtx("sort=amount_cents"), "-created_at", sortable...)
	assert.Equal(t, "amount_cents ASC", pq.OrderBy)

	pq = ParsePageQuery(pageCtx("sort=-amount_cents"), "-created_at", sortable...)
	assert.Equal(t, "amount_cents DESC", pq.OrderBy)

	// Columns outside the whitelist fall back to the default sort.
	pq = ParsePageQuery(pageCtx("sort=password_hash"), "-created_at", sortable...)
	assert.Equal(t, "created_at DESC", pq.OrderBy)

	pq = ParsePageQuery(pageCtx("sort=id;DROP%20TABLE%20users"), "-created_at", sortable...)
	assert.Equal(t, "created_at DESC", pq.OrderBy)
}
