package common

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// PageQuery is the parsed pagination contract shared by list endpoints:
// page (1-based), limit (capped), and a whitelisted sort column.
type PageQuery struct {
	Page  int
	Limit int
	// OrderBy is a safe "column ASC|DESC" fragment built from the whitelist.
	OrderBy string
}

// ParsePageQuery reads page/limit/sort query params. defaultSort uses the
// same syntax as the sort param ("-created_at" for descending). Only
// columns in sortable may be selected by the client.
func ParsePageQuery(c echo.Context, defaultSort string, sortable ...string) PageQuery {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	sort := c.QueryParam("sort")
	orderBy := orderClause(sort, sortable)
	if orderBy == "" {
		orderBy = orderClause(defaultSort, sortable)
	}

	return PageQuery{Page: page, Limit: limit, OrderBy: orderBy}
}

// Offset returns the row offset for the current page.
func (p PageQuery) Offset() int {
	return (p.Page - 1) * p.Limit
}

func orderClause(sort string, sortable []string) string {
	if sort == "" {
		return ""
	}
	dir := "ASC"
	col := sort
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		col = sort[1:]
	}
	for _, s := range sortable {
		if col == s {
			return col + " " + dir
		}
	}
	return ""
}
