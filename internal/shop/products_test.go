package shop

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanvault/backoffice/internal/common"
)

func TestCreateProductRejectsInvalidPayload(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing creator", `{"title":"Poster","price_cents":500}`},
		{"creator not a uuid", `{"creator_id":"42","title":"Poster","price_cents":500}`},
		{"missing title", `{"creator_id":"5a4cafa3-72cc-4876-a9a1-53c4f0038f0b","price_cents":500}`},
		{"negative price", `{"creator_id":"5a4cafa3-72cc-4876-a9a1-53c4f0038f0b","title":"Poster","price_cents":-1}`},
	}

	e := echo.New()
	e.Validator = common.NewRequestValidator()

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			require.NoError(t, CreateProduct(e.NewContext(req, rec)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}
