package ctx_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/bind"
	appctx "github.com/vitthalk15/DataDash/pkg/ctx"
)

type input struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestParamQueryAndPrincipal(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/orders/{id}", appctx.Wrap(func(c *appctx.Context) {
		p, ok := c.Principal()
		c.OK(map[string]any{
			"id":    c.Param("id"),
			"page":  c.QueryInt("page", 1),
			"limit": c.QueryInt("limit", 10),
			"sort":  c.DefaultQuery("sortOrder", "desc"),
			"user":  p.UserID,
			"ok":    ok,
		})
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders/o-1?page=3&limit=abc", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: "u-1"}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	body := decode(t, rec)
	assert.Equal(t, "o-1", body["id"])
	assert.EqualValues(t, 3, body["page"])
	assert.EqualValues(t, 10, body["limit"])
	assert.Equal(t, "desc", body["sort"])
	assert.Equal(t, "u-1", body["user"])
	assert.Equal(t, true, body["ok"])
}

func TestBindJSON(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		ctxMax int64
		code   int
		check  func(t *testing.T, body map[string]any)
	}{
		{name: "valid", body: `{"name":"Ann","email":"ann@example.com"}`, code: http.StatusOK},
		{name: "validation", body: `{"name":"","email":"nope"}`, code: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Validation error", body["message"])
				errs := body["errors"].(map[string]any)
				assert.Contains(t, errs, "name")
				assert.Contains(t, errs, "email")
			}},
		{name: "malformed", body: `{"name":`, code: http.StatusBadRequest},
		{name: "empty", body: ``, code: http.StatusBadRequest},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", 64) + `"}`, ctxMax: 16, code: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["message"], "too large")
			}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body == "" {
				req = httptest.NewRequest(http.MethodPost, "/", nil)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			}
			if tc.ctxMax > 0 {
				req = req.WithContext(bind.WithLimit(req.Context(), tc.ctxMax))
			}
			rec := httptest.NewRecorder()
			appctx.Wrap(func(c *appctx.Context) {
				var in input
				if !c.BindJSON(&in) {
					return
				}
				c.OK(in)
			})(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			if tc.check != nil {
				tc.check(t, decode(t, rec))
			}
		})
	}
}

func TestFormFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "a.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		_, _, err := c.FormFile("avatar", 1<<20)
		assert.ErrorIs(t, err, appctx.ErrNoFile)

		f, h, err := c.FormFile("image", 1<<20)
		require.NoError(t, err)
		defer f.Close()
		c.OK(map[string]any{"name": h.Filename, "size": h.Size})
	})(rec, req)

	body := decode(t, rec)
	assert.Equal(t, "a.png", body["name"])
	assert.EqualValues(t, 9, body["size"])
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Error(http.StatusNotFound, "Order not found")
		assert.Equal(t, http.StatusNotFound, c.WrittenStatus())
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := decode(t, rec)
	assert.EqualValues(t, 404, body["status"])
	assert.Equal(t, "Order not found", body["message"])
	assert.NotContains(t, body, "errors")
}
