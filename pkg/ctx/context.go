// Package ctx gives handlers a single *Context instead of the
// (http.ResponseWriter, *http.Request) pair.
//
//	func Show(c *ctx.Context) {
//	    c.OK(map[string]any{"id": c.Param("id")})
//	}
//
//	router.Get("/orders/{id}", "orders.show", ctx.Wrap(Show))
package ctx

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/bind"
	"github.com/vitthalk15/DataDash/pkg/response"
	"github.com/vitthalk15/DataDash/pkg/validate"
)

type HandlerFunc func(c *Context)

// Wrap adapts h to http.HandlerFunc. Contexts are pooled.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context is one request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{New: func() any { return &Context{} }}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// ─── Request ──────────────────────────────────────────────────────────────────

func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

func (c *Context) Query(key string) string { return strings.TrimSpace(c.R.URL.Query().Get(key)) }

func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// QueryInt parses key as an int, returning def when absent or malformed.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

func (c *Context) Header(key string) string { return c.R.Header.Get(key) }

func (c *Context) Context() context.Context { return c.R.Context() }

// Principal returns the authenticated caller, if any.
func (c *Context) Principal() (auth.Principal, bool) {
	return auth.FromContext(c.R.Context())
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes and validates the body into dest. On failure it writes
// a 400 response and returns false.
//
//	var in CreateOrderInput
//	if !c.BindJSON(&in) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ErrNoFile is returned by FormFile when the field is missing.
var ErrNoFile = errors.New("no file uploaded")

// FormFile reads one multipart file, holding at most maxBytes in memory.
func (c *Context) FormFile(field string, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxBytes+1<<20)
	if err := c.R.ParseMultipartForm(maxBytes); err != nil {
		return nil, nil, err
	}
	f, h, err := c.R.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, ErrNoFile
	}
	return f, h, err
}

// ─── Response ─────────────────────────────────────────────────────────────────

func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

func (c *Context) OK(v any)      { c.JSON(http.StatusOK, v) }
func (c *Context) Created(v any) { c.JSON(http.StatusCreated, v) }

// Message writes {"message": msg} with 200.
func (c *Context) Message(msg string) {
	c.JSON(http.StatusOK, map[string]string{"message": msg})
}

func (c *Context) Error(code int, message string) {
	c.Fail(response.ErrorBody{Status: code, Message: message})
}

func (c *Context) Fail(body response.ErrorBody) {
	c.status = body.Status
	response.Fail(c.W, body)
}

func (c *Context) ValidationError(errs map[string]string) {
	c.Fail(response.ErrorBody{Status: http.StatusBadRequest, Message: "Validation error", Errors: errs})
}

// WrittenStatus is the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
