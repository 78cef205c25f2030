// Package controllers adapts HTTP requests to service calls.
package controllers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/ctx"
	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/response"
)

// Base is embedded by every controller for shared error handling.
type Base struct {
	// Debug exposes internal error text in 500 bodies.
	Debug bool
}

// Fail writes the response for a service error.
func (b Base) Fail(c *ctx.Context, err error) {
	var (
		ve  *services.ValidationError
		pnf *services.ProductNotFoundError
		ae  *services.AuthError
		fe  *services.ForbiddenError
		nf  *services.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		msg := ve.Message
		if msg == "" {
			msg = "Validation error"
		}
		c.Fail(response.ErrorBody{Status: http.StatusBadRequest, Message: msg, Errors: ve.Fields})
	case errors.As(err, &pnf):
		c.Error(http.StatusBadRequest, pnf.Error())
	case errors.As(err, &ae):
		c.Error(http.StatusUnauthorized, ae.Message)
	case errors.Is(err, services.ErrUnauthenticated):
		c.Error(http.StatusUnauthorized, "Not authenticated")
	case errors.As(err, &fe):
		c.Error(http.StatusForbidden, fe.Message)
	case errors.Is(err, services.ErrForbidden):
		c.Error(http.StatusForbidden, "Access denied")
	case errors.As(err, &nf):
		c.Error(http.StatusNotFound, nf.Error())
	case errors.Is(err, services.ErrNotFound):
		c.Error(http.StatusNotFound, "Not found")
	default:
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.R.Method, "path", c.R.URL.Path, "error", err)
		body := response.ErrorBody{Status: http.StatusInternalServerError, Message: "Something went wrong!"}
		if b.Debug {
			body.Error = err.Error()
		}
		c.Fail(body)
	}
}

// upload reads a multipart image field and sniffs its content type.
// The returned closer must be called once the upload is consumed.
func (b Base) upload(c *ctx.Context, field string) (services.Upload, io.Closer, bool) {
	f, h, err := c.FormFile(field, services.MaxImageBytes)
	if errors.Is(err, ctx.ErrNoFile) {
		c.ValidationError(map[string]string{field: "The " + field + " field is required."})
		return services.Upload{}, nil, false
	}
	if err != nil {
		c.Error(http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return services.Upload{}, nil, false
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		b.Fail(c, err)
		return services.Upload{}, nil, false
	}
	head = head[:n]

	return services.Upload{
		Filename:    h.Filename,
		ContentType: http.DetectContentType(head),
		Size:        h.Size,
		Body:        io.MultiReader(bytes.NewReader(head), f),
	}, f, true
}
