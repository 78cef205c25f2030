package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/vitthalk15/DataDash/pkg/bind"
	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/response"
)

// Recovery turns a handler panic into a 500. The panic value is only
// exposed in the body when debug is set.
func Recovery(debugMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.WithCtx(r.Context()).Error("panic recovered",
					"error", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				body := response.ErrorBody{Status: http.StatusInternalServerError, Message: "Something went wrong!"}
				if debugMode {
					body.Error = fmt.Sprint(rec)
				}
				response.Fail(w, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit caps JSON request bodies at n bytes.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(bind.WithLimit(r.Context(), n)))
		})
	}
}
