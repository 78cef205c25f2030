// Package logger wraps log/slog with the request-scoped logger used across
// Data Vista.
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order created", "order_id", o.ID)
//	// → level=INFO msg="order created" request_id=3f1c... order_id=...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// L is the process-wide base logger. Setup replaces it.
var L = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Setup installs the base logger for env. Production writes JSON at INFO,
// every other environment writes text at DEBUG. Extra handlers (the Mongo
// sink, for instance) receive every record as well.
func Setup(env string, w io.Writer, extra ...slog.Handler) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	var h slog.Handler
	switch env {
	case "production", "prod":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	if len(extra) > 0 {
		h = NewMultiHandler(append([]slog.Handler{h}, extra...)...)
	}

	L = slog.New(h)
	slog.SetDefault(L)
	return L
}

// ─── Context-aware logger ─────────────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the request logger injected by the logging middleware,
// or L when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

// InjectLogger stores log in ctx for WithCtx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
