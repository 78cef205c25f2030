package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/vitthalk15/DataDash/pkg/ctx"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	Base
	store Pinger
	name  string
}

func NewHealthController(store Pinger, appName string, base Base) *HealthController {
	return &HealthController{Base: base, store: store, name: appName}
}

// Welcome GET /
func (hc *HealthController) Welcome(c *ctx.Context) {
	c.Message("Welcome to " + hc.name + " API")
}

// Health GET /healthz
func (hc *HealthController) Health(c *ctx.Context) {
	pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	if err := hc.store.Ping(pingCtx); err != nil {
		body := map[string]string{"status": "unavailable"}
		if hc.Debug {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.OK(map[string]string{"status": "ok"})
}
