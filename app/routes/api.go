// Package routes declares the HTTP surface.
package routes

import (
	"net/http"

	"github.com/vitthalk15/DataDash/app/controllers"
	"github.com/vitthalk15/DataDash/pkg/ctx"
	"github.com/vitthalk15/DataDash/pkg/middleware"
	"github.com/vitthalk15/DataDash/pkg/rbac"
	"github.com/vitthalk15/DataDash/pkg/router"
)

// Handlers is everything the routes mount. The optional handlers are
// skipped when nil.
type Handlers struct {
	Orders   *controllers.OrderController
	Products *controllers.ProductController
	Users    *controllers.UserController
	Health   *controllers.HealthController
	Auth     middleware.Resolver

	GraphQL   http.Handler
	OrderFeed http.Handler
	Metrics   http.Handler
	Files     http.Handler
}

func RegisterAPI(r *router.Router, h Handlers) {
	authed := middleware.Auth(h.Auth)
	adminOnly := rbac.RequireRole(rbac.Admin)
	staff := rbac.RequireRole(rbac.Admin, rbac.Manager)

	r.Get("/", "home", ctx.Wrap(h.Health.Welcome))
	r.Get("/healthz", "health", ctx.Wrap(h.Health.Health))
	if h.Metrics != nil {
		r.Handle("/metrics", "metrics", h.Metrics)
	}
	if h.Files != nil {
		r.Handle("/storage/*", "storage", http.StripPrefix("/storage/", h.Files))
	}

	api := r.Group("/api")

	// ── Orders ──────────────────────────────────────────────────────────────
	orders := api.Group("/orders", authed)
	orders.Get("/", "orders.index", ctx.Wrap(h.Orders.Index))
	orders.Get("/my-orders", "orders.mine", ctx.Wrap(h.Orders.MyOrders))
	orders.Post("/", "orders.store", ctx.Wrap(h.Orders.Store))
	orders.Get("/{id}", "orders.show", ctx.Wrap(h.Orders.Show))
	orders.Put("/{id}", "orders.update", ctx.Wrap(h.Orders.Update))
	orders.Patch("/{id}/status", "orders.status", ctx.Wrap(h.Orders.UpdateStatus), adminOnly)
	orders.Patch("/{id}/payment-status", "orders.payment", ctx.Wrap(h.Orders.UpdatePaymentStatus), adminOnly)
	orders.Delete("/{id}", "orders.destroy", ctx.Wrap(h.Orders.Destroy))

	// ── Products ────────────────────────────────────────────────────────────
	products := api.Group("/products")
	products.Get("/", "products.index", ctx.Wrap(h.Products.Index))
	products.Get("/{id}", "products.show", ctx.Wrap(h.Products.Show))

	manage := products.Group("", authed, adminOnly)
	manage.Post("/", "products.store", ctx.Wrap(h.Products.Store))
	manage.Put("/{id}", "products.update", ctx.Wrap(h.Products.Update))
	manage.Delete("/{id}", "products.destroy", ctx.Wrap(h.Products.Destroy))
	manage.Post("/{id}/image", "products.image", ctx.Wrap(h.Products.UploadImage))

	// ── Users ───────────────────────────────────────────────────────────────
	users := api.Group("/users")
	users.Post("/register", "users.register", ctx.Wrap(h.Users.Register))
	users.Post("/login", "users.login", ctx.Wrap(h.Users.Login))

	account := users.Group("", authed)
	account.Get("/me", "users.me", ctx.Wrap(h.Users.Me))
	account.Get("/", "users.index", ctx.Wrap(h.Users.Index), staff)
	account.Post("/", "users.store", ctx.Wrap(h.Users.Store), adminOnly)
	account.Get("/{id}", "users.show", ctx.Wrap(h.Users.Show))
	account.Put("/{id}", "users.update", ctx.Wrap(h.Users.Update))
	account.Delete("/{id}", "users.destroy", ctx.Wrap(h.Users.Destroy))
	account.Post("/{id}/avatar", "users.avatar", ctx.Wrap(h.Users.UploadAvatar))

	// ── Analytics & live feed ───────────────────────────────────────────────
	if h.GraphQL != nil {
		api.Post("/graphql", "graphql", h.GraphQL.ServeHTTP, authed, staff)
	}
	if h.OrderFeed != nil {
		api.Get("/ws/orders", "ws.orders", h.OrderFeed.ServeHTTP, authed, adminOnly)
	}
}
