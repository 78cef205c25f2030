package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/pkg/router"
)

func tag(name string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", name)
			next.ServeHTTP(w, r)
		})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupsInheritMiddlewareInOrder(t *testing.T) {
	r := router.New()
	api := r.Group("/api", tag("api"))
	orders := api.Group("orders", tag("orders"))
	orders.Patch("/{id}/status", "orders.status", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/orders/o1/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "orders", "route"}, rec.Header().Values("X-Chain"))
}

func TestNamedRoutesAndListing(t *testing.T) {
	r := router.New()
	g := r.Group("/api/users")
	g.Get("/{id}", "users.show", ok)
	g.Put("/{id}", "users.update", ok)
	g.Delete("/{id}", "users.destroy", ok)
	r.Get("/", "home", ok)

	url, err := r.URL("users.show", map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/api/users/42", url)

	_, err = r.URL("users.show", nil)
	assert.Error(t, err)
	_, err = r.URL("missing", nil)
	assert.Error(t, err)

	routes := r.Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, router.RouteInfo{Method: "GET", Path: "/", Name: "home"}, routes[0])
	assert.Equal(t, "DELETE", routes[1].Method)
}

func TestNotFoundAndMethodNotAllowedAreJSON(t *testing.T) {
	r := router.New()
	r.Get("/only-get", "", ok)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Route not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
