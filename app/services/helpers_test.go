package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories/memstore"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/auth"
)

var (
	admin   = auth.Principal{UserID: "admin-1", Role: "admin"}
	manager = auth.Principal{UserID: "manager-1", Role: "manager"}
	alice   = auth.Principal{UserID: "alice", Role: "user"}
	bob     = auth.Principal{UserID: "bob", Role: "user"}
)

type recorder struct {
	mu     sync.Mutex
	events []services.OrderEvent
}

func (r *recorder) FireAsync(_ context.Context, _ string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, payload.(services.OrderEvent))
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

type fixture struct {
	store  *memstore.Store
	orders *services.OrderService
	events *recorder
}

func newFixture(t *testing.T, opts ...services.OrderOption) *fixture {
	t.Helper()
	st := memstore.New()
	rec := &recorder{}
	opts = append([]services.OrderOption{services.WithPublisher(rec)}, opts...)
	return &fixture{
		store:  st,
		orders: services.NewOrderService(st.Orders(), st.Products(), opts...),
		events: rec,
	}
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name,
		Category:    "general",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func address() models.ShippingAddress {
	return models.ShippingAddress{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "USA"}
}

func line(p *models.Product, qty int) services.LineItemInput {
	return services.LineItemInput{Product: p.ID, Quantity: qty}
}

func (f *fixture) place(t *testing.T, actor auth.Principal, items ...services.LineItemInput) *models.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), actor, services.CreateOrderInput{
		Products:        items,
		ShippingAddress: address(),
		PaymentMethod:   "card",
	})
	require.NoError(t, err)
	return o
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}
