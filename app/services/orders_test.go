package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/auth"
)

func TestCreate_PricesFromCatalog(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "10.00", 5)
	b := f.product(t, "B", "5.50", 5)

	o := f.place(t, alice, line(a, 2), line(b, 1))

	assert.Equal(t, "25.5", o.TotalAmount.String())
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Equal(t, models.PaymentPending, o.PaymentStatus)
	assert.Equal(t, alice.UserID, o.User)
	require.Len(t, o.Products, 2)
	assert.Equal(t, "10", o.Products[0].Price.String())
	require.NotNil(t, o.Products[0].ResolvedProduct)
	assert.Equal(t, "A", o.Products[0].ResolvedProduct.Name)

	// Stock is untouched.
	got, err := f.store.Products().FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
	assert.Equal(t, []string{services.EventOrderCreated}, f.events.names())
}

func TestCreate_SameProductTwice(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "0.10", 5)

	o := f.place(t, alice, line(a, 1), line(a, 2))
	assert.Equal(t, "0.3", o.TotalAmount.String())
}

func TestCreate_UnknownProductPersistsNothing(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "10.00", 5)

	_, err := f.orders.Create(context.Background(), alice, services.CreateOrderInput{
		Products:        []services.LineItemInput{line(a, 1), {Product: "missing", Quantity: 1}},
		ShippingAddress: address(),
	})

	var pnf *services.ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, "missing", pnf.ID)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Equal(t, "Product not found: missing", err.Error())

	all, err := f.store.Orders().All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.events.names())
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)

	cases := []struct {
		name  string
		in    services.CreateOrderInput
		field string
	}{
		{"no items", services.CreateOrderInput{ShippingAddress: address()}, "products"},
		{"zero quantity", services.CreateOrderInput{
			Products: []services.LineItemInput{line(a, 0)}, ShippingAddress: address()}, "products[0].quantity"},
		{"negative quantity", services.CreateOrderInput{
			Products: []services.LineItemInput{line(a, -2)}, ShippingAddress: address()}, "products[0].quantity"},
		{"missing city", services.CreateOrderInput{
			Products:        []services.LineItemInput{line(a, 1)},
			ShippingAddress: models.ShippingAddress{Street: "s", State: "st", ZipCode: "z", Country: "c"},
		}, "shippingAddress.city"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.Create(context.Background(), alice, tc.in)
			var ve *services.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.field)
		})
	}

	_, err := f.orders.Create(context.Background(), auth.Principal{}, services.CreateOrderInput{})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestList_NonAdminSeesOnlyOwnOrders(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	f.place(t, alice, line(a, 1))
	f.place(t, alice, line(a, 2))
	f.place(t, bob, line(a, 3))

	page, err := f.orders.List(context.Background(), alice, services.OrderQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, o := range page.Orders {
		assert.Equal(t, alice.UserID, o.User)
	}

	page, err = f.orders.List(context.Background(), admin, services.OrderQuery{ListQuery: services.ListQuery{Limit: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Orders, 2)
	// newest first by default
	assert.Equal(t, bob.UserID, page.Orders[0].User)
}

func TestList_FiltersAndSort(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	cheap := f.place(t, alice, line(a, 1))
	f.place(t, alice, line(a, 5))
	_, err := f.orders.UpdateStatus(context.Background(), admin, cheap.ID, models.StatusShipped)
	require.NoError(t, err)

	page, err := f.orders.List(context.Background(), admin, services.OrderQuery{Status: "shipped"})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, cheap.ID, page.Orders[0].ID)

	page, err = f.orders.List(context.Background(), admin, services.OrderQuery{
		ListQuery: services.ListQuery{SortBy: "totalAmount", SortOrder: "asc", Search: "springf"},
	})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, cheap.ID, page.Orders[0].ID)

	_, err = f.orders.List(context.Background(), admin, services.OrderQuery{Status: "lost"})
	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.orders.List(context.Background(), admin, services.OrderQuery{ListQuery: services.ListQuery{SortBy: "password"}})
	assert.ErrorAs(t, err, &ve)
}

func TestMyOrders(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	first := f.place(t, alice, line(a, 1))
	second := f.place(t, alice, line(a, 1))
	f.place(t, bob, line(a, 1))

	mine, err := f.orders.MyOrders(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}

func TestGetByID_Authorization(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	o := f.place(t, alice, line(a, 1))

	_, err := f.orders.GetByID(context.Background(), bob, o.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	got, err := f.orders.GetByID(context.Background(), admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.orders.GetByID(context.Background(), alice, "nope")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestGetByID_DeletedProductIsUnknown(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "4.00", 1)
	o := f.place(t, alice, line(a, 2))
	require.NoError(t, f.store.Products().Delete(context.Background(), a.ID))

	got, err := f.orders.GetByID(context.Background(), alice, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Products[0].ResolvedProduct)
	assert.Equal(t, models.UnknownProductName, got.Products[0].DisplayName())
	assert.Equal(t, "8", got.TotalAmount.String())
}

func TestUpdate_RecomputesOnlyWhenProductsChange(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "10.00", 5)
	b := f.product(t, "B", "2.25", 5)
	o := f.place(t, alice, line(a, 1))

	// Catalog price change alone does not touch the stored total.
	a.Price = a.Price.Mul(a.Price)
	require.NoError(t, f.store.Products().Update(context.Background(), a))

	method := "paypal"
	got, err := f.orders.Update(context.Background(), alice, o.ID, services.UpdateOrderInput{PaymentMethod: &method})
	require.NoError(t, err)
	assert.Equal(t, "10", got.TotalAmount.String())
	assert.Equal(t, "paypal", got.PaymentMethod)

	items := []services.LineItemInput{line(b, 4)}
	got, err = f.orders.Update(context.Background(), alice, o.ID, services.UpdateOrderInput{Products: &items})
	require.NoError(t, err)
	assert.Equal(t, "9", got.TotalAmount.String())
	assert.Equal(t, b.ID, got.Products[0].Product)
}

func TestUpdate_DropsStatusAndPaymentForNonAdmins(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	o := f.place(t, alice, line(a, 1))

	paid := models.PaymentCompleted
	got, err := f.orders.Update(context.Background(), alice, o.ID, services.UpdateOrderInput{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, alice.UserID, got.User)

	got, err = f.orders.Update(context.Background(), admin, o.ID, services.UpdateOrderInput{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.PaymentStatus)
	assert.Contains(t, f.events.names(), services.EventOrderPaymentStatusChanged)
}

func TestUpdate_UnknownProductAbortsAndKeepsOrder(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "3.00", 1)
	o := f.place(t, alice, line(a, 1))

	items := []services.LineItemInput{{Product: "ghost", Quantity: 1}}
	_, err := f.orders.Update(context.Background(), alice, o.ID, services.UpdateOrderInput{Products: &items})
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	stored, err := f.store.Orders().FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "3", stored.TotalAmount.String())

	empty := []services.LineItemInput{}
	_, err = f.orders.Update(context.Background(), alice, o.ID, services.UpdateOrderInput{Products: &empty})
	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdate_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	o := f.place(t, alice, line(a, 1))

	method := "cash"
	_, err := f.orders.Update(context.Background(), bob, o.ID, services.UpdateOrderInput{PaymentMethod: &method})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestUpdateStatus_AdminOnly(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "10.00", 1)
	o := f.place(t, alice, line(a, 1))

	got, err := f.orders.UpdateStatus(context.Background(), admin, o.ID, models.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, got.Status)

	_, err = f.orders.UpdateStatus(context.Background(), alice, o.ID, models.StatusDelivered)
	assert.ErrorIs(t, err, services.ErrForbidden)

	stored, err := f.store.Orders().FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, stored.Status)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, services.EventOrderStatusChanged, last.Name)
	assert.Equal(t, "pending", last.OldStatus)
	assert.Equal(t, "shipped", last.NewStatus)
}

func TestUpdateStatus_OwnerCannotChange(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "10.00", 1)
	o := f.place(t, alice, line(a, 1))

	_, err := f.orders.UpdateStatus(context.Background(), alice, o.ID, models.StatusShipped)
	assert.ErrorIs(t, err, services.ErrForbidden)

	stored, err := f.store.Orders().FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestUpdateStatus_Validation(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	o := f.place(t, alice, line(a, 1))

	var ve *services.ValidationError
	_, err := f.orders.UpdateStatus(context.Background(), admin, o.ID, "")
	assert.ErrorAs(t, err, &ve)
	_, err = f.orders.UpdateStatus(context.Background(), admin, o.ID, "teleported")
	assert.ErrorAs(t, err, &ve)
	_, err = f.orders.UpdateStatus(context.Background(), admin, "missing", models.StatusShipped)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateStatus_PolicyDefaultsToAnyTransition(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	o := f.place(t, alice, line(a, 1))

	_, err := f.orders.UpdateStatus(context.Background(), admin, o.ID, models.StatusDelivered)
	require.NoError(t, err)
	got, err := f.orders.UpdateStatus(context.Background(), admin, o.ID, models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestUpdateStatus_StrictPolicy(t *testing.T) {
	f := newFixture(t, services.WithTransitionPolicy(services.PolicyFor(true)))
	a := f.product(t, "A", "1.00", 1)
	o := f.place(t, alice, line(a, 1))

	_, err := f.orders.UpdateStatus(context.Background(), admin, o.ID, models.StatusCancelled)
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(context.Background(), admin, o.ID, models.StatusProcessing)
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields["status"], "cancelled")
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	o := f.place(t, alice, line(a, 1))

	_, err := f.orders.UpdatePaymentStatus(context.Background(), alice, o.ID, models.PaymentCompleted)
	assert.ErrorIs(t, err, services.ErrForbidden)

	got, err := f.orders.UpdatePaymentStatus(context.Background(), admin, o.ID, models.PaymentFailed)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, got.PaymentStatus)
	assert.Equal(t, models.StatusPending, got.Status)

	_, err = f.orders.UpdatePaymentStatus(context.Background(), admin, o.ID, "refunded")
	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1.00", 1)
	o := f.place(t, alice, line(a, 1))

	err := f.orders.Delete(context.Background(), bob, o.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = f.store.Orders().FindByID(context.Background(), o.ID)
	require.NoError(t, err)

	require.NoError(t, f.orders.Delete(context.Background(), alice, o.ID))
	_, err = f.store.Orders().FindByID(context.Background(), o.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	err = f.orders.Delete(context.Background(), admin, o.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Contains(t, f.events.names(), services.EventOrderDeleted)
}

// Scenario: admin ships, owner tries to deliver.
func TestLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "10.00", 10)
	b := f.product(t, "B", "5.50", 10)

	o := f.place(t, alice, line(a, 2), line(b, 1))
	assert.Equal(t, "25.5", o.TotalAmount.StringFixed(1))

	_, err := f.orders.UpdateStatus(context.Background(), alice, o.ID, models.StatusShipped)
	assert.ErrorIs(t, err, services.ErrForbidden)
	got, err := f.orders.GetByID(context.Background(), alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	_, err = f.orders.UpdateStatus(context.Background(), admin, o.ID, models.StatusShipped)
	require.NoError(t, err)
	got, err = f.orders.GetByID(context.Background(), alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, got.Status)
	assert.Equal(t, "25.50", got.TotalAmount.StringFixed(2))
}
