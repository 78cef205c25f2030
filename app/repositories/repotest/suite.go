// Package repotest is a conformance suite run against every store backend.
//
//	func TestConformance(t *testing.T) {
//	    repotest.Run(t, func(t *testing.T) repositories.Store { return memstore.New() })
//	}
package repotest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
)

// Factory returns a fresh, empty store for one sub-test.
type Factory func(t *testing.T) repositories.Store

// Run executes the whole suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("ProductCRUD", func(t *testing.T) { productCRUD(t, newStore(t)) })
	t.Run("ProductFindByIDs", func(t *testing.T) { productFindByIDs(t, newStore(t)) })
	t.Run("ProductList", func(t *testing.T) { productList(t, newStore(t)) })
	t.Run("OrderCRUD", func(t *testing.T) { orderCRUD(t, newStore(t)) })
	t.Run("OrderList", func(t *testing.T) { orderList(t, newStore(t)) })
	t.Run("UserCRUD", func(t *testing.T) { userCRUD(t, newStore(t)) })
}

// ─── Fixtures ─────────────────────────────────────────────────────────────────

func Product(name, category, price string, stock int) *models.Product {
	return &models.Product{
		Name:        name,
		Description: name + " description",
		Category:    category,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}
}

func Address(street, city, state, country string) models.ShippingAddress {
	return models.ShippingAddress{Street: street, City: city, State: state, ZipCode: "00000", Country: country}
}

func Order(userID string, addr models.ShippingAddress, items ...models.LineItem) *models.Order {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return &models.Order{
		User:            userID,
		Products:        items,
		TotalAmount:     total,
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
		PaymentMethod:   "card",
		ShippingAddress: addr,
	}
}

// Item is a line item for p at p's current price.
func Item(p *models.Product, qty int) models.LineItem {
	return models.LineItem{Product: p.ID, Quantity: qty, Price: p.Price}
}

func User(name, email string, role models.Role) *models.User {
	return &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         role,
		Profile:      models.Profile{Language: "en"},
		Preferences:  models.Preferences{Notifications: models.DefaultNotifications()},
	}
}

// ─── Products ─────────────────────────────────────────────────────────────────

func productCRUD(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	repo := s.Products()

	p := Product("Lamp", "home", "19.99", 4)
	require.NoError(t, repo.Create(ctx, p))
	require.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("19.99")), got.Price.String())

	got.Stock = 10
	got.ImageURL = "http://cdn/lamp.png"
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, again.Stock)
	assert.Equal(t, "http://cdn/lamp.png", again.ImageURL)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), repositories.ErrNotFound)
}

func productFindByIDs(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	repo := s.Products()

	a := Product("A", "x", "10.00", 1)
	b := Product("B", "x", "5.50", 1)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	found, err := repo.FindByIDs(ctx, []string{a.ID, b.ID, "does-not-exist"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "A", found[a.ID].Name)
	assert.Equal(t, "B", found[b.ID].Name)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func productList(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	repo := s.Products()

	for _, p := range []*models.Product{
		Product("Desk Lamp", "home", "20", 3),
		Product("Office Chair", "furniture", "150", 2),
		Product("Floor Lamp", "home", "45", 0),
	} {
		require.NoError(t, repo.Create(ctx, p))
	}

	home, total, err := repo.List(ctx, repositories.ProductFilter{Category: "home"},
		repositories.Sort{Field: "price"}, repositories.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, home, 2)
	assert.Equal(t, "Desk Lamp", home[0].Name)

	lamps, total, err := repo.List(ctx, repositories.ProductFilter{Search: "LAMP"},
		repositories.Sort{Field: "createdAt", Desc: true}, repositories.Page{Number: 1, Size: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, lamps, 1)
	assert.Equal(t, "Floor Lamp", lamps[0].Name)
}

// ─── Orders ───────────────────────────────────────────────────────────────────

func orderCRUD(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	u := User("Owner", "owner@example.com", models.RoleUser)
	require.NoError(t, s.Users().Create(ctx, u))
	p := Product("A", "x", "10.00", 5)
	require.NoError(t, s.Products().Create(ctx, p))

	o := Order(u.ID, Address("1 Main St", "Springfield", "IL", "USA"),
		models.LineItem{Product: p.ID, Quantity: 2, Price: p.Price})
	require.NoError(t, s.Orders().Create(ctx, o))
	require.NotEmpty(t, o.ID)

	got, err := s.Orders().FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.User)
	require.Len(t, got.Products, 1)
	assert.Equal(t, p.ID, got.Products[0].Product)
	assert.Equal(t, 2, got.Products[0].Quantity)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("20")), got.TotalAmount.String())
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "Springfield", got.ShippingAddress.City)

	got.Status = models.StatusShipped
	got.PaymentStatus = models.PaymentCompleted
	got.Products = append(got.Products, models.LineItem{Product: p.ID, Quantity: 1, Price: p.Price})
	got.TotalAmount = decimal.RequireFromString("30")
	require.NoError(t, s.Orders().Update(ctx, got))

	again, err := s.Orders().FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, again.Status)
	assert.Equal(t, models.PaymentCompleted, again.PaymentStatus)
	assert.Len(t, again.Products, 2)
	assert.True(t, again.TotalAmount.Equal(decimal.RequireFromString("30")))

	require.NoError(t, s.Orders().Delete(ctx, o.ID))
	_, err = s.Orders().FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func orderList(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	alice := User("Alice", "alice@example.com", models.RoleUser)
	bob := User("Bob", "bob@example.com", models.RoleUser)
	require.NoError(t, s.Users().Create(ctx, alice))
	require.NoError(t, s.Users().Create(ctx, bob))
	p := Product("A", "x", "1.00", 5)
	require.NoError(t, s.Products().Create(ctx, p))

	item := func(q int) models.LineItem { return models.LineItem{Product: p.ID, Quantity: q, Price: p.Price} }
	orders := []*models.Order{
		Order(alice.ID, Address("1 Elm", "Boston", "MA", "USA"), item(1)),
		Order(alice.ID, Address("2 Oak", "Portland", "OR", "USA"), item(3)),
		Order(bob.ID, Address("3 Pine", "Toronto", "ON", "Canada"), item(2)),
	}
	orders[1].Status = models.StatusShipped
	for _, o := range orders {
		require.NoError(t, s.Orders().Create(ctx, o))
	}

	page := repositories.Page{Number: 1, Size: 10}
	newest := repositories.Sort{Field: "createdAt", Desc: true}

	mine, total, err := s.Orders().List(ctx, repositories.OrderFilter{UserID: alice.ID}, newest, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, mine, 2)
	assert.Equal(t, orders[1].ID, mine[0].ID)

	shipped, total, err := s.Orders().List(ctx, repositories.OrderFilter{Status: models.StatusShipped}, newest, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, orders[1].ID, shipped[0].ID)

	canada, total, err := s.Orders().List(ctx, repositories.OrderFilter{Search: "canad"}, newest, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, bob.ID, canada[0].User)

	byTotal, _, err := s.Orders().List(ctx, repositories.OrderFilter{}, repositories.Sort{Field: "totalAmount", Desc: true}, page)
	require.NoError(t, err)
	require.Len(t, byTotal, 3)
	assert.Equal(t, orders[1].ID, byTotal[0].ID)

	second, total, err := s.Orders().List(ctx, repositories.OrderFilter{}, newest, repositories.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, second, 1)
	assert.Equal(t, orders[0].ID, second[0].ID)

	all, err := s.Orders().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// ─── Users ────────────────────────────────────────────────────────────────────

func userCRUD(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	repo := s.Users()

	u := User("Jane", "jane@example.com", models.RoleAdmin)
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	dup := User("Other Jane", "jane@example.com", models.RoleUser)
	assert.ErrorIs(t, repo.Create(ctx, dup), repositories.ErrDuplicate)

	byEmail, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, models.RoleAdmin, byEmail.Role)
	assert.True(t, byEmail.Preferences.Notifications.OrderUpdates)
	assert.False(t, byEmail.Preferences.Notifications.MarketingEmails)

	byEmail.Profile.Company = "Acme"
	byEmail.Preferences.Notifications.OrderUpdates = false
	require.NoError(t, repo.Update(ctx, byEmail))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Profile.Company)
	assert.False(t, got.Preferences.Notifications.OrderUpdates)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
