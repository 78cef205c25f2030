package models_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/app/models"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range models.OrderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, models.OrderStatus("refunded").Valid())
	assert.False(t, models.OrderStatus("").Valid())
}

func TestPaymentStatusValid(t *testing.T) {
	assert.True(t, models.PaymentCompleted.Valid())
	assert.False(t, models.PaymentStatus("partial").Valid())
}

func TestLineItemDisplayName(t *testing.T) {
	li := models.LineItem{Product: "p1", Quantity: 2, Price: decimal.RequireFromString("1.50")}
	assert.Equal(t, models.UnknownProductName, li.DisplayName())
	assert.Equal(t, "3", li.Subtotal().String())

	li.ResolvedProduct = &models.ProductSummary{ID: "p1", Name: "Widget"}
	assert.Equal(t, "Widget", li.DisplayName())
}

func TestDistinctProductIDs(t *testing.T) {
	items := []models.LineItem{{Product: "a"}, {Product: "b"}, {Product: "a"}}
	assert.Equal(t, []string{"a", "b"}, models.DistinctProductIDs(items))
}

func TestUserWantsOrderEmails(t *testing.T) {
	u := models.User{Preferences: models.Preferences{Notifications: models.DefaultNotifications()}}
	assert.True(t, u.WantsOrderEmails())

	u.Preferences.Notifications.OrderUpdates = false
	assert.False(t, u.WantsOrderEmails())
}

func TestMoneyEncodesAsJSONNumber(t *testing.T) {
	o := models.Order{
		TotalAmount: decimal.RequireFromString("25.50"),
		Products:    []models.LineItem{{Product: "a", Quantity: 2, Price: decimal.RequireFromString("10.00")}},
	}
	raw, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"totalAmount":25.5`)
	assert.Contains(t, string(raw), `"price":10`)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 25.5, decoded["totalAmount"])

	var p models.Product
	require.NoError(t, json.Unmarshal([]byte(`{"price":"12.40"}`), &p))
	assert.Equal(t, "12.4", p.Price.String())
	require.NoError(t, json.Unmarshal([]byte(`{"price":7.25}`), &p))
	assert.Equal(t, "7.25", p.Price.String())
}
