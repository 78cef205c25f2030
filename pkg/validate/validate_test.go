package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vitthalk15/DataDash/pkg/validate"
)

type address struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city"   validate:"required"`
}

type item struct {
	Product  string `json:"product"  validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type orderInput struct {
	Products []item           `json:"products"        validate:"required,dive"`
	Address  *address         `json:"shippingAddress" validate:"required,dive"`
	Status   string           `json:"status"          validate:"nullable,in=pending,shipped,cancelled"`
	Price    *decimal.Decimal `json:"price"           validate:"nullable,gte=0"`
	Email    string           `json:"email"           validate:"nullable,email"`
	Name     string           `json:"name"            validate:"nullable,min=2,max=5"`
}

func TestStruct_Valid(t *testing.T) {
	price := decimal.RequireFromString("0")
	errs := validate.Struct(&orderInput{
		Products: []item{{Product: "p1", Quantity: 2}},
		Address:  &address{Street: "1 Main", City: "Springfield"},
		Status:   "shipped",
		Price:    &price,
		Email:    "a@b.co",
		Name:     "Ann",
	})
	assert.Empty(t, errs)
}

func TestStruct_RequiredAndDive(t *testing.T) {
	errs := validate.Struct(orderInput{})
	assert.Contains(t, errs, "products")
	assert.Contains(t, errs, "shippingAddress")

	errs = validate.Struct(orderInput{
		Products: []item{{Product: "p1", Quantity: 1}, {Product: "", Quantity: 0}},
		Address:  &address{Street: "1 Main"},
	})
	assert.Equal(t, "The products[1].product field is required.", errs["products[1].product"])
	assert.Contains(t, errs, "shippingAddress.city")
	assert.NotContains(t, errs, "products[0].quantity")
}

func TestStruct_Rules(t *testing.T) {
	neg := decimal.RequireFromString("-1")
	errs := validate.Struct(orderInput{
		Products: []item{{Product: "p", Quantity: 1}},
		Address:  &address{Street: "s", City: "c"},
		Status:   "lost",
		Price:    &neg,
		Email:    "not-an-email",
		Name:     "toolongname",
	})
	assert.Equal(t, "The selected status is invalid.", errs["status"])
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "email")
	assert.Equal(t, "The name must not exceed 5 characters.", errs["name"])
}

func TestStruct_QuantityBelowMin(t *testing.T) {
	errs := validate.Struct(item{Product: "p", Quantity: -2})
	assert.Equal(t, "The quantity must be at least 1.", errs["quantity"])
}
