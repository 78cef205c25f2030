package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every fulfillment state in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// PaymentStatus tracks payment independently of fulfillment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentCompleted, PaymentFailed}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// UnknownProductName is displayed for line items whose product was deleted.
const UnknownProductName = "Unknown Product"

// LineItem is one product reference inside an order. Price is the unit
// price captured when the line items were last set.
type LineItem struct {
	Product         string          `json:"productId"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	ResolvedProduct *ProductSummary `json:"product"`
}

// DisplayName is the product name, or UnknownProductName when the
// referenced product no longer exists.
func (li LineItem) DisplayName() string {
	if li.ResolvedProduct == nil {
		return UnknownProductName
	}
	return li.ResolvedProduct.Name
}

// Subtotal is unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ShippingAddress fields are all required together.
type ShippingAddress struct {
	Street  string `json:"street"  validate:"required"`
	City    string `json:"city"    validate:"required"`
	State   string `json:"state"   validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// Order is a customer order. TotalAmount is derived from Products and is
// never accepted from clients.
type Order struct {
	ID              string          `json:"_id"`
	User            string          `json:"user"`
	Products        []LineItem      `json:"products"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OwnedBy reports whether userID placed the order.
func (o *Order) OwnedBy(userID string) bool {
	return o.User == userID
}

// ProductIDs returns the distinct product ids referenced by the order.
func (o *Order) ProductIDs() []string {
	return DistinctProductIDs(o.Products)
}

// DistinctProductIDs returns product ids in first-seen order without repeats.
func DistinctProductIDs(items []LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.Product]; ok {
			continue
		}
		seen[it.Product] = struct{}{}
		ids = append(ids, it.Product)
	}
	return ids
}
