package services

import (
	"context"

	"github.com/vitthalk15/DataDash/app/models"
)

// Order event names.
const (
	EventOrderCreated              = "order.created"
	EventOrderUpdated              = "order.updated"
	EventOrderStatusChanged        = "order.status_changed"
	EventOrderPaymentStatusChanged = "order.payment_status_changed"
	EventOrderDeleted              = "order.deleted"
)

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	Name      string        `json:"event"`
	Order     *models.Order `json:"order"`
	ActorID   string        `json:"actorId"`
	OldStatus string        `json:"oldStatus,omitempty"`
	NewStatus string        `json:"newStatus,omitempty"`
}

// Product event names.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent is the payload of every product event. Product is nil on delete.
type ProductEvent struct {
	Name      string          `json:"event"`
	ProductID string          `json:"productId"`
	Product   *models.Product `json:"product,omitempty"`
	ActorID   string          `json:"actorId"`
}

// Publisher delivers events fire-and-forget. *event.Dispatcher satisfies it.
type Publisher interface {
	FireAsync(ctx context.Context, name string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) FireAsync(context.Context, string, any) {}
