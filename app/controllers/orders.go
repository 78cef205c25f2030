package controllers

import (
	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/ctx"
)

type OrderController struct {
	Base
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService, base Base) *OrderController {
	return &OrderController{Base: base, orders: orders}
}

// Index GET /api/orders
func (oc *OrderController) Index(c *ctx.Context) {
	page, err := oc.orders.List(c.Context(), actor(c), services.OrderQuery{
		ListQuery: listQuery(c),
		Status:    c.Query("status"),
	})
	if err != nil {
		oc.Fail(c, err)
		return
	}
	c.OK(page)
}

// MyOrders GET /api/orders/my-orders
func (oc *OrderController) MyOrders(c *ctx.Context) {
	orders, err := oc.orders.MyOrders(c.Context(), actor(c))
	if err != nil {
		oc.Fail(c, err)
		return
	}
	c.OK(orders)
}

// Store POST /api/orders
func (oc *OrderController) Store(c *ctx.Context) {
	var in services.CreateOrderInput
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.orders.Create(c.Context(), actor(c), in)
	if err != nil {
		oc.Fail(c, err)
		return
	}
	c.Created(o)
}

// Show GET /api/orders/{id}
func (oc *OrderController) Show(c *ctx.Context) {
	o, err := oc.orders.GetByID(c.Context(), actor(c), c.Param("id"))
	if err != nil {
		oc.Fail(c, err)
		return
	}
	c.OK(o)
}

// Update PUT /api/orders/{id}
func (oc *OrderController) Update(c *ctx.Context) {
	var in services.UpdateOrderInput
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.orders.Update(c.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		oc.Fail(c, err)
		return
	}
	c.OK(o)
}

// UpdateStatus PATCH /api/orders/{id}/status
func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	var in struct {
		Status models.OrderStatus `json:"status"`
	}
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.orders.UpdateStatus(c.Context(), actor(c), c.Param("id"), in.Status)
	if err != nil {
		oc.Fail(c, err)
		return
	}
	c.OK(o)
}

// UpdatePaymentStatus PATCH /api/orders/{id}/payment-status
func (oc *OrderController) UpdatePaymentStatus(c *ctx.Context) {
	var in struct {
		PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	}
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.orders.UpdatePaymentStatus(c.Context(), actor(c), c.Param("id"), in.PaymentStatus)
	if err != nil {
		oc.Fail(c, err)
		return
	}
	c.OK(o)
}

// Destroy DELETE /api/orders/{id}
func (oc *OrderController) Destroy(c *ctx.Context) {
	if err := oc.orders.Delete(c.Context(), actor(c), c.Param("id")); err != nil {
		oc.Fail(c, err)
		return
	}
	c.Message("Order deleted successfully")
}
