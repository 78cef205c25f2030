package services

import (
	"context"
	"fmt"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/metrics"
	"github.com/vitthalk15/DataDash/pkg/validate"
)

// CreateOrderInput is the body of POST /api/orders.
type CreateOrderInput struct {
	Products        []LineItemInput        `json:"products"        validate:"required,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" validate:"dive"`
	PaymentMethod   string                 `json:"paymentMethod"   validate:"max=64"`
}

// UpdateOrderInput is a partial update. Status and owner are not part of
// it, so clients sending them are ignored.
type UpdateOrderInput struct {
	Products        *[]LineItemInput        `json:"products"        validate:"dive"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress" validate:"nullable,dive"`
	PaymentMethod   *string                 `json:"paymentMethod"   validate:"nullable,max=64"`
	PaymentStatus   *models.PaymentStatus   `json:"paymentStatus"   validate:"nullable,in=pending,completed,failed"`
}

// OrderQuery filters GET /api/orders.
type OrderQuery struct {
	ListQuery
	Status string
}

// OrderPage is one page of orders.
type OrderPage struct {
	Orders      []models.Order `json:"orders"`
	Total       int64          `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// OrderService prices orders and enforces who may read and change them.
type OrderService struct {
	orders  repositories.OrderRepository
	catalog Catalog
	policy  TransitionPolicy
	events  Publisher
}

type OrderOption func(*OrderService)

func WithTransitionPolicy(p TransitionPolicy) OrderOption {
	return func(s *OrderService) { s.policy = p }
}

func WithPublisher(p Publisher) OrderOption {
	return func(s *OrderService) { s.events = p }
}

func NewOrderService(orders repositories.OrderRepository, catalog Catalog, opts ...OrderOption) *OrderService {
	s := &OrderService{orders: orders, catalog: catalog, policy: AllowAll{}, events: nopPublisher{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── Commands ─────────────────────────────────────────────────────────────────

// Create prices the line items from the catalog and stores a pending order
// owned by actor. Nothing is written when any product is missing.
func (s *OrderService) Create(ctx context.Context, actor auth.Principal, in CreateOrderInput) (*models.Order, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	items, total, err := ResolveLineItems(ctx, s.catalog, in.Products)
	if err != nil {
		return nil, err
	}

	o := &models.Order{
		User:            actor.UserID,
		Products:        items,
		TotalAmount:     total,
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.ShippingAddress,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("orders: create: %w", err)
	}

	metrics.RecordOrderCreated(total.InexactFloat64())
	logger.WithCtx(ctx).Info("order created", "order_id", o.ID, "total", total.StringFixed(2), "items", len(items))
	s.publish(ctx, EventOrderCreated, actor, o, "", "")
	return o, nil
}

// Update applies a partial update. A new product list is re-priced and the
// total recomputed; every other field leaves the total alone. Only admins
// may change the payment status here; for others it is dropped.
func (s *OrderService) Update(ctx context.Context, actor auth.Principal, id string, in UpdateOrderInput) (*models.Order, error) {
	o, err := s.owned(ctx, actor, id, "Not authorized to update this order")
	if err != nil {
		return nil, err
	}
	if in.Products != nil && len(*in.Products) == 0 {
		return nil, invalid("products", "The products field is required.")
	}
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	if in.Products != nil {
		items, total, err := ResolveLineItems(ctx, s.catalog, *in.Products)
		if err != nil {
			return nil, err
		}
		o.Products, o.TotalAmount = items, total
	}
	if in.ShippingAddress != nil {
		o.ShippingAddress = *in.ShippingAddress
	}
	if in.PaymentMethod != nil {
		o.PaymentMethod = *in.PaymentMethod
	}
	paymentChanged := false
	if in.PaymentStatus != nil && actor.IsAdmin() && *in.PaymentStatus != o.PaymentStatus {
		o.PaymentStatus = *in.PaymentStatus
		paymentChanged = true
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("orders: update: %w", translate("Order", err))
	}
	if err := attachProducts(ctx, s.catalog, o); err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderUpdated, actor, o, "", "")
	if paymentChanged {
		s.publish(ctx, EventOrderPaymentStatusChanged, actor, o, "", string(o.PaymentStatus))
	}
	return o, nil
}

// UpdateStatus moves an order to status. Admin only.
func (s *OrderService) UpdateStatus(ctx context.Context, actor auth.Principal, id string, status models.OrderStatus) (*models.Order, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, forbidden("Not authorized to update order status")
	}
	if status == "" {
		return nil, invalid("status", "Status is required")
	}
	if !status.Valid() {
		return nil, invalid("status", "The selected status is invalid.")
	}

	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := s.policy.Allow(from, status); err != nil {
		return nil, err
	}

	o.Status = status
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("orders: update status: %w", translate("Order", err))
	}
	if err := attachProducts(ctx, s.catalog, o); err != nil {
		return nil, err
	}

	if from != status {
		metrics.RecordStatusChange(string(from), string(status))
		logger.WithCtx(ctx).Info("order status changed", "order_id", o.ID, "from", from, "to", status)
		s.publish(ctx, EventOrderStatusChanged, actor, o, string(from), string(status))
	}
	return o, nil
}

// UpdatePaymentStatus sets the payment status. Admin only.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, actor auth.Principal, id string, status models.PaymentStatus) (*models.Order, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, forbidden("Not authorized to update payment status")
	}
	if status == "" {
		return nil, invalid("paymentStatus", "Payment status is required")
	}
	if !status.Valid() {
		return nil, invalid("paymentStatus", "The selected paymentStatus is invalid.")
	}

	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.PaymentStatus
	o.PaymentStatus = status
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("orders: update payment status: %w", translate("Order", err))
	}
	if err := attachProducts(ctx, s.catalog, o); err != nil {
		return nil, err
	}
	if from != status {
		s.publish(ctx, EventOrderPaymentStatusChanged, actor, o, string(from), string(status))
	}
	return o, nil
}

// Delete removes the order. Owner or admin.
func (s *OrderService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	o, err := s.owned(ctx, actor, id, "Not authorized to delete this order")
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("orders: delete: %w", translate("Order", err))
	}
	s.publish(ctx, EventOrderDeleted, actor, o, "", "")
	return nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// List pages through orders. Non-admins only ever see their own.
func (s *OrderService) List(ctx context.Context, actor auth.Principal, q OrderQuery) (*OrderPage, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	sort, err := q.sort(repositories.OrderSortFields)
	if err != nil {
		return nil, err
	}
	f := repositories.OrderFilter{Search: q.Search}
	if q.Status != "" {
		st := models.OrderStatus(q.Status)
		if !st.Valid() {
			return nil, invalid("status", "The selected status is invalid.")
		}
		f.Status = st
	}
	if !actor.IsAdmin() {
		f.UserID = actor.UserID
	}

	page := q.page()
	orders, total, err := s.orders.List(ctx, f, sort, page)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	if err := s.resolveAll(ctx, orders); err != nil {
		return nil, err
	}
	return &OrderPage{
		Orders:      orders,
		Total:       total,
		TotalPages:  page.TotalPages(total),
		CurrentPage: page.Number,
	}, nil
}

// MyOrders returns every order placed by actor, newest first.
func (s *OrderService) MyOrders(ctx context.Context, actor auth.Principal) ([]models.Order, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	orders, _, err := s.orders.List(ctx,
		repositories.OrderFilter{UserID: actor.UserID},
		repositories.Sort{Field: "createdAt", Desc: true},
		repositories.Page{Number: 1})
	if err != nil {
		return nil, fmt.Errorf("orders: my orders: %w", err)
	}
	if err := s.resolveAll(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetByID returns one order to its owner or an admin.
func (s *OrderService) GetByID(ctx context.Context, actor auth.Principal, id string) (*models.Order, error) {
	o, err := s.owned(ctx, actor, id, "Not authorized to view this order")
	if err != nil {
		return nil, err
	}
	if err := attachProducts(ctx, s.catalog, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func (s *OrderService) find(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, translate("Order", err)
	}
	return o, nil
}

// owned loads id and checks that actor is its owner or an admin.
func (s *OrderService) owned(ctx context.Context, actor auth.Principal, id, denied string) (*models.Order, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !o.OwnedBy(actor.UserID) {
		return nil, forbidden(denied)
	}
	return o, nil
}

func (s *OrderService) resolveAll(ctx context.Context, orders []models.Order) error {
	ptrs := make([]*models.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	return attachProducts(ctx, s.catalog, ptrs...)
}

func (s *OrderService) publish(ctx context.Context, name string, actor auth.Principal, o *models.Order, from, to string) {
	snapshot := *o
	snapshot.Products = append([]models.LineItem(nil), o.Products...)
	s.events.FireAsync(ctx, name, OrderEvent{
		Name:      name,
		Order:     &snapshot,
		ActorID:   actor.UserID,
		OldStatus: from,
		NewStatus: to,
	})
}
