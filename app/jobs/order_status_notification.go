// Package jobs holds the queued background jobs.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/mail"
	"github.com/vitthalk15/DataDash/pkg/queue"
)

const OrderStatusNotificationName = "order.status_notification"

var statusEmail = template.Must(template.New("order_status").Parse(
	`<p>Hi {{.Name}},</p>
<p>Your order <strong>{{.OrderID}}</strong> is now <strong>{{.Status}}</strong>.</p>
<p>Total: {{.Total}}</p>`))

// OrderStatusNotification emails an order's owner about a status change.
type OrderStatusNotification struct {
	OrderID   string `json:"orderId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`

	deps *Deps
}

// Deps are the collaborators injected into rebuilt jobs.
type Deps struct {
	Orders   repositories.OrderRepository
	Products repositories.ProductRepository
	Users    repositories.UserRepository
	Mailer   mail.Mailer
}

// Register installs every job factory on q.
func Register(q *queue.Queue, deps *Deps) {
	q.Register(OrderStatusNotificationName, func() queue.Job {
		return &OrderStatusNotification{deps: deps}
	})
	q.Register(LowStockDigestName, func() queue.Job {
		return &LowStockDigest{deps: deps}
	})
}

func (OrderStatusNotification) JobName() string { return OrderStatusNotificationName }

func (j *OrderStatusNotification) Handle(ctx context.Context) error {
	if j.deps == nil {
		return errors.New("jobs: order status notification has no dependencies")
	}
	log := logger.WithCtx(ctx).With("order_id", j.OrderID)

	order, err := j.deps.Orders.FindByID(ctx, j.OrderID)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Debug("jobs: order gone, skipping notification")
		return nil
	}
	if err != nil {
		return fmt.Errorf("jobs: load order: %w", err)
	}

	owner, err := j.deps.Users.FindByID(ctx, order.User)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("jobs: load owner: %w", err)
	}
	if !owner.WantsOrderEmails() {
		log.Debug("jobs: owner opted out of order emails")
		return nil
	}

	msg := mail.New(owner.Email).
		Subject(fmt.Sprintf("Your order is now %s", order.Status)).
		Template(statusEmail, map[string]any{
			"Name":    owner.Name,
			"OrderID": order.ID,
			"Status":  string(order.Status),
			"Total":   order.TotalAmount.StringFixed(2),
		})
	if err := j.deps.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("jobs: send status email: %w", err)
	}
	return nil
}
