// Package listeners reacts to order events: it feeds the admin websocket,
// mirrors events to Kafka and queues owner notifications. Order and product
// events both drop the cached dashboard.
package listeners

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vitthalk15/DataDash/app/jobs"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/event"
	"github.com/vitthalk15/DataDash/pkg/queue"
)

// Broadcaster is satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(msg []byte) bool
}

// Publisher is satisfied by *kafka.Publisher.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, payload any) error
}

// Dispatcher is satisfied by *queue.Queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

// Forgetter is satisfied by every cache.Store.
type Forgetter interface {
	Delete(ctx context.Context, keys ...string) error
}

// Deps are optional: a nil field skips its listener.
type Deps struct {
	Feed  Broadcaster
	Kafka Publisher
	Queue Dispatcher
	Cache Forgetter
}

var orderEvents = []string{
	services.EventOrderCreated,
	services.EventOrderUpdated,
	services.EventOrderStatusChanged,
	services.EventOrderPaymentStatusChanged,
	services.EventOrderDeleted,
}

var productEvents = []string{
	services.EventProductCreated,
	services.EventProductUpdated,
	services.EventProductDeleted,
}

// Register attaches the listeners to d.
func Register(d *event.Dispatcher, deps Deps) {
	for _, name := range orderEvents {
		if deps.Feed != nil {
			d.Listen(name, broadcast(deps.Feed))
		}
		if deps.Kafka != nil {
			d.Listen(name, publish(deps.Kafka))
		}
		if deps.Cache != nil {
			d.Listen(name, forgetDashboard(deps.Cache))
		}
	}
	if deps.Cache != nil {
		for _, name := range productEvents {
			d.Listen(name, forgetDashboard(deps.Cache))
		}
	}
	if deps.Queue != nil {
		d.Listen(services.EventOrderStatusChanged, notifyOwner(deps.Queue))
	}
}

func orderEvent(payload any) (services.OrderEvent, error) {
	switch ev := payload.(type) {
	case services.OrderEvent:
		return ev, nil
	case *services.OrderEvent:
		return *ev, nil
	default:
		return services.OrderEvent{}, fmt.Errorf("listeners: unexpected payload %T", payload)
	}
}

func broadcast(feed Broadcaster) event.Handler {
	return func(_ context.Context, payload any) error {
		ev, err := orderEvent(payload)
		if err != nil {
			return err
		}
		msg, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("listeners: encode event: %w", err)
		}
		feed.Broadcast(msg)
		return nil
	}
}

func publish(p Publisher) event.Handler {
	return func(ctx context.Context, payload any) error {
		ev, err := orderEvent(payload)
		if err != nil {
			return err
		}
		key := ""
		if ev.Order != nil {
			key = ev.Order.ID
		}
		return p.PublishJSON(ctx, key, ev)
	}
}

func notifyOwner(q Dispatcher) event.Handler {
	return func(ctx context.Context, payload any) error {
		ev, err := orderEvent(payload)
		if err != nil {
			return err
		}
		if ev.Order == nil || ev.OldStatus == ev.NewStatus {
			return nil
		}
		return q.Dispatch(ctx, &jobs.OrderStatusNotification{
			OrderID:   ev.Order.ID,
			OldStatus: ev.OldStatus,
			NewStatus: ev.NewStatus,
		})
	}
}

func forgetDashboard(c Forgetter) event.Handler {
	return func(ctx context.Context, _ any) error {
		return c.Delete(ctx, services.DashboardCacheKey)
	}
}
