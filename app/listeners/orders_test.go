package listeners_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/app/jobs"
	"github.com/vitthalk15/DataDash/app/listeners"
	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/cache"
	"github.com/vitthalk15/DataDash/pkg/event"
	"github.com/vitthalk15/DataDash/pkg/queue"
)

type feed struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (f *feed) Broadcast(msg []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return true
}

type topic struct {
	keys []string
}

func (t *topic) PublishJSON(_ context.Context, key string, _ any) error {
	t.keys = append(t.keys, key)
	return nil
}

type dispatched struct {
	jobs []queue.Job
}

func (d *dispatched) Dispatch(_ context.Context, job queue.Job) error {
	d.jobs = append(d.jobs, job)
	return nil
}

func TestOrderListeners(t *testing.T) {
	d := event.New(nil)
	f, k, q := &feed{}, &topic{}, &dispatched{}
	listeners.Register(d, listeners.Deps{Feed: f, Kafka: k, Queue: q})

	order := &models.Order{ID: "o1", User: "u1", Status: models.StatusShipped}
	ctx := context.Background()

	d.Fire(ctx, services.EventOrderCreated, services.OrderEvent{Name: services.EventOrderCreated, Order: order})
	d.Fire(ctx, services.EventOrderStatusChanged, services.OrderEvent{
		Name: services.EventOrderStatusChanged, Order: order, OldStatus: "pending", NewStatus: "shipped",
	})

	require.Len(t, f.msgs, 2)
	var got map[string]any
	require.NoError(t, json.Unmarshal(f.msgs[0], &got))
	assert.Equal(t, services.EventOrderCreated, got["event"])

	assert.Equal(t, []string{"o1", "o1"}, k.keys)

	require.Len(t, q.jobs, 1)
	job := q.jobs[0].(*jobs.OrderStatusNotification)
	assert.Equal(t, "o1", job.OrderID)
	assert.Equal(t, "shipped", job.NewStatus)
}

func TestListenersAreOptional(t *testing.T) {
	d := event.New(nil)
	listeners.Register(d, listeners.Deps{})
	assert.NotPanics(t, func() {
		d.Fire(context.Background(), services.EventOrderDeleted, services.OrderEvent{Name: services.EventOrderDeleted})
	})
}

func TestUnchangedStatusQueuesNothing(t *testing.T) {
	d := event.New(nil)
	q := &dispatched{}
	listeners.Register(d, listeners.Deps{Queue: q})

	d.Fire(context.Background(), services.EventOrderStatusChanged, services.OrderEvent{
		Order: &models.Order{ID: "o1"}, OldStatus: "shipped", NewStatus: "shipped",
	})
	assert.Empty(t, q.jobs)
}

func TestOrderEventsDropCachedDashboard(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	require.NoError(t, store.Set(ctx, services.DashboardCacheKey, []byte(`{}`), 0))

	d := event.New(nil)
	listeners.Register(d, listeners.Deps{Cache: store})
	d.Fire(ctx, services.EventOrderCreated, services.OrderEvent{Order: &models.Order{ID: "o1"}})

	_, err := store.Get(ctx, services.DashboardCacheKey)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestProductEventsDropCachedDashboard(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	d := event.New(nil)
	listeners.Register(d, listeners.Deps{Cache: store})

	for _, name := range []string{services.EventProductCreated, services.EventProductUpdated, services.EventProductDeleted} {
		require.NoError(t, store.Set(ctx, services.DashboardCacheKey, []byte(`{}`), 0))
		d.Fire(ctx, name, services.ProductEvent{Name: name, ProductID: "p1"})

		_, err := store.Get(ctx, services.DashboardCacheKey)
		assert.ErrorIs(t, err, cache.ErrMiss, name)
	}
}
