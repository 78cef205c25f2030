package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/cache"
	"github.com/vitthalk15/DataDash/pkg/collection"
)

type StatusBucket struct {
	Status  models.OrderStatus `json:"status"`
	Count   int                `json:"count"`
	Revenue decimal.Decimal    `json:"revenue"`
}

type RoleCount struct {
	Role  models.Role `json:"role"`
	Count int         `json:"count"`
}

// Dashboard is the headline view. Revenue excludes cancelled orders.
type Dashboard struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	OrdersByStatus    []StatusBucket  `json:"ordersByStatus"`
	TotalProducts     int             `json:"totalProducts"`
	LowStockProducts  int             `json:"lowStockProducts"`
	TotalUsers        int             `json:"totalUsers"`
	UsersByRole       []RoleCount     `json:"usersByRole"`
}

type MonthlySales struct {
	Month   string          `json:"month"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DefaultLowStockThreshold is used by the dashboard count.
const DefaultLowStockThreshold = 10

// AnalyticsService computes the dashboard aggregates. Admins and managers only.
type AnalyticsService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	now      func() time.Time

	cache    cache.Store
	cacheTTL time.Duration
}

type AnalyticsOption func(*AnalyticsService)

// WithDashboardCache keeps computed dashboards in store for ttl.
func WithDashboardCache(store cache.Store, ttl time.Duration) AnalyticsOption {
	return func(s *AnalyticsService) { s.cache, s.cacheTTL = store, ttl }
}

func NewAnalyticsService(orders repositories.OrderRepository, products repositories.ProductRepository, users repositories.UserRepository, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{orders: orders, products: products, users: users, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DashboardCacheKey is the cache key of the dashboard aggregate.
const DashboardCacheKey = "analytics:dashboard"

func (s *AnalyticsService) Dashboard(ctx context.Context, actor auth.Principal) (*Dashboard, error) {
	if err := canReport(actor); err != nil {
		return nil, err
	}
	if s.cache == nil {
		return s.dashboard(ctx)
	}
	var d Dashboard
	err := cache.Remember(ctx, s.cache, DashboardCacheKey, s.cacheTTL, &d, func() (any, error) {
		return s.dashboard(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *AnalyticsService) dashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: orders: %w", err)
	}
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: products: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: users: %w", err)
	}

	d := &Dashboard{
		TotalOrders:   len(orders),
		TotalRevenue:  revenue(orders),
		TotalProducts: len(products),
		TotalUsers:    len(users),
		LowStockProducts: collection.Count(products, func(p models.Product) bool {
			return p.Stock <= DefaultLowStockThreshold
		}),
	}
	if counted := len(billable(orders)); counted > 0 {
		d.AverageOrderValue = d.TotalRevenue.Div(decimal.NewFromInt(int64(counted))).Round(2)
	}

	byStatus := collection.GroupBy(orders, func(o models.Order) models.OrderStatus { return o.Status })
	for _, st := range models.OrderStatuses {
		group := byStatus[st]
		d.OrdersByStatus = append(d.OrdersByStatus, StatusBucket{Status: st, Count: len(group), Revenue: sum(group)})
	}

	byRole := collection.GroupBy(users, func(u models.User) models.Role { return u.Role })
	for _, r := range []models.Role{models.RoleAdmin, models.RoleManager, models.RoleUser} {
		d.UsersByRole = append(d.UsersByRole, RoleCount{Role: r, Count: len(byRole[r])})
	}
	return d, nil
}

// SalesByMonth returns the last months calendar months (current included),
// oldest first, with empty months zero-filled.
func (s *AnalyticsService) SalesByMonth(ctx context.Context, actor auth.Principal, months int) ([]MonthlySales, error) {
	if err := canReport(actor); err != nil {
		return nil, err
	}
	if months < 1 || months > 36 {
		return nil, invalid("months", "The months must be between 1 and 36.")
	}
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: orders: %w", err)
	}

	byMonth := collection.GroupBy(billable(orders), func(o models.Order) string {
		return o.CreatedAt.UTC().Format("2006-01")
	})
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	out := make([]MonthlySales, 0, months)
	for i := 0; i < months; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		group := byMonth[key]
		out = append(out, MonthlySales{Month: key, Orders: len(group), Revenue: sum(group)})
	}
	return out, nil
}

// TopProducts ranks products by quantity sold across non-cancelled orders.
func (s *AnalyticsService) TopProducts(ctx context.Context, actor auth.Principal, limit int) ([]TopProduct, error) {
	if err := canReport(actor); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 5
	}
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: orders: %w", err)
	}

	var items []models.LineItem
	for _, o := range billable(orders) {
		items = append(items, o.Products...)
	}
	grouped := collection.GroupBy(items, func(li models.LineItem) string { return li.Product })
	ids := collection.Keys(grouped)
	names, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("analytics: products: %w", err)
	}

	ranked := collection.Map(ids, func(id string) TopProduct {
		group := grouped[id]
		tp := TopProduct{ProductID: id, Name: models.UnknownProductName, Revenue: decimal.Zero}
		if p, ok := names[id]; ok {
			tp.Name = p.Name
		}
		for _, li := range group {
			tp.Quantity += li.Quantity
			tp.Revenue = tp.Revenue.Add(li.Subtotal())
		}
		tp.Revenue = tp.Revenue.Round(2)
		return tp
	})
	ranked = collection.SortBy(ranked, func(tp TopProduct) int { return tp.Quantity }, true)
	return collection.Take(ranked, limit), nil
}

// LowStock lists products with stock at or below threshold, lowest first.
func (s *AnalyticsService) LowStock(ctx context.Context, actor auth.Principal, threshold int) ([]models.Product, error) {
	if err := canReport(actor); err != nil {
		return nil, err
	}
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: products: %w", err)
	}
	low := collection.Filter(products, func(p models.Product) bool { return p.Stock <= threshold })
	return collection.SortBy(low, func(p models.Product) int { return p.Stock }, false), nil
}

func canReport(actor auth.Principal) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	if !actor.HasRole(string(models.RoleAdmin), string(models.RoleManager)) {
		return forbidden("Not authorized to view analytics")
	}
	return nil
}

func billable(orders []models.Order) []models.Order {
	return collection.Filter(orders, func(o models.Order) bool { return o.Status != models.StatusCancelled })
}

func sum(orders []models.Order) decimal.Decimal {
	return collection.Reduce(orders, decimal.Zero, func(acc decimal.Decimal, o models.Order) decimal.Decimal {
		return acc.Add(o.TotalAmount)
	}).Round(2)
}

func revenue(orders []models.Order) decimal.Decimal { return sum(billable(orders)) }
