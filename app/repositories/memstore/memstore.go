// Package memstore is an in-process implementation of the repository
// contracts. It backs STORE_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
)

// Store holds all records in maps guarded by one RWMutex.
type Store struct {
	mu       sync.RWMutex
	products map[string]models.Product
	orders   map[string]models.Order
	users    map[string]models.User
	now      func() time.Time
	last     time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		products: map[string]models.Product{},
		orders:   map[string]models.Order{},
		users:    map[string]models.User{},
		now:      time.Now,
	}
}

func (s *Store) Products() repositories.ProductRepository { return productRepo{s} }
func (s *Store) Orders() repositories.OrderRepository     { return orderRepo{s} }
func (s *Store) Users() repositories.UserRepository       { return userRepo{s} }

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

// stamp returns a strictly increasing timestamp so creation order is stable.
// Callers hold the write lock.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// ─── Products ─────────────────────────────────────────────────────────────────

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.stamp()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.products[p.ID] = *p
	return nil
}

func (r productRepo) Update(_ context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.products[p.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = r.s.stamp()
	r.s.products[p.ID] = *p
	return nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r productRepo) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r productRepo) FindByIDs(_ context.Context, ids []string) (map[string]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r productRepo) List(_ context.Context, f repositories.ProductFilter, srt repositories.Sort, pg repositories.Page) ([]models.Product, int64, error) {
	r.s.mu.RLock()
	matched := make([]models.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search) {
			continue
		}
		matched = append(matched, p)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return lessProduct(matched[i], matched[j], srt)
	})
	return paginate(matched, pg), int64(len(matched)), nil
}

func (r productRepo) All(_ context.Context) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	return out, nil
}

func lessProduct(a, b models.Product, s repositories.Sort) bool {
	var cmp int
	switch s.Field {
	case "name":
		cmp = strings.Compare(a.Name, b.Name)
	case "category":
		cmp = strings.Compare(a.Category, b.Category)
	case "price":
		cmp = a.Price.Cmp(b.Price)
	case "stock":
		cmp = a.Stock - b.Stock
	case "updatedAt":
		cmp = a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	}
	if s.Desc {
		return cmp > 0
	}
	return cmp < 0
}

// ─── Orders ───────────────────────────────────────────────────────────────────

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.stamp()
	o.ID = uuid.NewString()
	o.CreatedAt, o.UpdatedAt = now, now
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r orderRepo) Update(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.orders[o.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	o.User = old.User
	o.CreatedAt = old.CreatedAt
	o.UpdatedAt = r.s.stamp()
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r orderRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

func (r orderRepo) FindByID(_ context.Context, id string) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r orderRepo) List(_ context.Context, f repositories.OrderFilter, srt repositories.Sort, pg repositories.Page) ([]models.Order, int64, error) {
	r.s.mu.RLock()
	matched := make([]models.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		if f.UserID != "" && o.User != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Search != "" && !addressMatches(o.ShippingAddress, f.Search) {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	r.s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return lessOrder(matched[i], matched[j], srt)
	})
	return paginate(matched, pg), int64(len(matched)), nil
}

func (r orderRepo) All(_ context.Context) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func addressMatches(a models.ShippingAddress, q string) bool {
	return containsFold(a.Street, q) || containsFold(a.City, q) ||
		containsFold(a.State, q) || containsFold(a.Country, q)
}

func lessOrder(a, b models.Order, s repositories.Sort) bool {
	var cmp int
	switch s.Field {
	case "totalAmount":
		cmp = a.TotalAmount.Cmp(b.TotalAmount)
	case "status":
		cmp = strings.Compare(string(a.Status), string(b.Status))
	case "updatedAt":
		cmp = a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	}
	if s.Desc {
		return cmp > 0
	}
	return cmp < 0
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.LineItem, len(o.Products))
	copy(items, o.Products)
	for i := range items {
		items[i].ResolvedProduct = nil
	}
	o.Products = items
	return o
}

// ─── Users ────────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	now := r.s.stamp()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) Update(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[u.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = r.s.stamp()
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r userRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func paginate[T any](s []T, pg repositories.Page) []T {
	if pg.Size <= 0 {
		return s
	}
	start := pg.Skip()
	if start >= len(s) {
		return []T{}
	}
	end := start + pg.Size
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}
