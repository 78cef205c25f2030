// Package repositories defines the persistence contracts for products,
// orders and users. Implementations live in the mongostore, sqlstore and
// memstore sub-packages and must behave identically for every method.
package repositories

import (
	"context"
	"errors"

	"github.com/vitthalk15/DataDash/app/models"
)

var (
	// ErrNotFound is returned when a record does not exist or the id is malformed.
	ErrNotFound = errors.New("repositories: not found")
	// ErrDuplicate is returned when a unique constraint (user email) is violated.
	ErrDuplicate = errors.New("repositories: duplicate key")
)

// ─── Query types ──────────────────────────────────────────────────────────────

// Sort orders a listing by a logical field name ("createdAt", "totalAmount", ...).
type Sort struct {
	Field string
	Desc  bool
}

// Page is a 1-indexed page request.
type Page struct {
	Number int
	Size   int
}

// Skip is the number of records before this page.
func (p Page) Skip() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// TotalPages is ceil(total / size).
func (p Page) TotalPages(total int64) int {
	if p.Size <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

// OrderFilter narrows an order listing. Empty fields do not filter.
// Search is a case-insensitive substring match over street, city, state
// and country of the shipping address.
type OrderFilter struct {
	UserID string
	Status models.OrderStatus
	Search string
}

// ProductFilter narrows a product listing. Search matches name or description.
type ProductFilter struct {
	Category string
	Search   string
}

// ─── Contracts ────────────────────────────────────────────────────────────────

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// FindByIDs performs one batch lookup. Missing ids are simply absent
	// from the result map.
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
	List(ctx context.Context, f ProductFilter, s Sort, p Page) ([]models.Product, int64, error)
	All(ctx context.Context) ([]models.Product, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	// Update replaces every mutable field of the stored order.
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, f OrderFilter, s Sort, p Page) ([]models.Order, int64, error)
	All(ctx context.Context) ([]models.Order, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// Store bundles the repositories of one backend.
type Store interface {
	Products() ProductRepository
	Orders() OrderRepository
	Users() UserRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ─── Sort fields ──────────────────────────────────────────────────────────────

// OrderSortFields are the logical fields an order listing may be sorted by.
var OrderSortFields = []string{"createdAt", "updatedAt", "totalAmount", "status"}

// ProductSortFields are the logical fields a product listing may be sorted by.
var ProductSortFields = []string{"createdAt", "updatedAt", "name", "price", "stock", "category"}

// Sortable reports whether field is in allowed.
func Sortable(field string, allowed []string) bool {
	for _, f := range allowed {
		if f == field {
			return true
		}
	}
	return false
}
