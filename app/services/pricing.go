package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/pkg/metrics"
)

// Catalog is the batch product lookup pricing depends on.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
}

// LineItemInput is one requested line item.
type LineItemInput struct {
	Product  string `json:"product"  validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

// ResolveLineItems prices items against the catalog in one batch lookup.
// Each line item gets the product's current unit price and resolved summary.
// The total is rounded to 2 places. The first id missing from the catalog
// yields a *ProductNotFoundError.
func ResolveLineItems(ctx context.Context, catalog Catalog, items []LineItemInput) ([]models.LineItem, decimal.Decimal, error) {
	refs := make([]models.LineItem, len(items))
	for i, it := range items {
		refs[i] = models.LineItem{Product: it.Product, Quantity: it.Quantity}
	}

	found, err := catalog.FindByIDs(ctx, models.DistinctProductIDs(refs))
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("pricing: lookup: %w", err)
	}

	total := decimal.Zero
	for i := range refs {
		p, ok := found[refs[i].Product]
		if !ok {
			metrics.PriceResolutionFailures.Inc()
			return nil, decimal.Zero, &ProductNotFoundError{ID: refs[i].Product}
		}
		refs[i].Price = p.Price
		refs[i].ResolvedProduct = p.Summary()
		total = total.Add(refs[i].Subtotal())
	}
	return refs, total.Round(2), nil
}

// attachProducts fills ResolvedProduct on every line item of orders with
// one batch lookup. Deleted products stay nil.
func attachProducts(ctx context.Context, catalog Catalog, orders ...*models.Order) error {
	var all []models.LineItem
	for _, o := range orders {
		all = append(all, o.Products...)
	}
	if len(all) == 0 {
		return nil
	}
	found, err := catalog.FindByIDs(ctx, models.DistinctProductIDs(all))
	if err != nil {
		return fmt.Errorf("pricing: resolve: %w", err)
	}
	for _, o := range orders {
		for i := range o.Products {
			if p, ok := found[o.Products[i].Product]; ok {
				o.Products[i].ResolvedProduct = p.Summary()
			} else {
				o.Products[i].ResolvedProduct = nil
			}
		}
	}
	return nil
}
