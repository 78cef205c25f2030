package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
)

var productColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
	"category":  "category",
}

type productRepo struct {
	db *gorm.DB
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	defer observe("products.insert")()
	p.ID = newID()
	t := now()
	p.CreatedAt, p.UpdatedAt = t, t
	rec := productFromModel(p)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("sqlstore: create product: %w", err)
	}
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	defer observe("products.update")()
	p.UpdatedAt = now()
	res := r.db.WithContext(ctx).Model(&ProductRecord{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"stock":       p.Stock,
		"image_url":   p.ImageURL,
		"updated_at":  p.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("sqlstore: update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	defer observe("products.delete")()
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ProductRecord{})
	if res.Error != nil {
		return fmt.Errorf("sqlstore: delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*models.Product, error) {
	defer observe("products.select")()
	var rec ProductRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	p := rec.model()
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	defer observe("products.select_in")()

	var recs []ProductRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: find products: %w", err)
	}
	for _, rec := range recs {
		out[rec.ID] = rec.model()
	}
	return out, nil
}

func (r *productRepo) List(ctx context.Context, f repositories.ProductFilter, s repositories.Sort, p repositories.Page) ([]models.Product, int64, error) {
	defer observe("products.list")()

	scope := func(db *gorm.DB) *gorm.DB {
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.Search != "" {
			like := likePattern(f.Search)
			db = db.Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", like, like)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&ProductRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("sqlstore: count products: %w", err)
	}

	var recs []ProductRecord
	q := r.db.WithContext(ctx).Scopes(scope).Order(orderBy(s.Field, s.Desc, productColumns))
	if err := paginate(q, p).Find(&recs).Error; err != nil {
		return nil, 0, fmt.Errorf("sqlstore: list products: %w", err)
	}

	out := make([]models.Product, len(recs))
	for i, rec := range recs {
		out[i] = rec.model()
	}
	return out, total, nil
}

func (r *productRepo) All(ctx context.Context) ([]models.Product, error) {
	var recs []ProductRecord
	if err := r.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: all products: %w", err)
	}
	out := make([]models.Product, len(recs))
	for i, rec := range recs {
		out[i] = rec.model()
	}
	return out, nil
}
