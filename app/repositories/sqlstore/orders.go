package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
)

var orderColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"totalAmount": "total_amount",
	"status":      "status",
}

type orderRepo struct {
	db *gorm.DB
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	defer observe("orders.insert")()
	o.ID = newID()
	t := now()
	o.CreatedAt, o.UpdatedAt = t, t
	rec := orderFromModel(o)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("sqlstore: create order: %w", err)
	}
	return nil
}

// Update rewrites the order row and replaces its line items in one transaction.
func (r *orderRepo) Update(ctx context.Context, o *models.Order) error {
	defer observe("orders.update")()
	o.UpdatedAt = now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&OrderRecord{}).Where("id = ?", o.ID).Updates(map[string]any{
			"total_amount":   o.TotalAmount,
			"status":         string(o.Status),
			"payment_status": string(o.PaymentStatus),
			"payment_method": o.PaymentMethod,
			"ship_street":    o.ShippingAddress.Street,
			"ship_city":      o.ShippingAddress.City,
			"ship_state":     o.ShippingAddress.State,
			"ship_zip_code":  o.ShippingAddress.ZipCode,
			"ship_country":   o.ShippingAddress.Country,
			"updated_at":     o.UpdatedAt,
		})
		if res.Error != nil {
			return fmt.Errorf("sqlstore: update order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}

		if err := tx.Where("order_id = ?", o.ID).Delete(&OrderItemRecord{}).Error; err != nil {
			return fmt.Errorf("sqlstore: clear order items: %w", err)
		}
		items := itemsFromModel(o.ID, o.Products)
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("sqlstore: write order items: %w", err)
			}
		}
		return nil
	})
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	defer observe("orders.delete")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&OrderItemRecord{}).Error; err != nil {
			return fmt.Errorf("sqlstore: delete order items: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&OrderRecord{})
		if res.Error != nil {
			return fmt.Errorf("sqlstore: delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*models.Order, error) {
	defer observe("orders.select")()
	var rec OrderRecord
	if err := withItems(r.db.WithContext(ctx)).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	o := rec.model()
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, f repositories.OrderFilter, s repositories.Sort, p repositories.Page) ([]models.Order, int64, error) {
	defer observe("orders.list")()

	scope := func(db *gorm.DB) *gorm.DB {
		if f.UserID != "" {
			db = db.Where("user_id = ?", f.UserID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", string(f.Status))
		}
		if f.Search != "" {
			like := likePattern(f.Search)
			db = db.Where(
				"LOWER(ship_street) LIKE ? ESCAPE '!' OR LOWER(ship_city) LIKE ? ESCAPE '!' OR "+
					"LOWER(ship_state) LIKE ? ESCAPE '!' OR LOWER(ship_country) LIKE ? ESCAPE '!'",
				like, like, like, like,
			)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&OrderRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("sqlstore: count orders: %w", err)
	}

	var recs []OrderRecord
	q := withItems(r.db.WithContext(ctx)).Scopes(scope).Order(orderBy(s.Field, s.Desc, orderColumns))
	if err := paginate(q, p).Find(&recs).Error; err != nil {
		return nil, 0, fmt.Errorf("sqlstore: list orders: %w", err)
	}

	out := make([]models.Order, len(recs))
	for i, rec := range recs {
		out[i] = rec.model()
	}
	return out, total, nil
}

func (r *orderRepo) All(ctx context.Context) ([]models.Order, error) {
	var recs []OrderRecord
	if err := withItems(r.db.WithContext(ctx)).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: all orders: %w", err)
	}
	out := make([]models.Order, len(recs))
	for i, rec := range recs {
		out[i] = rec.model()
	}
	return out, nil
}
