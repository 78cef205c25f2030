package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitthalk15/DataDash/app/models"
)

// ProductRecord is the products table row.
type ProductRecord struct {
	ID          string          `gorm:"primaryKey;size:36"`
	Name        string          `gorm:"size:255;not null;index"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Category    string          `gorm:"size:100;index"`
	Stock       int             `gorm:"not null"`
	ImageURL    string          `gorm:"size:1024"`
	CreatedAt   time.Time       `gorm:"index"`
	UpdatedAt   time.Time
}

func (ProductRecord) TableName() string { return "products" }

// OrderRecord is the orders table row. Line items live in order_items.
type OrderRecord struct {
	ID            string            `gorm:"primaryKey;size:36"`
	UserID        string            `gorm:"size:36;not null;index"`
	TotalAmount   decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Status        string            `gorm:"size:20;not null;index"`
	PaymentStatus string            `gorm:"size:20;not null"`
	PaymentMethod string            `gorm:"size:100"`
	ShipStreet    string            `gorm:"size:255"`
	ShipCity      string            `gorm:"size:100"`
	ShipState     string            `gorm:"size:100"`
	ShipZipCode   string            `gorm:"size:20"`
	ShipCountry   string            `gorm:"size:100"`
	CreatedAt     time.Time         `gorm:"index"`
	UpdatedAt     time.Time
	Items         []OrderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderRecord) TableName() string { return "orders" }

// OrderItemRecord is one line item. ProductID carries no foreign key so
// deleting a product never touches orders.
type OrderItemRecord struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	OrderID   string          `gorm:"size:36;not null;index"`
	Position  int             `gorm:"not null"`
	ProductID string          `gorm:"size:36;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (OrderItemRecord) TableName() string { return "order_items" }

// UserRecord is the users table row with profile and preferences flattened.
type UserRecord struct {
	ID                 string `gorm:"primaryKey;size:36"`
	Name               string `gorm:"size:255;not null"`
	Email              string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash       string `gorm:"size:255;not null"`
	Role               string `gorm:"size:20;not null;index"`
	Phone              string `gorm:"size:50"`
	Address            string `gorm:"size:255"`
	Company            string `gorm:"size:255"`
	Position           string `gorm:"size:255"`
	Bio                string `gorm:"type:text"`
	Timezone           string `gorm:"size:64"`
	Language           string `gorm:"size:16"`
	Avatar             string `gorm:"size:1024"`
	EmailNotifications bool
	OrderUpdates       bool
	MarketingEmails    bool
	SecurityAlerts     bool
	SystemUpdates      bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (UserRecord) TableName() string { return "users" }

// ─── Conversions ──────────────────────────────────────────────────────────────

func productFromModel(p *models.Product) ProductRecord {
	return ProductRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r ProductRecord) model() models.Product {
	return models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func orderFromModel(o *models.Order) OrderRecord {
	rec := OrderRecord{
		ID:            o.ID,
		UserID:        o.User,
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: o.PaymentMethod,
		ShipStreet:    o.ShippingAddress.Street,
		ShipCity:      o.ShippingAddress.City,
		ShipState:     o.ShippingAddress.State,
		ShipZipCode:   o.ShippingAddress.ZipCode,
		ShipCountry:   o.ShippingAddress.Country,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	rec.Items = itemsFromModel(o.ID, o.Products)
	return rec
}

func itemsFromModel(orderID string, items []models.LineItem) []OrderItemRecord {
	out := make([]OrderItemRecord, len(items))
	for i, it := range items {
		out[i] = OrderItemRecord{
			OrderID:   orderID,
			Position:  i,
			ProductID: it.Product,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
		}
	}
	return out
}

func (r OrderRecord) model() models.Order {
	items := make([]models.LineItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = models.LineItem{Product: it.ProductID, Quantity: it.Quantity, Price: it.UnitPrice}
	}
	return models.Order{
		ID:            r.ID,
		User:          r.UserID,
		Products:      items,
		TotalAmount:   r.TotalAmount,
		Status:        models.OrderStatus(r.Status),
		PaymentStatus: models.PaymentStatus(r.PaymentStatus),
		PaymentMethod: r.PaymentMethod,
		ShippingAddress: models.ShippingAddress{
			Street:  r.ShipStreet,
			City:    r.ShipCity,
			State:   r.ShipState,
			ZipCode: r.ShipZipCode,
			Country: r.ShipCountry,
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func userFromModel(u *models.User) UserRecord {
	n := u.Preferences.Notifications
	return UserRecord{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		Phone:              u.Profile.Phone,
		Address:            u.Profile.Address,
		Company:            u.Profile.Company,
		Position:           u.Profile.Position,
		Bio:                u.Profile.Bio,
		Timezone:           u.Profile.Timezone,
		Language:           u.Profile.Language,
		Avatar:             u.Profile.Avatar,
		EmailNotifications: n.EmailNotifications,
		OrderUpdates:       n.OrderUpdates,
		MarketingEmails:    n.MarketingEmails,
		SecurityAlerts:     n.SecurityAlerts,
		SystemUpdates:      n.SystemUpdates,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (r UserRecord) model() models.User {
	return models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         models.Role(r.Role),
		Profile: models.Profile{
			Phone:    r.Phone,
			Address:  r.Address,
			Company:  r.Company,
			Position: r.Position,
			Bio:      r.Bio,
			Timezone: r.Timezone,
			Language: r.Language,
			Avatar:   r.Avatar,
		},
		Preferences: models.Preferences{Notifications: models.NotificationPreferences{
			EmailNotifications: r.EmailNotifications,
			OrderUpdates:       r.OrderUpdates,
			MarketingEmails:    r.MarketingEmails,
			SecurityAlerts:     r.SecurityAlerts,
			SystemUpdates:      r.SystemUpdates,
		}},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}
