package mongostore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vitthalk15/DataDash/app/models"
)

type productDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Category    string               `bson:"category"`
	Stock       int                  `bson:"stock"`
	ImageURL    string               `bson:"imageUrl,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type lineItemDoc struct {
	Product  primitive.ObjectID   `bson:"product"`
	Quantity int                  `bson:"quantity"`
	Price    primitive.Decimal128 `bson:"price"`
}

type addressDoc struct {
	Street  string `bson:"street"`
	City    string `bson:"city"`
	State   string `bson:"state"`
	ZipCode string `bson:"zipCode"`
	Country string `bson:"country"`
}

type orderDoc struct {
	ID              primitive.ObjectID   `bson:"_id"`
	User            primitive.ObjectID   `bson:"user"`
	Products        []lineItemDoc        `bson:"products"`
	TotalAmount     primitive.Decimal128 `bson:"totalAmount"`
	Status          string               `bson:"status"`
	PaymentStatus   string               `bson:"paymentStatus"`
	PaymentMethod   string               `bson:"paymentMethod"`
	ShippingAddress addressDoc           `bson:"shippingAddress"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Role         string             `bson:"role"`
	Profile      models.Profile     `bson:"profile"`
	Preferences  models.Preferences `bson:"preferences"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// ─── Conversions ──────────────────────────────────────────────────────────────

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func productToDoc(p *models.Product, id primitive.ObjectID) productDoc {
	return productDoc{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Price:       toDecimal128(p.Price),
		Category:    p.Category,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d productDoc) model() models.Product {
	return models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       fromDecimal128(d.Price),
		Category:    d.Category,
		Stock:       d.Stock,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// References to users and products are stored as ObjectIds, like every
// other document written to these collections.
func itemsToDocs(items []models.LineItem) ([]lineItemDoc, error) {
	out := make([]lineItemDoc, len(items))
	for i, it := range items {
		ref, err := objectID(it.Product)
		if err != nil {
			return nil, fmt.Errorf("mongostore: line item product %q: %w", it.Product, err)
		}
		out[i] = lineItemDoc{Product: ref, Quantity: it.Quantity, Price: toDecimal128(it.Price)}
	}
	return out, nil
}

func orderToDoc(o *models.Order, id primitive.ObjectID) (orderDoc, error) {
	user, err := objectID(o.User)
	if err != nil {
		return orderDoc{}, fmt.Errorf("mongostore: order user %q: %w", o.User, err)
	}
	items, err := itemsToDocs(o.Products)
	if err != nil {
		return orderDoc{}, err
	}
	a := o.ShippingAddress
	return orderDoc{
		ID:              id,
		User:            user,
		Products:        items,
		TotalAmount:     toDecimal128(o.TotalAmount),
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: addressDoc{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country},
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

func (d orderDoc) model() models.Order {
	items := make([]models.LineItem, len(d.Products))
	for i, it := range d.Products {
		items[i] = models.LineItem{Product: it.Product.Hex(), Quantity: it.Quantity, Price: fromDecimal128(it.Price)}
	}
	a := d.ShippingAddress
	return models.Order{
		ID:              d.ID.Hex(),
		User:            d.User.Hex(),
		Products:        items,
		TotalAmount:     fromDecimal128(d.TotalAmount),
		Status:          models.OrderStatus(d.Status),
		PaymentStatus:   models.PaymentStatus(d.PaymentStatus),
		PaymentMethod:   d.PaymentMethod,
		ShippingAddress: models.ShippingAddress{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country},
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

func userToDoc(u *models.User, id primitive.ObjectID) userDoc {
	return userDoc{
		ID:           id,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Profile:      u.Profile,
		Preferences:  u.Preferences,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         models.Role(d.Role),
		Profile:      d.Profile,
		Preferences:  d.Preferences,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
