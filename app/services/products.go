package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/validate"
)

type CreateProductInput struct {
	Name        string           `json:"name"        validate:"required,max=200"`
	Description string           `json:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price"       validate:"required,gte=0"`
	Category    string           `json:"category"    validate:"required,max=100"`
	Stock       *int             `json:"stock"       validate:"required,gte=0"`
	ImageURL    string           `json:"imageUrl"    validate:"nullable,url"`
}

// UpdateProductInput changes only the fields that are present.
type UpdateProductInput struct {
	Name        *string          `json:"name"        validate:"nullable,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"       validate:"nullable,gte=0"`
	Category    *string          `json:"category"    validate:"nullable,max=100"`
	Stock       *int             `json:"stock"       validate:"nullable,gte=0"`
	ImageURL    *string          `json:"imageUrl"    validate:"nullable,url"`
}

type ProductQuery struct {
	ListQuery
	Category string
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

// ProductService manages the catalog. Reads are public, writes need admin.
type ProductService struct {
	products repositories.ProductRepository
	files    FileStore
	events   Publisher
}

type ProductOption func(*ProductService)

// WithProductPublisher fires a product.* event after every catalog write.
func WithProductPublisher(p Publisher) ProductOption {
	return func(s *ProductService) { s.events = p }
}

func NewProductService(products repositories.ProductRepository, files FileStore, opts ...ProductOption) *ProductService {
	s := &ProductService{products: products, files: files, events: nopPublisher{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProductService) publish(ctx context.Context, name string, actor auth.Principal, id string, p *models.Product) {
	s.events.FireAsync(ctx, name, ProductEvent{Name: name, ProductID: id, Product: p, ActorID: actor.UserID})
}

func (s *ProductService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	sort, err := q.sort(repositories.ProductSortFields)
	if err != nil {
		return nil, err
	}
	page := q.page()
	items, total, err := s.products.List(ctx,
		repositories.ProductFilter{Category: q.Category, Search: q.Search}, sort, page)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	return &ProductPage{Products: items, Total: total, Page: page.Number, TotalPages: page.TotalPages(total)}, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, translate("Product", err)
	}
	return p, nil
}

// FindByIDs is the batch lookup used for pricing.
func (s *ProductService) FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	return s.products.FindByIDs(ctx, ids)
}

func (s *ProductService) Create(ctx context.Context, actor auth.Principal, in CreateProductInput) (*models.Product, error) {
	if err := requireAdmin(actor, "Not authorized"); err != nil {
		return nil, err
	}
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       *in.Price,
		Category:    strings.TrimSpace(in.Category),
		Stock:       *in.Stock,
		ImageURL:    in.ImageURL,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("products: create: %w", err)
	}
	logger.WithCtx(ctx).Info("product created", "product_id", p.ID)
	s.publish(ctx, EventProductCreated, actor, p.ID, p)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, actor auth.Principal, id string, in UpdateProductInput) (*models.Product, error) {
	if err := requireAdmin(actor, "Not authorized"); err != nil {
		return nil, err
	}
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil && *in.Description != "" {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("products: update: %w", translate("Product", err))
	}
	s.publish(ctx, EventProductUpdated, actor, p.ID, p)
	return p, nil
}

// Delete removes the product. Orders that reference it keep their line
// items and show it as unknown.
func (s *ProductService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if err := requireAdmin(actor, "Not authorized"); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("products: delete: %w", translate("Product", err))
	}
	s.publish(ctx, EventProductDeleted, actor, id, nil)
	return nil
}

// UploadImage stores an image for the product and points imageUrl at it.
func (s *ProductService) UploadImage(ctx context.Context, actor auth.Principal, id string, up Upload) (*models.Product, error) {
	if err := requireAdmin(actor, "Not authorized"); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := storeImage(ctx, s.files, "image", "products", p.ID, up)
	if err != nil {
		return nil, err
	}
	p.ImageURL = url
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("products: set image: %w", translate("Product", err))
	}
	s.publish(ctx, EventProductUpdated, actor, p.ID, p)
	return p, nil
}

func requireAdmin(actor auth.Principal, denied string) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return forbidden(denied)
	}
	return nil
}
