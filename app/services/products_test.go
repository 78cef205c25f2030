package services_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/app/repositories/memstore"
	"github.com/vitthalk15/DataDash/app/services"
)

type memFiles struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemFiles() *memFiles { return &memFiles{blobs: map[string][]byte{}} }

func (m *memFiles) Put(_ context.Context, path string, r io.Reader, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[path] = b
	return nil
}

func (m *memFiles) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, path)
	return nil
}

func (m *memFiles) URL(path string) string { return "https://cdn.test/" + path }

func ptr[T any](v T) *T { return &v }

func newProducts(t *testing.T) (*services.ProductService, *memFiles) {
	t.Helper()
	files := newMemFiles()
	return services.NewProductService(memstore.New().Products(), files), files
}

func createInput(name, price string, stock int) services.CreateProductInput {
	return services.CreateProductInput{
		Name:        name,
		Description: name + " description",
		Price:       ptr(decimal.RequireFromString(price)),
		Category:    "tools",
		Stock:       ptr(stock),
	}
}

func TestProducts_CreateRequiresAdmin(t *testing.T) {
	svc, _ := newProducts(t)

	_, err := svc.Create(context.Background(), alice, createInput("Hammer", "9.99", 3))
	assert.ErrorIs(t, err, services.ErrForbidden)

	p, err := svc.Create(context.Background(), admin, createInput("Hammer", "9.99", 0))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 0, p.Stock)
}

func TestProducts_CreateValidation(t *testing.T) {
	svc, _ := newProducts(t)

	in := createInput("Hammer", "-1", 3)
	in.Stock = nil
	in.Category = " "
	_, err := svc.Create(context.Background(), admin, in)

	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "price")
	assert.Contains(t, ve.Fields, "stock")
	assert.Contains(t, ve.Fields, "category")
}

func TestProducts_PartialUpdate(t *testing.T) {
	svc, _ := newProducts(t)
	p, err := svc.Create(context.Background(), admin, createInput("Hammer", "9.99", 3))
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), admin, p.ID, services.UpdateProductInput{Stock: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, "Hammer", got.Name)
	assert.Equal(t, "9.99", got.Price.String())

	_, err = svc.Update(context.Background(), alice, p.ID, services.UpdateProductInput{Name: ptr("x")})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = svc.Update(context.Background(), admin, "missing", services.UpdateProductInput{Name: ptr("x")})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestProducts_ListIsPublic(t *testing.T) {
	svc, _ := newProducts(t)
	for _, n := range []string{"Hammer", "Saw", "Drill"} {
		_, err := svc.Create(context.Background(), admin, createInput(n, "1.00", 1))
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), services.ProductQuery{
		ListQuery: services.ListQuery{Limit: 2, SortBy: "name", SortOrder: "asc"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, "Drill", page.Products[0].Name)

	page, err = svc.List(context.Background(), services.ProductQuery{ListQuery: services.ListQuery{Search: "saw"}})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
}

func TestProducts_DeleteDoesNotCascade(t *testing.T) {
	f := newFixture(t)
	svc := services.NewProductService(f.store.Products(), nil)
	a := f.product(t, "A", "2.00", 1)
	o := f.place(t, alice, line(a, 1))

	require.NoError(t, svc.Delete(context.Background(), admin, a.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, a.ID), services.ErrNotFound)

	got, err := f.orders.GetByID(context.Background(), alice, o.ID)
	require.NoError(t, err)
	assert.Len(t, got.Products, 1)
	assert.Nil(t, got.Products[0].ResolvedProduct)
}

func TestProducts_UploadImage(t *testing.T) {
	svc, files := newProducts(t)
	p, err := svc.Create(context.Background(), admin, createInput("Hammer", "1.00", 1))
	require.NoError(t, err)

	got, err := svc.UploadImage(context.Background(), admin, p.ID, services.Upload{
		Filename: "h.png", ContentType: "image/png", Size: 4, Body: bytes.NewReader([]byte("\x89PNG")),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.ImageURL, "https://cdn.test/products/"+p.ID+"/"))
	assert.True(t, strings.HasSuffix(got.ImageURL, ".png"))
	assert.Len(t, files.blobs, 1)

	_, err = svc.UploadImage(context.Background(), admin, p.ID, services.Upload{
		Filename: "x.txt", ContentType: "text/plain", Size: 1, Body: strings.NewReader("x"),
	})
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "image")

	_, err = svc.UploadImage(context.Background(), admin, p.ID, services.Upload{
		ContentType: "image/png", Size: services.MaxImageBytes + 1, Body: strings.NewReader(""),
	})
	assert.ErrorAs(t, err, &ve)
}

type productEvents struct {
	mu     sync.Mutex
	events []services.ProductEvent
}

func (r *productEvents) FireAsync(_ context.Context, _ string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, payload.(services.ProductEvent))
}

func TestProducts_WritesPublishEvents(t *testing.T) {
	ctx := context.Background()
	rec := &productEvents{}
	svc := services.NewProductService(memstore.New().Products(), newMemFiles(), services.WithProductPublisher(rec))

	p, err := svc.Create(ctx, admin, createInput("Hammer", "9.99", 3))
	require.NoError(t, err)
	_, err = svc.Update(ctx, admin, p.ID, services.UpdateProductInput{Stock: ptr(50)})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, admin, p.ID))

	_, err = svc.Create(ctx, alice, createInput("Saw", "1.00", 1))
	require.Error(t, err)

	require.Len(t, rec.events, 3)
	assert.Equal(t, services.EventProductCreated, rec.events[0].Name)
	assert.Equal(t, services.EventProductUpdated, rec.events[1].Name)
	assert.Equal(t, 50, rec.events[1].Product.Stock)
	assert.Equal(t, services.EventProductDeleted, rec.events[2].Name)
	assert.Equal(t, p.ID, rec.events[2].ProductID)
	assert.Nil(t, rec.events[2].Product)
	assert.Equal(t, admin.UserID, rec.events[2].ActorID)
}
