package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/services"
)

type countingCatalog struct {
	products map[string]models.Product
	calls    int
	err      error
}

func (c *countingCatalog) FindByIDs(_ context.Context, ids []string) (map[string]models.Product, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	out := map[string]models.Product{}
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func TestResolveLineItems_SingleBatchLookup(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "19.999", 1)
	cat := &countingCatalog{products: map[string]models.Product{a.ID: *a}}

	items, total, err := services.ResolveLineItems(context.Background(), cat, []services.LineItemInput{
		{Product: a.ID, Quantity: 1}, {Product: a.ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cat.calls)
	assert.Len(t, items, 2)
	assert.Equal(t, "60", total.String())
	assert.Equal(t, "19.999", items[1].Price.String())
}

func TestResolveLineItems_StoreError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := services.ResolveLineItems(context.Background(), &countingCatalog{err: boom},
		[]services.LineItemInput{{Product: "x", Quantity: 1}})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, services.ErrProductNotFound)
}
