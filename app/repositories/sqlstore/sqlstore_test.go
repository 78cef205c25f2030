package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/app/repositories/repotest"
	"github.com/vitthalk15/DataDash/app/repositories/sqlstore"
	"github.com/vitthalk15/DataDash/database/migrations"
	"github.com/vitthalk15/DataDash/pkg/database"
)

func newStore(t *testing.T) repositories.Store {
	t.Helper()
	db, err := database.OpenSQL(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)

	_, err = migrations.Runner(db, nil).Run()
	require.NoError(t, err)

	s := sqlstore.New(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSQLStore(t *testing.T) {
	repotest.Run(t, newStore)
}

func TestSQLStore_SearchEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	p1 := repotest.Product("100% Cotton Tee", "apparel", "10.00", 1)
	p2 := repotest.Product("Cotton Tee", "apparel", "8.00", 1)
	require.NoError(t, s.Products().Create(ctx, p1))
	require.NoError(t, s.Products().Create(ctx, p2))

	got, total, err := s.Products().List(ctx, repositories.ProductFilter{Search: "0%"}, repositories.Sort{}, repositories.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, p1.ID, got[0].ID)
}

func TestSQLStore_OrderItemsKeepPosition(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := repotest.Product("A", "x", "1.00", 1)
	b := repotest.Product("B", "x", "2.00", 1)
	require.NoError(t, s.Products().Create(ctx, a))
	require.NoError(t, s.Products().Create(ctx, b))

	o := repotest.Order("u1", repotest.Address("1 Main", "Springfield", "IL", "USA"),
		repotest.Item(b, 1), repotest.Item(a, 3))
	require.NoError(t, s.Orders().Create(ctx, o))

	got, err := s.Orders().FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Products, 2)
	assert.Equal(t, b.ID, got.Products[0].Product)
	assert.Equal(t, a.ID, got.Products[1].Product)
	assert.Equal(t, 3, got.Products[1].Quantity)
}

func TestMigrations_RollbackAndStatus(t *testing.T) {
	db, err := database.OpenSQL(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)

	r := migrations.Runner(db, nil)
	n, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = r.Run()
	require.NoError(t, err)
	assert.Zero(t, n)

	lines, err := r.Status()
	require.NoError(t, err)
	require.Len(t, lines, 4)
	for _, l := range lines {
		assert.True(t, l.Ran, l.Name)
		assert.Equal(t, 1, l.Batch)
	}

	n, err = r.Rollback()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	for _, table := range []string{"users", "products", "orders", "order_items", "failed_jobs"} {
		assert.False(t, db.Migrator().HasTable(table), table)
	}
}
