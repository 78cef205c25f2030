package collection_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitthalk15/DataDash/pkg/collection"
)

type row struct {
	Name string
	Qty  int
}

func TestHelpers(t *testing.T) {
	rows := []row{{"b", 2}, {"a", 5}, {"c", 2}, {"a", 1}}

	assert.Equal(t, []string{"b", "a", "c", "a"}, collection.Map(rows, func(r row) string { return r.Name }))
	assert.Len(t, collection.Filter(rows, func(r row) bool { return r.Qty > 1 }), 3)
	assert.Equal(t, 2, collection.Count(rows, func(r row) bool { return r.Name == "a" }))
	assert.Equal(t, 10, collection.Reduce(rows, 0, func(acc int, r row) int { return acc + r.Qty }))

	groups := collection.GroupBy(rows, func(r row) string { return r.Name })
	assert.Equal(t, []row{{"a", 5}, {"a", 1}}, groups["a"])
	assert.Equal(t, []string{"a", "b", "c"}, collection.Keys(groups))
}

func TestSortByIsStableAndCopies(t *testing.T) {
	rows := []row{{"b", 2}, {"a", 5}, {"c", 2}}
	sorted := collection.SortBy(rows, func(r row) int { return r.Qty }, true)

	assert.Equal(t, []row{{"a", 5}, {"b", 2}, {"c", 2}}, sorted)
	assert.Equal(t, "b", rows[0].Name)

	asc := collection.SortBy(rows, func(r row) string { return strings.ToUpper(r.Name) }, false)
	assert.Equal(t, "a", asc[0].Name)
}

func TestTake(t *testing.T) {
	s := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2}, collection.Take(s, 2))
	assert.Equal(t, s, collection.Take(s, 10))
	assert.Empty(t, collection.Take(s, -1))
}
