package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func titles(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func TestSortRows(t *testing.T) {
	rows := func() []Row {
		return []Row{
			{Title: "beta", UpdatedAt: "2025-01-15"},
			{Title: "Alpha", UpdatedAt: "2025-06-01"},
			{Title: "gamma", UpdatedAt: ""},
			{Title: "delta", UpdatedAt: "2024-12-31"},
		}
	}

	t.Run("title ascending is case insensitive", func(t *testing.T) {
		rs := rows()
		SortRows(rs, SortTitleAsc)
		assert.Equal(t, []string{"Alpha", "beta", "delta", "gamma"}, titles(rs))
	})

	t.Run("title descending", func(t *testing.T) {
		rs := rows()
		SortRows(rs, SortTitleDesc)
		assert.Equal(t, []string{"gamma", "delta", "beta", "Alpha"}, titles(rs))
	})

	t.Run("updated desc puts undated rows last", func(t *testing.T) {
		rs := rows()
		SortRows(rs, SortUpdatedDesc)
		assert.Equal(t, []string{"Alpha", "beta", "delta", "gamma"}, titles(rs))
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		rs := []Row{
			{ID: "a", Title: "same", UpdatedAt: "2025-01-01"},
			{ID: "b", Title: "same", UpdatedAt: "2025-01-01"},
		}
		SortRows(rs, SortTitleAsc)
		assert.Equal(t, "a", rs[0].ID)
		assert.Equal(t, "b", rs[1].ID)
	})
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortTitleAsc, ParseSortKey("title_asc"))
	assert.Equal(t, SortTitleDesc, ParseSortKey("title_desc"))
	assert.Equal(t, SortUpdatedDesc, ParseSortKey("updated_desc"))
	assert.Equal(t, SortUpdatedDesc, ParseSortKey(""))
	assert.Equal(t, SortUpdatedDesc, ParseSortKey("bogus"))
}

func TestParseRowTime(t *testing.T) {
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ParseRowTime("2025-03-01"))
	assert.Equal(t, time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC), ParseRowTime("2025-03-01 12:30:00"))
	assert.False(t, ParseRowTime("2025-03-01T08:00:00Z").IsZero())
	assert.True(t, ParseRowTime("").IsZero())
	assert.True(t, ParseRowTime("03/01/2025").IsZero())
}

func TestComputeFacets(t *testing.T) {
	f := ComputeFacets(sampleRows())

	assert.Equal(t, 4, f.Total)
	assert.Equal(t, []string{"ana", "ben", "cleo"}, f.Owners)
	assert.Equal(t, []string{"goals", "money", "product", "quarterly", "stock"}, f.Tags)
	assert.Equal(t, []CategoryCount{
		{Name: "Finance", Count: 2},
		{Name: DefaultCategory, Count: 1},
		{Name: "Planning", Count: 1},
	}, f.Categories)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList("  "))
	assert.Equal(t, []string{"a", "b"}, SplitList("a; b"))
	assert.Equal(t, []string{"a"}, SplitList("a;;"))
}
