package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateFixtureSizes(t *testing.T) {
	cases := []struct {
		total, first, second int
	}{
		{total: 0, first: 0, second: 0},
		{total: 3, first: 3, second: 3},
		{total: 10, first: 10, second: 10},
		{total: 11, first: 10, second: 1},
		{total: 13, first: 10, second: 3},
		{total: 25, first: 10, second: 10},
	}
	for _, tc := range cases {
		items := seq(tc.total)
		assert.Equal(t, tc.first, Paginate(items, "1", 10).Len(), "page 1 of %d", tc.total)
		// a single page clamps page 2 back onto page 1
		assert.Equal(t, tc.second, Paginate(items, "2", 10).Len(), "page 2 of %d", tc.total)
	}
}

func TestPaginateSecondPageItems(t *testing.T) {
	page := Paginate(seq(13), "2", 10)
	assert.Equal(t, []int{11, 12, 13}, page.Items)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 2, page.NumPages)
	assert.True(t, page.HasPrevious())
	assert.False(t, page.HasNext())
	assert.Equal(t, 1, page.PreviousPageNumber())
	assert.Equal(t, 11, page.StartIndex())
	assert.Equal(t, 13, page.EndIndex())
}

func TestPaginateNumberResolution(t *testing.T) {
	items := seq(25)
	cases := map[string]int{
		"":    1,
		"abc": 1,
		"1.5": 1,
		"2":   2,
		" 3 ": 3,
		"4":   3,
		"999": 3,
		"0":   3,
		"-1":  3,

		"99999999999999999999999":  3,
		"-99999999999999999999999": 3,
	}
	for raw, want := range cases {
		assert.Equal(t, want, Paginate(items, raw, 10).Number, "raw %q", raw)
	}
}

func TestPaginateEmptyListing(t *testing.T) {
	page := Paginate([]string{}, "5", 10)
	require.NotNil(t, page.Items)
	assert.Equal(t, 0, page.Len())
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.False(t, page.HasOtherPages())
	assert.Equal(t, 0, page.StartIndex())
	assert.Equal(t, 0, page.EndIndex())
}

func TestPaginatorBounds(t *testing.T) {
	p := NewPaginator(13, 10)
	off, lim := p.Bounds(1)
	assert.Equal(t, 0, off)
	assert.Equal(t, 10, lim)
	off, lim = p.Bounds(2)
	assert.Equal(t, 10, off)
	assert.Equal(t, 3, lim)
	assert.Equal(t, []int{1, 2}, NewPage[int](p, 1, nil).PageRange())
}

func TestNewPaginatorDefaults(t *testing.T) {
	p := NewPaginator(-4, 0)
	assert.Equal(t, int64(0), p.Count)
	assert.Equal(t, 10, p.PerPage)
}
