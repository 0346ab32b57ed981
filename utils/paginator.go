package utils

import (
	"errors"
	"strconv"
	"strings"
)

// Paginator splits Count ordered items into pages of PerPage.
type Paginator struct {
	Count   int64
	PerPage int
}

// NewPaginator returns a Paginator; a non-positive perPage falls back to 10.
func NewPaginator(count int64, perPage int) Paginator {
	if perPage <= 0 {
		perPage = 10
	}
	if count < 0 {
		count = 0
	}
	return Paginator{Count: count, PerPage: perPage}
}

// NumPages is never below 1: an empty listing still has an (empty) first page.
func (p Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	per := int64(p.PerPage)
	return int((p.Count + per - 1) / per)
}

// Number resolves a raw page query value. Missing or non-integer values give
// the first page; out-of-range values give the last page.
func (p Paginator) Number(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) {
		return p.NumPages()
	}
	if err != nil {
		return 1
	}
	if last := p.NumPages(); n < 1 || n > last {
		return last
	}
	return n
}

// Bounds returns the offset and item count of page number.
func (p Paginator) Bounds(number int) (offset, limit int) {
	offset = (number - 1) * p.PerPage
	remaining := int(p.Count) - offset
	if remaining < 0 {
		remaining = 0
	}
	if remaining < p.PerPage {
		return offset, remaining
	}
	return offset, p.PerPage
}

// Page is one page of a listing plus the metadata pager controls need.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Number   int   `json:"page"`
	PerPage  int   `json:"page_size"`
	Count    int64 `json:"total"`
	NumPages int   `json:"total_pages"`
}

// NewPage wraps items already fetched for page number of p.
func NewPage[T any](p Paginator, number int, items []T) *Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return &Page[T]{
		Items:    items,
		Number:   number,
		PerPage:  p.PerPage,
		Count:    p.Count,
		NumPages: p.NumPages(),
	}
}

// Paginate slices an in-memory ordered listing.
func Paginate[T any](items []T, raw string, perPage int) *Page[T] {
	p := NewPaginator(int64(len(items)), perPage)
	number := p.Number(raw)
	offset, limit := p.Bounds(number)
	return NewPage(p, number, items[offset:offset+limit])
}

func (pg *Page[T]) Len() int { return len(pg.Items) }

// Offset is the number of items on the pages before this one.
func (pg *Page[T]) Offset() int { return (pg.Number - 1) * pg.PerPage }

func (pg *Page[T]) HasNext() bool { return pg.Number < pg.NumPages }

func (pg *Page[T]) HasPrevious() bool { return pg.Number > 1 }

func (pg *Page[T]) HasOtherPages() bool { return pg.HasNext() || pg.HasPrevious() }

func (pg *Page[T]) NextPageNumber() int {
	if !pg.HasNext() {
		return pg.Number
	}
	return pg.Number + 1
}

func (pg *Page[T]) PreviousPageNumber() int {
	if !pg.HasPrevious() {
		return pg.Number
	}
	return pg.Number - 1
}

// StartIndex is the 1-based position of the first item on the page, 0 when empty.
func (pg *Page[T]) StartIndex() int {
	if pg.Count == 0 {
		return 0
	}
	return (pg.Number-1)*pg.PerPage + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (pg *Page[T]) EndIndex() int {
	if pg.Count == 0 {
		return 0
	}
	return pg.StartIndex() + len(pg.Items) - 1
}

// PageRange lists every page number, for pager links.
func (pg *Page[T]) PageRange() []int {
	out := make([]int, pg.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
