package query

import (
	"strings"

	"github.com/cncideas/storefront/pkg/pagination"
)

// FilterByText returns the items whose searchable fields contain the query as
// a case-insensitive substring. fields extracts the candidate fields (name,
// description, category, author and the like) from one item. The input slice
// is never mutated; an empty query returns a copy of the input.
func FilterByText[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return copySlice(items)
	}

	var out []T
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// PageSlice cuts one page out of a collection. Page 0 and pages past the end
// are clamped, never an error; totalPages = ceil(count/perPage).
func PageSlice[T any](items []T, page, perPage int) ([]T, Pagination) {
	if perPage < 1 {
		perPage = 1
	}

	totalItems := len(items)
	if totalItems == 0 {
		return nil, Pagination{Page: 1, TotalPages: 0, TotalItems: 0}
	}

	totalPages := pagination.TotalPages(totalItems, perPage)
	page = pagination.ClampPage(page, totalPages)

	start := (page - 1) * perPage
	end := start + perPage
	if end > totalItems {
		end = totalItems
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, Pagination{Page: page, TotalPages: totalPages, TotalItems: totalItems}
}

// Visible resolves the read source honoring precedence: active search results
// first, then the server-provided default page, then the raw cache sliced
// client-side when the server counters are absent.
func Visible[T, C, U any](s *Store[T, C, U], page, perPage int) ([]T, Pagination) {
	items, pg := s.View()
	if pg.TotalPages > 0 {
		return items, pg
	}
	return PageSlice(items, page, perPage)
}
