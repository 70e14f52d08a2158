// Package pagination slices an ordered collection into fixed-size pages.
//
// Out-of-range requests are clamped rather than rejected: page 0 behaves like
// page 1 and a page past the end behaves like the last page.
package pagination

// Page is one visible slice of a collection.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	PageSize    int
	TotalItems  int
}

func (p Page[T]) HasNext() bool     { return p.CurrentPage < p.TotalPages }
func (p Page[T]) HasPrevious() bool { return p.CurrentPage > 1 }

// TotalPages returns max(1, ceil(count/pageSize)).
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Clamp keeps page inside [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns the requested page of items. A pageSize below 1 is treated as 1.
// Items is never nil.
func Paginate[T any](items []T, pageSize, requested int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	total := TotalPages(len(items), pageSize)
	current := Clamp(requested, total)

	start := (current - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	visible := make([]T, end-start)
	copy(visible, items[start:end])

	return Page[T]{
		Items:       visible,
		CurrentPage: current,
		TotalPages:  total,
		PageSize:    pageSize,
		TotalItems:  len(items),
	}
}
