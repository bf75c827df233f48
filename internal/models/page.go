package models

import "math"

// Page is a slice of a larger ordered result.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

// NewPage wraps items already sliced by the store.
func NewPage[T any](items []T, page, size int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Page[T]{
		Content:       items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// Paginate slices a fully materialized, already filtered list.
// offset = page*size, end = min(offset+size, len(items)).
func Paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		return NewPage([]T{}, page, size, int64(total))
	}
	// Checked before multiplying so a huge page cannot overflow the offset.
	if page > total/size {
		return NewPage([]T{}, page, size, int64(total))
	}
	offset := page * size
	if offset >= total {
		return NewPage([]T{}, page, size, int64(total))
	}
	end := min(offset+size, total)
	return NewPage(items[offset:end], page, size, int64(total))
}

// Offset returns page*size for store queries, saturating instead of
// overflowing. A saturated offset simply selects no rows.
func Offset(page, size int) int {
	if page <= 0 || size <= 0 {
		return 0
	}
	if page > math.MaxInt32/size {
		return math.MaxInt32
	}
	return page * size
}
