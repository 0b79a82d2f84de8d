package helpers

import (
	"github.com/yigit/dancestudio/internal/app/models/dto"
)

// Admin listings are paged 1-based
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage replaces out-of-range values with the defaults
func NormalizePage(page, size int) (int, int) {
	if page < DefaultPage {
		page = DefaultPage
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// CalculateOffsetLimit converts a page into SQL OFFSET and LIMIT
func CalculateOffsetLimit(page, size int) (offset, limit int) {
	page, size = NormalizePage(page, size)
	return (page - 1) * size, size
}

// NewPaginationInfo describes the page that was served. An empty listing has
// one (empty) page and the current page never points past the last one.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = NormalizePage(page, size)

	totalPages := 1
	if totalItems > 0 {
		totalPages = int((totalItems + int64(size) - 1) / int64(size))
	}

	return dto.PaginationInfo{
		CurrentPage: min(page, totalPages),
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}
