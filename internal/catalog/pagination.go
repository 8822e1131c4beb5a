package catalog

import (
	"fmt"

	"github.com/wtfunko/backend/internal/apperror"
)

// DefaultPageSize is the number of products per catalog page.
const DefaultPageSize = 20

// PageWindow computes the skip/limit window for the requested page.
//
// Valid page indices are [0, ceil(total/size) - 1]. An empty result set is a
// special case: there is no page of items at all, so page 0 is defined as the
// only valid index and yields an empty window rather than an error.
//
// The returned limit is trimmed on the last page, so skip+limit never exceeds
// total.
func PageWindow(total, page, size int) (skip, limit int, err error) {
	if size < 1 {
		return 0, 0, apperror.ValidationFailed("size", fmt.Sprintf("page size must be >= 1, got %d", size))
	}
	if total < 0 {
		return 0, 0, apperror.ValidationFailed("total", fmt.Sprintf("total count must be >= 0, got %d", total))
	}

	if total == 0 {
		if page != 0 {
			return 0, 0, apperror.ValidationFailed("page", "invalid page range")
		}
		return 0, 0, nil
	}

	maxPages := (total + size - 1) / size
	if page < 0 || page >= maxPages {
		return 0, 0, apperror.ValidationFailed("page", "invalid page range")
	}

	skip = page * size
	end := (page + 1) * size
	if end > total {
		end = total
	}
	return skip, end - skip, nil
}

// TotalPages reports how many pages a result set of total items spans.
// Zero items still present a single (empty) page to the client.
func TotalPages(total, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
