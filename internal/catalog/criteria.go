// Package catalog holds the pure query logic of the product listing:
// the sort-criteria enumeration and the pagination window calculator.
// It knows nothing about SQL or HTTP — the repository realizes the ordering,
// the handler parses the raw query string.
package catalog

import "github.com/wtfunko/backend/internal/apperror"

// Criteria is the closed set of product sort orders the storefront offers.
// The string values are the exact labels the client sends.
type Criteria string

const (
	Default         Criteria = "Default"
	PriceAscending  Criteria = "Price Ascending"
	PriceDescending Criteria = "Price Descending"
	TitleAscending  Criteria = "Title Ascending"
	TitleDescending Criteria = "Title Descending"
)

// ParseCriteria validates a raw criteria string. The empty string means
// Default; anything outside the enumeration is a caller error, never a silent
// fallback.
func ParseCriteria(s string) (Criteria, error) {
	switch Criteria(s) {
	case "":
		return Default, nil
	case Default, PriceAscending, PriceDescending, TitleAscending, TitleDescending:
		return Criteria(s), nil
	}
	return "", apperror.ValidationFailed("sort", "unknown sorting criteria: "+s)
}

// OrderBy maps the criteria to a product column and direction.
// Default orders by identifier ascending, mirroring the store's natural key
// order.
func (c Criteria) OrderBy() (column string, descending bool) {
	switch c {
	case PriceAscending:
		return "price", false
	case PriceDescending:
		return "price", true
	case TitleAscending:
		return "title", false
	case TitleDescending:
		return "title", true
	default:
		return "id", false
	}
}
