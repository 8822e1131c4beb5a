package model

// Product is one catalog entry (a Funko figure, in the seed dataset).
//
// The list-valued fields (interest, license, tags, ...) are stored as JSON
// arrays in a TEXT column; the repository layer handles the (un)marshalling.
// Interest doubles as the category set used by the catalog filter.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	ProductType string   `json:"product_type"`
	Price       float64  `json:"price"`    // non-negative
	Quantity    int      `json:"quantity"` // stock on hand, never negative
	Interest    []string `json:"interest"`
	License     []string `json:"license"`
	Tags        []string `json:"tags"`
	Vendor      string   `json:"vendor"`
	FormFactor  []string `json:"form_factor"`
	Feature     []string `json:"feature"`
	Related     []string `json:"related"` // identifiers of related products
	Description string   `json:"description"`
	Img         string   `json:"img"`
}
