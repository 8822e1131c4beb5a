package model

// OrderUser is the snapshot of the purchasing account embedded in an order.
// It is a copy, not a live reference — the order keeps its historical shape
// even if the account is later changed or deleted.
type OrderUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// OrderItem is one purchased line: a product snapshot plus the quantity
// bought. Snapshotting the product keeps old orders stable when the catalog
// record is edited or removed.
type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Order is a recorded purchase.
//
// Total is derived server-side as the sum of item price × quantity; any
// caller-supplied value is ignored. Date is an RFC 3339 string. Status is
// free-form ("pending", "shipped", ...) — no state machine is enforced.
type Order struct {
	ID     string      `json:"id"`
	User   OrderUser   `json:"user"`
	Items  []OrderItem `json:"items"`
	Total  float64     `json:"total"`
	Date   string      `json:"date"`
	Status string      `json:"status"`
}
