package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/service"
)

// OrderHandler exposes order placement and management endpoints.
type OrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

func NewOrderHandler(orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// HandleCreate places an order. The server assigns the identifier, stamps
// the date, recomputes the total from the item lines, and decrements stock
// for each ordered product in the same transaction as the insert.
//
// HTTP: POST /api/orders
// REQUEST BODY: {"user": {"username": "..."}, "items": [{"product": {...}, "quantity": 1}]}
//
// Ordering for an unknown username is 404.
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var order model.Order
	if err := decodeJSON(r, &order); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.orders.Create(r.Context(), &order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleGet returns one order by identifier.
//
// HTTP: GET /api/orders/{id}
func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// HandleListByUser returns a user's order history, most recent first.
//
// HTTP: GET /api/users/{username}/orders
//
// An unknown username is 404; a known user with no orders gets an empty list.
func (h *OrderHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// HandleUpdate replaces an order's fields, keyed by the path id. The total
// is recomputed from the submitted items.
//
// HTTP: PUT /api/orders/{id}
func (h *OrderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var order model.Order
	if err := decodeJSON(r, &order); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.orders.Update(r.Context(), chi.URLParam(r, "id"), &order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes one order.
//
// HTTP: DELETE /api/orders/{id}
func (h *OrderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteAll clears every order and reports the number removed.
//
// HTTP: DELETE /api/orders
func (h *OrderHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.orders.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
}
