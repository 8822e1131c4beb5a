package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"strconv"

	"github.com/wtfunko/backend/internal/apperror"
	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/service"
)

// ProductHandler exposes the catalog endpoints: the filtered/sorted/paged
// listing the storefront renders plus admin CRUD.
type ProductHandler struct {
	products *service.ProductService
	logger   *slog.Logger
}

func NewProductHandler(products *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// HandleList serves one catalog page.
//
// HTTP: GET /api/products?category=Pop!&q=batman&sort=Price Ascending&page=0
//
// QUERY PARAMETERS:
//   - category: interest tag to filter by; "all" (any case) or absent means no filter
//   - q: case-insensitive substring matched against title, description, and type
//   - sort: one of the named criteria; absent means "Default" (by id)
//   - page: zero-based page index; absent means 0
//
// An unknown sort or an out-of-range page is 400. A filter matching nothing
// is not an error: page 0 of an empty result is 200 with an empty items list.
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 0
	if raw := q.Get("page"); raw != "" {
		var err error
		page, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperror.ValidationFailed("page", "page must be an integer"))
			return
		}
	}

	result, err := h.products.List(r.Context(), q.Get("category"), q.Get("q"), q.Get("sort"), page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleCount reports how many products match the filter, so the storefront
// can size its pager without fetching a page.
//
// HTTP: GET /api/products/count?category=...&q=...
func (h *ProductHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	count, err := h.products.Count(r.Context(), q.Get("category"), q.Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// HandleGet returns one product by identifier.
//
// HTTP: GET /api/products/{id}
func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HandleCreate inserts a catalog entry. An entry without an id gets one
// assigned; an entry with an id must not collide with an existing one (409).
//
// HTTP: POST /api/products
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := decodeJSON(r, &product); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.products.Create(r.Context(), &product, product.ID == "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate replaces a product's fields, keyed by the path id.
//
// HTTP: PUT /api/products/{id}
func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := decodeJSON(r, &product); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), &product)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes one product.
//
// HTTP: DELETE /api/products/{id}
func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteAll clears the catalog and reports the number removed.
//
// HTTP: DELETE /api/products
func (h *ProductHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.products.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
}
