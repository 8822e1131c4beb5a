package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wtfunko/backend/internal/apperror"
	"github.com/wtfunko/backend/internal/catalog"
	"github.com/wtfunko/backend/internal/ident"
	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/repository"
)

// ProductService handles catalog business logic: inserts with identifier
// assignment, the filtered/sorted/paged listing, and stock adjustments.
type ProductService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

func NewProductService(products repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		logger:   logger,
	}
}

// ProductPage is one page of the catalog listing plus the pager metadata
// the storefront renders.
type ProductPage struct {
	Items      []model.Product `json:"items"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      int             `json:"total"`
}

// Create validates and inserts a catalog entry. With assignID the service
// generates the identifier and retries on the (unlikely) collision; without
// it the caller-supplied identifier must be unused, else Conflict.
func (s *ProductService) Create(ctx context.Context, product *model.Product, assignID bool) (*model.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if !assignID {
		if strings.TrimSpace(product.ID) == "" {
			return nil, apperror.ValidationFailed("id", "product id is required unless assigned")
		}
		if err := s.products.Create(ctx, product); err != nil {
			return nil, err
		}
		s.logger.Info("product created", slog.String("id", product.ID), slog.String("title", product.Title))
		return product, nil
	}

	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		product.ID, err = ident.Numeric(ident.ProductIDLength)
		if err != nil {
			return nil, fmt.Errorf("generating product id: %w", err)
		}

		err = s.products.Create(ctx, product)
		if err == nil {
			s.logger.Info("product created", slog.String("id", product.ID), slog.String("title", product.Title))
			return product, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			s.logger.Error("failed to create product",
				slog.String("title", product.Title),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("creating product: %w", err)
		}
	}
	return nil, fmt.Errorf("assigning product id: identifier space exhausted after %d attempts", maxIDAttempts)
}

// Get returns one catalog entry by identifier.
func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "product id is required")
	}
	return s.products.GetByID(ctx, id)
}

// List serves the storefront catalog page: combined category/search filter,
// sort criteria, fixed-size pagination. The sort string and page index come
// straight from the query string; unknown criteria and out-of-range pages
// are caller errors.
func (s *ProductService) List(ctx context.Context, category, search, sort string, page int) (*ProductPage, error) {
	criteria, err := catalog.ParseCriteria(sort)
	if err != nil {
		return nil, err
	}

	filter := repository.ProductFilter{Category: category, Search: search}

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		s.logger.Error("failed to count products", slog.String("error", err.Error()))
		return nil, fmt.Errorf("counting products: %w", err)
	}

	skip, limit, err := catalog.PageWindow(total, page, catalog.DefaultPageSize)
	if err != nil {
		return nil, err
	}

	items := []model.Product{}
	if limit > 0 {
		items, err = s.products.List(ctx, repository.ProductQuery{
			Filter: filter,
			Sort:   criteria,
			Skip:   skip,
			Limit:  limit,
		})
		if err != nil {
			s.logger.Error("failed to list products", slog.String("error", err.Error()))
			return nil, fmt.Errorf("listing products: %w", err)
		}
	}

	return &ProductPage{
		Items:      items,
		Page:       page,
		TotalPages: catalog.TotalPages(total, catalog.DefaultPageSize),
		Total:      total,
	}, nil
}

// Count reports how many catalog entries match the combined filter.
func (s *ProductService) Count(ctx context.Context, category, search string) (int, error) {
	return s.products.Count(ctx, repository.ProductFilter{Category: category, Search: search})
}

// Update replaces the stored entry's fields with the given ones, keyed by id.
func (s *ProductService) Update(ctx context.Context, id string, product *model.Product) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "product id is required")
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	product.ID = id
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product updated", slog.String("id", id))
	return product, nil
}

// Delete removes one catalog entry.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "product id is required")
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", slog.String("id", id))
	return nil
}

// DeleteAll clears the catalog and reports how many entries were removed.
func (s *ProductService) DeleteAll(ctx context.Context) (int64, error) {
	count, err := s.products.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("failed to clear catalog", slog.String("error", err.Error()))
		return 0, fmt.Errorf("clearing catalog: %w", err)
	}
	s.logger.Info("catalog cleared", slog.Int64("deleted", count))
	return count, nil
}

func validateProduct(p *model.Product) error {
	if p == nil {
		return apperror.ValidationFailed("product", "product payload is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return apperror.ValidationFailed("title", "product title is required")
	}
	if p.Price < 0 {
		return apperror.ValidationFailed("price", "product price must be non-negative")
	}
	if p.Quantity < 0 {
		return apperror.ValidationFailed("quantity", "product quantity must be non-negative")
	}
	return nil
}
