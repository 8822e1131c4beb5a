// Package repository declares the storage interfaces the service layer
// depends on. The concrete implementation lives in repository/sqlite; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/wtfunko/backend/internal/catalog"
	"github.com/wtfunko/backend/internal/model"
)

// ProductFilter selects a subset of the catalog. Category and Search combine
// with logical AND; either may be empty (or Category "all", case-insensitive)
// to impose no constraint.
type ProductFilter struct {
	// Category must be a member of the product's interest set.
	Category string
	// Search matches case-insensitively as a substring of the title,
	// description, or product type. The empty string matches every record.
	Search string
}

// ProductQuery is a filtered, sorted, windowed catalog read.
type ProductQuery struct {
	Filter ProductFilter
	Sort   catalog.Criteria
	Skip   int
	Limit  int
}

type UserRepository interface {
	// Create inserts a new user. A username or ID collision reports
	// apperror.ErrConflict via the table's unique constraints.
	Create(ctx context.Context, user *model.User) error
	Exists(ctx context.Context, username string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByUsernameOrEmail returns the first user matching either value.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	// Update replaces the stored email and password hash wholesale.
	Update(ctx context.Context, user *model.User) error
	// Delete removes the user and all of that user's orders in one
	// transaction (cascade is application logic, not a DB trigger).
	Delete(ctx context.Context, username string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	// CreateMany bulk-inserts products in one transaction (seed loader).
	CreateMany(ctx context.Context, products []model.Product) (int64, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, query ProductQuery) ([]model.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	// DecrementStock atomically subtracts amount from the product's
	// quantity, flooring at zero. Single conditional UPDATE — two
	// concurrent orders can never drive stock negative or lose an update.
	DecrementStock(ctx context.Context, id string, amount int) error
}

type OrderRepository interface {
	// Create inserts the order and decrements stock for each line item in
	// one transaction.
	Create(ctx context.Context, order *model.Order) error
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	// FindByUsername returns the user's orders sorted by date descending.
	FindByUsername(ctx context.Context, username string) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	Delete(ctx context.Context, id string) error
	DeleteByUsername(ctx context.Context, username string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
