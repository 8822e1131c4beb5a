package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/wtfunko/backend/internal/apperror"
	"github.com/wtfunko/backend/internal/ident"
	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/repository"
)

// OrderService places and manages orders. Placement assigns the order
// identifier, recomputes the total from the item lines, stamps the date,
// and relies on the repository to decrement stock in the same transaction.
type OrderService struct {
	orders repository.OrderRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		users:  users,
		logger: logger,
	}
}

const defaultOrderStatus = "pending"

// Create validates and stores an order. The total is always recomputed
// server-side; a client-supplied total is ignored. Ordering for an unknown
// username is NotFound.
func (s *OrderService) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, order.User.Username)
	if err != nil {
		return nil, err
	}
	order.User.Email = user.Email

	order.Total = orderTotal(order.Items)
	if strings.TrimSpace(order.Date) == "" {
		order.Date = time.Now().UTC().Format(time.RFC3339)
	}
	if strings.TrimSpace(order.Status) == "" {
		order.Status = defaultOrderStatus
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		order.ID, err = ident.Alphanumeric(ident.OrderIDLength)
		if err != nil {
			return nil, fmt.Errorf("generating order id: %w", err)
		}

		err = s.orders.Create(ctx, order)
		if err == nil {
			s.logger.Info("order placed",
				slog.String("id", order.ID),
				slog.String("username", order.User.Username),
				slog.Float64("total", order.Total),
			)
			return order, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			s.logger.Error("failed to place order",
				slog.String("username", order.User.Username),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("placing order: %w", err)
		}
	}
	return nil, fmt.Errorf("assigning order id: identifier space exhausted after %d attempts", maxIDAttempts)
}

// Get returns one order by identifier.
func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "order id is required")
	}
	return s.orders.GetByID(ctx, id)
}

// ListByUsername returns a user's orders, most recent first. An unknown
// username is NotFound; a known username with no orders is an empty list.
func (s *OrderService) ListByUsername(ctx context.Context, username string) ([]model.Order, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, err
	}
	return s.orders.FindByUsername(ctx, username)
}

// Update replaces the stored order's fields, keyed by id. The total is
// recomputed from the submitted items.
func (s *OrderService) Update(ctx context.Context, id string, order *model.Order) (*model.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "order id is required")
	}
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	order.ID = id
	order.Total = orderTotal(order.Items)
	if strings.TrimSpace(order.Status) == "" {
		order.Status = defaultOrderStatus
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order updated", slog.String("id", id))
	return order, nil
}

// Delete removes one order.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "order id is required")
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("order deleted", slog.String("id", id))
	return nil
}

// DeleteAll clears every order and reports how many were removed.
func (s *OrderService) DeleteAll(ctx context.Context) (int64, error) {
	count, err := s.orders.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("failed to clear orders", slog.String("error", err.Error()))
		return 0, fmt.Errorf("clearing orders: %w", err)
	}
	s.logger.Info("orders cleared", slog.Int64("deleted", count))
	return count, nil
}

// orderTotal sums price times quantity over the item lines, rounded to
// cents so accumulated float error never leaks into stored totals.
func orderTotal(items []model.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return math.Round(total*100) / 100
}

func validateOrder(o *model.Order) error {
	if o == nil {
		return apperror.ValidationFailed("order", "order payload is required")
	}
	if strings.TrimSpace(o.User.Username) == "" {
		return apperror.ValidationFailed("username", "order username is required")
	}
	if len(o.Items) == 0 {
		return apperror.ValidationFailed("items", "order must contain at least one item")
	}
	for i, item := range o.Items {
		if item.Quantity <= 0 {
			return apperror.ValidationFailed("items", fmt.Sprintf("item %d quantity must be positive", i))
		}
		if item.Product.Price < 0 {
			return apperror.ValidationFailed("items", fmt.Sprintf("item %d price must be non-negative", i))
		}
	}
	return nil
}
