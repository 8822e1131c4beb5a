package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wtfunko/backend/internal/apperror"
	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/repository"
)

// OrderStore implements repository.OrderRepository on the shared pool.
type OrderStore struct {
	conn *sql.DB
}

// compile-time check that *OrderStore implements repository.OrderRepository
var _ repository.OrderRepository = (*OrderStore)(nil)

// Create inserts the order and decrements warehouse stock for every line
// item inside one transaction: either the order is recorded with its stock
// adjustments, or nothing happens.
//
// The decrement is conditional (floor at zero) and tolerates a vanished
// product row — line items are snapshots, so a product deleted from the
// catalog after being carted does not block the purchase.
func (s *OrderStore) Create(ctx context.Context, order *model.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("sqlite: marshalling order %s items: %w", order.ID, err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, username, user_email, items, total, date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.User.Username, order.User.Email,
		string(items), order.Total, order.Date, order.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("order", order.ID)
		}
		return fmt.Errorf("sqlite: creating order %s: %w", order.ID, err)
	}

	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET quantity = MAX(quantity - ?, 0) WHERE id = ?`,
			item.Quantity, item.Product.ID,
		); err != nil {
			return fmt.Errorf("sqlite: decrementing stock for product %s: %w", item.Product.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit order create: %w", err)
	}
	return nil
}

// Exists reports whether an order with the given ID is stored.
func (s *OrderStore) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.conn.QueryRowContext(ctx,
		`SELECT 1 FROM orders WHERE id = ?`, id,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking order %s: %w", id, err)
	}
	return true, nil
}

func (s *OrderStore) GetByID(ctx context.Context, id string) (*model.Order, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, username, user_email, items, total, date, status
		 FROM orders WHERE id = ?`, id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("order", id)
		}
		return nil, fmt.Errorf("sqlite: getting order %s: %w", id, err)
	}
	return order, nil
}

// FindByUsername returns all orders placed by the account, newest first.
// RFC 3339 date strings compare correctly as plain text, so ORDER BY date
// DESC gives reverse-chronological order.
func (s *OrderStore) FindByUsername(ctx context.Context, username string) ([]model.Order, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, username, user_email, items, total, date, status
		 FROM orders WHERE username = ?
		 ORDER BY date DESC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing orders for user %s: %w", username, err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning order row: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating orders: %w", err)
	}
	return orders, nil
}

// Update replaces the order's mutable fields (items, total, date, status,
// user snapshot) keyed by ID.
func (s *OrderStore) Update(ctx context.Context, order *model.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("sqlite: marshalling order %s items: %w", order.ID, err)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE orders SET username = ?, user_email = ?, items = ?, total = ?, date = ?, status = ?
		 WHERE id = ?`,
		order.User.Username, order.User.Email, string(items),
		order.Total, order.Date, order.Status, order.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating order %s: %w", order.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("order", order.ID)
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting order %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("order", id)
	}
	return nil
}

// DeleteByUsername removes all of a user's orders and reports how many were
// deleted. Zero is not an error — a user with no orders is a valid state.
func (s *OrderStore) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM orders WHERE username = ?`, username)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting orders for user %s: %w", username, err)
	}
	return result.RowsAffected()
}

func (s *OrderStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting all orders: %w", err)
	}
	return result.RowsAffected()
}

func scanOrder(row scanner) (*model.Order, error) {
	var (
		o     model.Order
		items string
	)
	err := row.Scan(&o.ID, &o.User.Username, &o.User.Email, &items, &o.Total, &o.Date, &o.Status)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshalling order %s items: %w", o.ID, err)
	}
	return &o, nil
}
