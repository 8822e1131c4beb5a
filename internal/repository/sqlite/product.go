package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wtfunko/backend/internal/apperror"
	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/repository"
)

// ProductStore implements repository.ProductRepository on the shared pool.
type ProductStore struct {
	conn *sql.DB
}

// compile-time check that *ProductStore implements repository.ProductRepository
var _ repository.ProductRepository = (*ProductStore)(nil)

const productColumns = `id, title, product_type, price, quantity,
	interest, license, tags, vendor, form_factor, feature, related,
	description, img`

// Create inserts one catalog entry. An ID collision surfaces as
// apperror.Conflict via the primary key.
func (s *ProductStore) Create(ctx context.Context, product *model.Product) error {
	args, err := productArgs(product)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("product", product.ID)
		}
		return fmt.Errorf("sqlite: creating product %s: %w", product.ID, err)
	}
	return nil
}

// CreateMany bulk-inserts products in one transaction. Used by the seed
// loader on first boot.
func (s *ProductStore) CreateMany(ctx context.Context, products []model.Product) (int64, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: preparing bulk insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i := range products {
		args, err := productArgs(&products[i])
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			if isUniqueViolation(err) {
				return 0, apperror.Conflict("product", products[i].ID)
			}
			return 0, fmt.Errorf("sqlite: bulk inserting product %s: %w", products[i].ID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit bulk insert: %w", err)
	}
	return inserted, nil
}

// Exists reports whether a product with the given ID is stored.
func (s *ProductStore) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.conn.QueryRowContext(ctx,
		`SELECT 1 FROM products WHERE id = ?`, id,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking product %s: %w", id, err)
	}
	return true, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (*model.Product, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("sqlite: getting product %s: %w", id, err)
	}
	return product, nil
}

// List runs a filtered, sorted, windowed read over the catalog.
//
// The filter clauses:
//   - category: a membership test over the interest JSON array, via
//     json_each. Category "all" (any casing) or "" applies no constraint.
//   - search: OR of case-insensitive LIKE over title, description, and
//     product type. The empty search term matches every record.
//
// Both combine with AND. Sorting maps the criteria enum onto an indexed
// column; the window is plain LIMIT/OFFSET.
func (s *ProductStore) List(ctx context.Context, query repository.ProductQuery) ([]model.Product, error) {
	where, args := productWhere(query.Filter)

	column, descending := query.Sort.OrderBy()
	direction := "ASC"
	if descending {
		direction = "DESC"
	}

	limit := query.Limit
	if limit < 0 {
		limit = 0
	}
	skip := query.Skip
	if skip < 0 {
		skip = 0
	}
	args = append(args, limit, skip)

	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products`+where+
			` ORDER BY `+column+` `+direction+` LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0, limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating products: %w", err)
	}
	return products, nil
}

// Count counts the catalog entries matching the filter. The pager and the
// unique-count endpoint both use this.
func (s *ProductStore) Count(ctx context.Context, filter repository.ProductFilter) (int, error) {
	where, args := productWhere(filter)

	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`+where, args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting products: %w", err)
	}
	return count, nil
}

func (s *ProductStore) Update(ctx context.Context, product *model.Product) error {
	args, err := productArgs(product)
	if err != nil {
		return err
	}
	// productArgs puts the ID first; the UPDATE wants it last for the WHERE.
	args = append(args[1:], args[0])

	result, err := s.conn.ExecContext(ctx,
		`UPDATE products SET
			title = ?, product_type = ?, price = ?, quantity = ?,
			interest = ?, license = ?, tags = ?, vendor = ?,
			form_factor = ?, feature = ?, related = ?,
			description = ?, img = ?
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating product %s: %w", product.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("product", product.ID)
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting product %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}

func (s *ProductStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting all products: %w", err)
	}
	return result.RowsAffected()
}

// DecrementStock subtracts amount from the product's quantity in a single
// conditional UPDATE, flooring at zero. Because the subtraction happens
// inside the statement there is no read-then-write window: concurrent
// decrements serialize in the store and none is lost.
func (s *ProductStore) DecrementStock(ctx context.Context, id string, amount int) error {
	if amount < 0 {
		return apperror.ValidationFailed("amount", fmt.Sprintf("decrement amount must be >= 0, got %d", amount))
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE products SET quantity = MAX(quantity - ?, 0) WHERE id = ?`,
		amount, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: decrementing stock for product %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}

// productWhere builds the WHERE clause for the combined category/search
// filter. Returns the clause with a leading " WHERE " (or "" when
// unconstrained) plus its arguments.
func productWhere(filter repository.ProductFilter) (string, []any) {
	var clauses []string
	var args []any

	if c := strings.TrimSpace(filter.Category); c != "" && !strings.EqualFold(c, "all") {
		clauses = append(clauses,
			`EXISTS (SELECT 1 FROM json_each(products.interest) WHERE json_each.value = ?)`)
		args = append(args, c)
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		clauses = append(clauses,
			`(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR product_type LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike neutralizes LIKE metacharacters in a user-supplied search term
// so "100%" searches for a literal percent sign.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// productArgs flattens a product into the column order of productColumns,
// marshalling the list-valued fields to JSON.
func productArgs(p *model.Product) ([]any, error) {
	lists := make([]string, 0, 6)
	for _, l := range [][]string{p.Interest, p.License, p.Tags, p.FormFactor, p.Feature, p.Related} {
		if l == nil {
			l = []string{}
		}
		raw, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("sqlite: marshalling product %s lists: %w", p.ID, err)
		}
		lists = append(lists, string(raw))
	}

	return []any{
		p.ID, p.Title, p.ProductType, p.Price, p.Quantity,
		lists[0], lists[1], lists[2], p.Vendor, lists[3], lists[4], lists[5],
		p.Description, p.Img,
	}, nil
}

// scanner abstracts *sql.Row and *sql.Rows so scanProduct serves both.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*model.Product, error) {
	var (
		p                                                     model.Product
		interest, license, tags, formFactor, feature, related string
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.ProductType, &p.Price, &p.Quantity,
		&interest, &license, &tags, &p.Vendor, &formFactor, &feature, &related,
		&p.Description, &p.Img,
	)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		raw  string
		dest *[]string
	}{
		{interest, &p.Interest}, {license, &p.License}, {tags, &p.Tags},
		{formFactor, &p.FormFactor}, {feature, &p.Feature}, {related, &p.Related},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dest); err != nil {
			return nil, fmt.Errorf("unmarshalling product %s lists: %w", p.ID, err)
		}
	}
	return &p, nil
}
