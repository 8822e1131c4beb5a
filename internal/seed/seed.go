// Package seed populates the catalog from the Funko dataset file on first
// boot. The load is idempotent: it is guarded by a count check, so a restart
// against an already-populated store is a no-op.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/repository"
)

// productStore is the slice of ProductRepository the loader needs.
type productStore interface {
	Count(ctx context.Context, filter repository.ProductFilter) (int, error)
	CreateMany(ctx context.Context, products []model.Product) (int64, error)
}

// Products loads the dataset at path into the store if the catalog is empty.
// The file is either a JSON array of products or an object keyed by record
// name (the format the dataset extraction script emits).
func Products(ctx context.Context, store productStore, path string, logger *slog.Logger) error {
	count, err := store.Count(ctx, repository.ProductFilter{})
	if err != nil {
		return fmt.Errorf("seed: counting products: %w", err)
	}
	if count > 0 {
		logger.Info("catalog already populated, skipping seed",
			slog.Int("products", count),
		)
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: reading dataset %s: %w", path, err)
	}

	products, err := parseDataset(raw)
	if err != nil {
		return fmt.Errorf("seed: parsing dataset %s: %w", path, err)
	}
	if len(products) == 0 {
		logger.Warn("seed dataset is empty", slog.String("path", path))
		return nil
	}

	inserted, err := store.CreateMany(ctx, products)
	if err != nil {
		return fmt.Errorf("seed: inserting products: %w", err)
	}

	logger.Info("catalog seeded",
		slog.String("path", path),
		slog.Int64("products", inserted),
	)
	return nil
}

func parseDataset(raw []byte) ([]model.Product, error) {
	// Array form first; fall back to the keyed-object form.
	var list []model.Product
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var keyed map[string]model.Product
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("dataset is neither a product array nor a keyed object: %w", err)
	}

	list = make([]model.Product, 0, len(keyed))
	for _, p := range keyed {
		list = append(list, p)
	}
	return list, nil
}
