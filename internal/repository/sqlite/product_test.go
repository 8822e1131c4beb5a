package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/wtfunko/backend/internal/apperror"
	"github.com/wtfunko/backend/internal/catalog"
	"github.com/wtfunko/backend/internal/model"
	"github.com/wtfunko/backend/internal/repository"
)

func createTestProduct(t *testing.T, db *DB, p model.Product) *model.Product {
	t.Helper()
	if err := db.Products().Create(context.Background(), &p); err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return &p
}

func TestProductCreate_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	original := createTestProduct(t, db, model.Product{
		ID:          "1000000000001",
		Title:       "Pop! Batman",
		ProductType: "Pop!",
		Price:       12.99,
		Quantity:    25,
		Interest:    []string{"DC Comics", "Heroes"},
		License:     []string{"DC"},
		Tags:        []string{"batman", "vinyl"},
		Vendor:      "Funko",
		Description: "The caped crusader in vinyl form",
		Img:         "https://example.com/batman.png",
	})

	found, err := db.Products().GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Title != original.Title {
		t.Errorf("Title = %q, want %q", found.Title, original.Title)
	}
	if found.Price != 12.99 {
		t.Errorf("Price = %v, want %v", found.Price, 12.99)
	}
	if found.Quantity != 25 {
		t.Errorf("Quantity = %d, want %d", found.Quantity, 25)
	}
	if len(found.Interest) != 2 || found.Interest[0] != "DC Comics" {
		t.Errorf("Interest = %v, want %v", found.Interest, original.Interest)
	}
	if len(found.Tags) != 2 {
		t.Errorf("Tags = %v, want %v", found.Tags, original.Tags)
	}
	if found.Description != original.Description {
		t.Errorf("Description = %q, want %q", found.Description, original.Description)
	}
}

func TestProductCreate_DuplicateID(t *testing.T) {
	db := newTestDB(t)
	createTestProduct(t, db, model.Product{ID: "1000000000001", Title: "first"})

	err := db.Products().Create(context.Background(), &model.Product{ID: "1000000000001", Title: "second"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() duplicate id error = %v, want ErrConflict", err)
	}
}

func TestProductCreateMany(t *testing.T) {
	db := newTestDB(t)

	inserted, err := db.Products().CreateMany(context.Background(), []model.Product{
		{ID: "1000000000001", Title: "a"},
		{ID: "1000000000002", Title: "b"},
		{ID: "1000000000003", Title: "c"},
	})
	if err != nil {
		t.Fatalf("CreateMany() error = %v", err)
	}
	if inserted != 3 {
		t.Errorf("CreateMany() = %d, want 3", inserted)
	}

	count, err := db.Products().Count(context.Background(), repository.ProductFilter{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestProductGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Products().GetByID(context.Background(), "9999999999999")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

// seedCatalog inserts a small fixed catalog used by the filter and sort tests.
func seedCatalog(t *testing.T, db *DB) {
	t.Helper()
	products := []model.Product{
		{ID: "1000000000001", Title: "Pop! Batman", ProductType: "Pop!", Price: 12.99, Interest: []string{"DC Comics"}, Description: "The dark knight"},
		{ID: "1000000000002", Title: "Pop! Superman", ProductType: "Pop!", Price: 9.99, Interest: []string{"DC Comics"}, Description: "Man of steel"},
		{ID: "1000000000003", Title: "Dorbz Spider-Man", ProductType: "Dorbz", Price: 7.50, Interest: []string{"Marvel"}, Description: "Friendly neighborhood hero"},
		{ID: "1000000000004", Title: "Plush Pikachu", ProductType: "Plush", Price: 15.00, Interest: []string{"Games", "Anime"}, Description: "Electric mouse"},
	}
	if _, err := db.Products().CreateMany(context.Background(), products); err != nil {
		t.Fatalf("seeding catalog: %v", err)
	}
}

func TestProductList_CategoryFilter(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	got, err := db.Products().List(context.Background(), repository.ProductQuery{
		Filter: repository.ProductFilter{Category: "DC Comics"},
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List(category=DC Comics) returned %d products, want 2", len(got))
	}
	for _, p := range got {
		if p.Interest[0] != "DC Comics" {
			t.Errorf("product %s leaked into DC Comics filter: interest=%v", p.ID, p.Interest)
		}
	}
}

func TestProductList_CategoryAllMeansNoFilter(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	// "all" in any casing disables the category constraint.
	for _, category := range []string{"", "all", "All", "ALL"} {
		got, err := db.Products().List(context.Background(), repository.ProductQuery{
			Filter: repository.ProductFilter{Category: category},
			Limit:  10,
		})
		if err != nil {
			t.Fatalf("List(category=%q) error = %v", category, err)
		}
		if len(got) != 4 {
			t.Errorf("List(category=%q) returned %d products, want 4", category, len(got))
		}
	}
}

func TestProductList_Search(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	tests := []struct {
		search string
		want   int
	}{
		{"batman", 1},  // title, case-insensitive
		{"Pop!", 2},    // product type
		{"steel", 1},   // description
		{"man", 3},     // substring across titles and descriptions
		{"zzz", 0},     // no match
		{"", 4},        // empty search matches everything
	}

	for _, tt := range tests {
		got, err := db.Products().List(context.Background(), repository.ProductQuery{
			Filter: repository.ProductFilter{Search: tt.search},
			Limit:  10,
		})
		if err != nil {
			t.Fatalf("List(q=%q) error = %v", tt.search, err)
		}
		if len(got) != tt.want {
			t.Errorf("List(q=%q) returned %d products, want %d", tt.search, len(got), tt.want)
		}
	}
}

func TestProductList_SearchEscapesWildcards(t *testing.T) {
	db := newTestDB(t)
	createTestProduct(t, db, model.Product{ID: "1000000000009", Title: "100% Soft"})
	createTestProduct(t, db, model.Product{ID: "1000000000010", Title: "1000 Soft"})

	// A literal "%" in the query must not behave as a LIKE wildcard.
	got, err := db.Products().List(context.Background(), repository.ProductQuery{
		Filter: repository.ProductFilter{Search: "100%"},
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "100% Soft" {
		t.Errorf("List(q=100%%) = %v, want only the literal match", got)
	}
}

func TestProductList_Sorting(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	tests := []struct {
		criteria  catalog.Criteria
		wantFirst string
	}{
		{catalog.Default, "1000000000001"},         // by id ascending
		{catalog.PriceAscending, "1000000000003"},  // cheapest first
		{catalog.PriceDescending, "1000000000004"}, // priciest first
		{catalog.TitleAscending, "1000000000003"},  // "Dorbz Spider-Man"
		{catalog.TitleDescending, "1000000000002"}, // "Pop! Superman"
	}

	for _, tt := range tests {
		got, err := db.Products().List(context.Background(), repository.ProductQuery{
			Sort:  tt.criteria,
			Limit: 10,
		})
		if err != nil {
			t.Fatalf("List(sort=%q) error = %v", tt.criteria, err)
		}
		if len(got) != 4 {
			t.Fatalf("List(sort=%q) returned %d products, want 4", tt.criteria, len(got))
		}
		if got[0].ID != tt.wantFirst {
			t.Errorf("List(sort=%q) first = %s, want %s", tt.criteria, got[0].ID, tt.wantFirst)
		}
	}
}

func TestProductList_Pagination(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	page1, err := db.Products().List(context.Background(), repository.ProductQuery{Skip: 0, Limit: 3})
	if err != nil {
		t.Fatalf("List() page 1 error = %v", err)
	}
	if len(page1) != 3 {
		t.Errorf("page 1: got %d products, want 3", len(page1))
	}

	page2, err := db.Products().List(context.Background(), repository.ProductQuery{Skip: 3, Limit: 3})
	if err != nil {
		t.Fatalf("List() page 2 error = %v", err)
	}
	if len(page2) != 1 {
		t.Errorf("page 2: got %d products, want 1", len(page2))
	}
	if len(page1) > 0 && len(page2) > 0 && page1[0].ID == page2[0].ID {
		t.Error("pages overlap")
	}
}

func TestProductCount_WithFilter(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	count, err := db.Products().Count(context.Background(), repository.ProductFilter{Category: "Marvel"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count(category=Marvel) = %d, want 1", count)
	}

	count, err = db.Products().Count(context.Background(), repository.ProductFilter{Category: "DC Comics", Search: "batman"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count(category+search) = %d, want 1", count)
	}
}

func TestProductUpdate(t *testing.T) {
	db := newTestDB(t)
	product := createTestProduct(t, db, model.Product{ID: "1000000000001", Title: "before", Price: 5, Quantity: 1})

	product.Title = "after"
	product.Price = 9.99
	product.Tags = []string{"updated"}
	if err := db.Products().Update(context.Background(), product); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.Products().GetByID(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}
	if found.Title != "after" || found.Price != 9.99 {
		t.Errorf("after update got title=%q price=%v", found.Title, found.Price)
	}
	if len(found.Tags) != 1 || found.Tags[0] != "updated" {
		t.Errorf("Tags after update = %v, want [updated]", found.Tags)
	}
}

func TestProductUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Products().Update(context.Background(), &model.Product{ID: "9999999999999", Title: "ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestProductDelete(t *testing.T) {
	db := newTestDB(t)
	product := createTestProduct(t, db, model.Product{ID: "1000000000001", Title: "doomed"})

	if err := db.Products().Delete(context.Background(), product.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Products().GetByID(context.Background(), product.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestProductDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Products().Delete(context.Background(), "9999999999999")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestProductDecrementStock(t *testing.T) {
	db := newTestDB(t)
	product := createTestProduct(t, db, model.Product{ID: "1000000000001", Title: "stocked", Quantity: 10})

	if err := db.Products().DecrementStock(context.Background(), product.ID, 4); err != nil {
		t.Fatalf("DecrementStock() error = %v", err)
	}

	found, _ := db.Products().GetByID(context.Background(), product.ID)
	if found.Quantity != 6 {
		t.Errorf("Quantity = %d, want 6", found.Quantity)
	}
}

func TestProductDecrementStock_FloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	product := createTestProduct(t, db, model.Product{ID: "1000000000001", Title: "scarce", Quantity: 3})

	// Decrementing past zero clamps instead of going negative.
	if err := db.Products().DecrementStock(context.Background(), product.ID, 10); err != nil {
		t.Fatalf("DecrementStock() error = %v", err)
	}

	found, _ := db.Products().GetByID(context.Background(), product.ID)
	if found.Quantity != 0 {
		t.Errorf("Quantity = %d, want 0", found.Quantity)
	}
}

func TestProductDecrementStock_Invalid(t *testing.T) {
	db := newTestDB(t)
	product := createTestProduct(t, db, model.Product{ID: "1000000000001", Title: "x", Quantity: 3})

	err := db.Products().DecrementStock(context.Background(), product.ID, -1)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("DecrementStock(-1) error = %v, want ErrValidation", err)
	}

	err = db.Products().DecrementStock(context.Background(), "9999999999999", 1)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DecrementStock(unknown id) error = %v, want ErrNotFound", err)
	}
}

func TestProductDeleteAll(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	count, err := db.Products().DeleteAll(context.Background())
	if err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if count != 4 {
		t.Errorf("DeleteAll() = %d, want 4", count)
	}
}
