package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

type stubCartRepo struct {
	items   []models.CartItem
	upserts []models.CartItem
	deleted []uuid.UUID
	cleared []uuid.UUID
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range s.items {
		if item.CustomerID == customerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubCartRepo) Upsert(ctx context.Context, item *models.CartItem) error {
	s.upserts = append(s.upserts, *item)
	for i := range s.items {
		if s.items[i].CustomerID == item.CustomerID && s.items[i].ProductID == item.ProductID {
			s.items[i] = *item
			return nil
		}
	}
	s.items = append(s.items, *item)
	return nil
}

func (s *stubCartRepo) DeleteLine(ctx context.Context, customerID, productID uuid.UUID) error {
	s.deleted = append(s.deleted, productID)
	kept := s.items[:0]
	for _, item := range s.items {
		if item.CustomerID == customerID && item.ProductID == productID {
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return nil
}

func (s *stubCartRepo) DeleteByCustomer(ctx context.Context, customerID uuid.UUID) error {
	s.cleared = append(s.cleared, customerID)
	kept := s.items[:0]
	for _, item := range s.items {
		if item.CustomerID == customerID {
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return nil
}

type stubProductCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductCatalog) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newCartService(t *testing.T, repo *stubCartRepo, catalog *stubProductCatalog) Service {
	t.Helper()
	svc, err := NewService(repo, catalog, logger.New(logger.Options{ServiceName: "cart-test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func catalogWith(products ...*models.Product) *stubProductCatalog {
	catalog := &stubProductCatalog{products: map[uuid.UUID]*models.Product{}}
	for _, product := range products {
		catalog.products[product.ID] = product
	}
	return catalog
}

func TestSetItemCapturesCatalogPrice(t *testing.T) {
	t.Parallel()
	product := &models.Product{
		ID:         uuid.New(),
		SupplierID: uuid.New(),
		Title:      "Olive Oil 1L",
		Price:      dec("12.50"),
		IsActive:   true,
	}
	repo := &stubCartRepo{}
	svc := newCartService(t, repo, catalogWith(product))
	customerID := uuid.New()

	view, err := svc.SetItem(context.Background(), customerID, product.ID, 2)
	if err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if len(repo.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(repo.upserts))
	}
	line := repo.upserts[0]
	if !line.UnitPrice.Equal(dec("12.50")) {
		t.Fatalf("expected catalog price captured, got %s", line.UnitPrice)
	}
	if line.SupplierID != product.SupplierID {
		t.Fatal("expected supplier attribution from the catalog")
	}
	if !view.Subtotal.Equal(dec("25.00")) {
		t.Fatalf("expected subtotal 25.00, got %s", view.Subtotal)
	}
}

func TestSetItemAppliesDiscountPrice(t *testing.T) {
	t.Parallel()
	discount := dec("9.99")
	product := &models.Product{
		ID:            uuid.New(),
		SupplierID:    uuid.New(),
		Title:         "Honey Jar",
		Price:         dec("11.99"),
		DiscountPrice: &discount,
		IsActive:      true,
	}
	repo := &stubCartRepo{}
	svc := newCartService(t, repo, catalogWith(product))

	_, err := svc.SetItem(context.Background(), uuid.New(), product.ID, 1)
	if err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	line := repo.upserts[0]
	if !line.UnitPrice.Equal(dec("9.99")) {
		t.Fatalf("expected discounted price, got %s", line.UnitPrice)
	}
	if !line.UnitDiscount.Equal(dec("2.00")) {
		t.Fatalf("expected unit discount 2.00, got %s", line.UnitDiscount)
	}
}

func TestSetItemOverwritesQuantity(t *testing.T) {
	t.Parallel()
	product := &models.Product{ID: uuid.New(), SupplierID: uuid.New(), Title: "Tea", Price: dec("4.00"), IsActive: true}
	repo := &stubCartRepo{}
	svc := newCartService(t, repo, catalogWith(product))
	customerID := uuid.New()

	if _, err := svc.SetItem(context.Background(), customerID, product.ID, 1); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	view, err := svc.SetItem(context.Background(), customerID, product.ID, 5)
	if err != nil {
		t.Fatalf("SetItem overwrite: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(view.Items))
	}
	if view.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity overwritten to 5, got %d", view.Items[0].Quantity)
	}
}

func TestSetItemValidation(t *testing.T) {
	t.Parallel()
	product := &models.Product{ID: uuid.New(), SupplierID: uuid.New(), Title: "Tea", Price: dec("4.00"), IsActive: true}
	svc := newCartService(t, &stubCartRepo{}, catalogWith(product))
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
		code pkgerrors.Code
	}{
		{"zero quantity", func() error {
			_, err := svc.SetItem(ctx, uuid.New(), product.ID, 0)
			return err
		}, pkgerrors.CodeValidation},
		{"missing customer", func() error {
			_, err := svc.SetItem(ctx, uuid.Nil, product.ID, 1)
			return err
		}, pkgerrors.CodeUnauthorized},
		{"unknown product", func() error {
			_, err := svc.SetItem(ctx, uuid.New(), uuid.New(), 1)
			return err
		}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		err := tc.run()
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != tc.code {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestSetItemRejectsInactiveProduct(t *testing.T) {
	t.Parallel()
	product := &models.Product{ID: uuid.New(), SupplierID: uuid.New(), Title: "Gone", Price: dec("4.00"), IsActive: false}
	svc := newCartService(t, &stubCartRepo{}, catalogWith(product))

	_, err := svc.SetItem(context.Background(), uuid.New(), product.ID, 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveItemReturnsRemainingCart(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	keep := models.CartItem{CustomerID: customerID, ProductID: uuid.New(), Title: "Keep", Quantity: 1, UnitPrice: dec("3.00")}
	drop := models.CartItem{CustomerID: customerID, ProductID: uuid.New(), Title: "Drop", Quantity: 2, UnitPrice: dec("5.00")}
	repo := &stubCartRepo{items: []models.CartItem{keep, drop}}
	svc := newCartService(t, repo, catalogWith())

	view, err := svc.RemoveItem(context.Background(), customerID, drop.ProductID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != keep.ProductID {
		t.Fatalf("expected only the kept line, got %+v", view.Items)
	}
	if !view.Subtotal.Equal(dec("3.00")) {
		t.Fatalf("expected subtotal 3.00, got %s", view.Subtotal)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	repo := &stubCartRepo{items: []models.CartItem{
		{CustomerID: customerID, ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("3.00")},
	}}
	svc := newCartService(t, repo, catalogWith())

	if err := svc.Clear(context.Background(), customerID); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	view, err := svc.Get(context.Background(), customerID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Items))
	}
	if !view.Subtotal.Equal(decimal.Zero) {
		t.Fatalf("expected zero subtotal, got %s", view.Subtotal)
	}
}
