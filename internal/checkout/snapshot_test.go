package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
)

type stubCartReader struct {
	items []models.CartItem
	err   error
}

func (s *stubCartReader) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

type stubCatalog struct {
	products []models.Product
	err      error
}

func (s *stubCatalog) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func activeProduct(supplierID uuid.UUID, price string) models.Product {
	return models.Product{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Title:      "product",
		Price:      dec(price),
		IsActive:   true,
	}
}

func TestBuildSnapshotCapturesCatalogPrices(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	supplierID := uuid.New()
	product := activeProduct(supplierID, "10.00")

	cart := &stubCartReader{items: []models.CartItem{
		// Stale cart price; the catalog row wins.
		{CustomerID: customerID, ProductID: product.ID, Quantity: 3, UnitPrice: dec("7.00")},
	}}
	catalog := &stubCatalog{products: []models.Product{product}}

	snapshot, err := BuildSnapshot(context.Background(), customerID, cart, catalog)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if len(snapshot.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(snapshot.Lines))
	}
	line := snapshot.Lines[0]
	if !line.UnitPrice.Equal(dec("10.00")) {
		t.Fatalf("expected catalog price 10.00, got %s", line.UnitPrice)
	}
	if !line.LineSubtotal.Equal(dec("30.00")) {
		t.Fatalf("expected line subtotal 30.00, got %s", line.LineSubtotal)
	}
	if !snapshot.Subtotal.Equal(dec("30.00")) {
		t.Fatalf("expected snapshot subtotal 30.00, got %s", snapshot.Subtotal)
	}
	if line.SupplierID != supplierID {
		t.Fatal("expected supplier attribution from the catalog row")
	}
}

func TestBuildSnapshotAppliesDiscountPrice(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	product := activeProduct(uuid.New(), "10.00")
	discount := dec("8.50")
	product.DiscountPrice = &discount

	cart := &stubCartReader{items: []models.CartItem{
		{CustomerID: customerID, ProductID: product.ID, Quantity: 2},
	}}
	catalog := &stubCatalog{products: []models.Product{product}}

	snapshot, err := BuildSnapshot(context.Background(), customerID, cart, catalog)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	line := snapshot.Lines[0]
	if !line.UnitPrice.Equal(dec("8.50")) {
		t.Fatalf("expected discounted unit price 8.50, got %s", line.UnitPrice)
	}
	if !line.UnitDiscount.Equal(dec("1.50")) {
		t.Fatalf("expected unit discount 1.50, got %s", line.UnitDiscount)
	}
	if !snapshot.Subtotal.Equal(dec("17.00")) {
		t.Fatalf("expected subtotal 17.00, got %s", snapshot.Subtotal)
	}
}

func TestBuildSnapshotRejectsEmptyCart(t *testing.T) {
	t.Parallel()
	_, err := BuildSnapshot(context.Background(), uuid.New(), &stubCartReader{}, &stubCatalog{})
	if err == nil {
		t.Fatal("expected validation error for empty cart")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildSnapshotRejectsBadLines(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	known := activeProduct(uuid.New(), "5.00")
	inactive := activeProduct(uuid.New(), "5.00")
	inactive.IsActive = false

	cart := &stubCartReader{items: []models.CartItem{
		{CustomerID: customerID, ProductID: known.ID, Quantity: 0},
		{CustomerID: customerID, ProductID: uuid.New(), Quantity: 1},
		{CustomerID: customerID, ProductID: inactive.ID, Quantity: 1},
	}}
	catalog := &stubCatalog{products: []models.Product{known, inactive}}

	_, err := BuildSnapshot(context.Background(), customerID, cart, catalog)
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	problems, ok := typed.Details().([]string)
	if !ok {
		t.Fatalf("expected problem list in details, got %T", typed.Details())
	}
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems (zero quantity, unknown, inactive), got %v", problems)
	}
}
