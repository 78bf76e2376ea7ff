package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukkanhq/dukkan-backend/internal/checkout/helpers"
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
)

// Snapshot is the immutable view of the cart at checkout time. Prices and
// discounts are captured here and never recomputed afterwards.
type Snapshot struct {
	CustomerID uuid.UUID
	Lines      []helpers.Line
	Subtotal   decimal.Decimal
}

// CartReader lists the current cart contents for one customer.
type CartReader interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error)
}

// ProductCatalog resolves products referenced by the cart.
type ProductCatalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// BuildSnapshot validates the cart against the current catalog and freezes it
// into an immutable snapshot. Malformed carts are rejected before any write:
// an empty cart, a non-positive quantity, or a reference to an unknown or
// inactive product all fail with a validation error.
//
// Prices come from the catalog row at snapshot time, not from the stored cart
// line, so a stale cart can never check out at an outdated price.
func BuildSnapshot(ctx context.Context, customerID uuid.UUID, cart CartReader, catalog ProductCatalog) (*Snapshot, error) {
	items, err := cart.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	snapshot := &Snapshot{CustomerID: customerID, Subtotal: decimal.Zero}
	var problems []string
	for _, item := range items {
		if item.Quantity < 1 {
			problems = append(problems, fmt.Sprintf("product %s: quantity must be at least 1", item.ProductID))
			continue
		}
		product, ok := byID[item.ProductID]
		if !ok {
			problems = append(problems, fmt.Sprintf("product %s: not found", item.ProductID))
			continue
		}
		if !product.IsActive {
			problems = append(problems, fmt.Sprintf("product %s: no longer available", item.ProductID))
			continue
		}

		unitPrice := product.Price
		unitDiscount := decimal.Zero
		if product.DiscountPrice != nil && product.DiscountPrice.LessThan(product.Price) {
			unitPrice = *product.DiscountPrice
			unitDiscount = product.Price.Sub(*product.DiscountPrice)
		}
		lineSubtotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

		snapshot.Lines = append(snapshot.Lines, helpers.Line{
			ProductID:    product.ID,
			SupplierID:   product.SupplierID,
			Title:        product.Title,
			UnitPrice:    unitPrice,
			UnitDiscount: unitDiscount,
			Quantity:     item.Quantity,
			LineSubtotal: lineSubtotal,
		})
		snapshot.Subtotal = snapshot.Subtotal.Add(lineSubtotal)
	}
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart failed validation").
			WithDetails(problems)
	}
	return snapshot, nil
}
