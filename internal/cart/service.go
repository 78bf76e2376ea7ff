package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

// ProductCatalog resolves the product a cart line points at.
type ProductCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// LineView is one cart line on the wire.
type LineView struct {
	ProductID    uuid.UUID       `json:"productId"`
	SupplierID   *uuid.UUID      `json:"supplierId,omitempty"`
	Title        string          `json:"productName"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	UnitDiscount decimal.Decimal `json:"discount"`
	LineSubtotal decimal.Decimal `json:"totalPrice"`
}

// View is the full cart on the wire.
type View struct {
	Items    []LineView      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Service manages the customer's cart.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (*View, error)
	SetItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
	ClearTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) error
}

type service struct {
	repo    Repository
	catalog ProductCatalog
	logg    *logger.Logger
}

// NewService builds the cart service.
func NewService(repo Repository, catalog ProductCatalog, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	return &service{repo: repo, catalog: catalog, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*View, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	items, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return buildView(items), nil
}

// SetItem adds the product or overwrites its quantity. The line captures the
// catalog price at the time of the call; checkout re-reads the catalog anyway,
// so a stale cart price only affects what the cart page displays.
func (s *service) SetItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*View, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product no longer available")
	}

	unitPrice := product.Price
	unitDiscount := decimal.Zero
	if product.DiscountPrice != nil && product.DiscountPrice.LessThan(product.Price) {
		unitPrice = *product.DiscountPrice
		unitDiscount = product.Price.Sub(*product.DiscountPrice)
	}
	line := models.CartItem{
		CustomerID:   customerID,
		ProductID:    product.ID,
		SupplierID:   product.SupplierID,
		Title:        product.Title,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		UnitDiscount: unitDiscount,
	}
	if err := s.repo.Upsert(ctx, &line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
	}
	return s.Get(ctx, customerID)
}

func (s *service) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.repo.DeleteLine(ctx, customerID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return s.Get(ctx, customerID)
}

func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.repo.DeleteByCustomer(ctx, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// ClearTx empties the cart inside the caller's transaction. Used by order
// finalization so the cart clears atomically with the finalized_at stamp.
func (s *service) ClearTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) error {
	return s.repo.WithTx(tx).DeleteByCustomer(ctx, customerID)
}

func buildView(items []models.CartItem) *View {
	view := &View{Items: make([]LineView, 0, len(items)), Subtotal: decimal.Zero}
	for _, item := range items {
		lineSubtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		line := LineView{
			ProductID:    item.ProductID,
			Title:        item.Title,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			UnitDiscount: item.UnitDiscount,
			LineSubtotal: lineSubtotal,
		}
		if item.SupplierID != uuid.Nil {
			supplierID := item.SupplierID
			line.SupplierID = &supplierID
		}
		view.Items = append(view.Items, line)
		view.Subtotal = view.Subtotal.Add(lineSubtotal)
	}
	return view
}
