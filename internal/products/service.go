package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/dukkanhq/dukkan-backend/pkg/db"
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/pagination"
)

// CreateProductInput is the supplier panel listing form.
type CreateProductInput struct {
	SKU           string  `json:"sku" validate:"required,min=1,max=64"`
	Title         string  `json:"title" validate:"required,min=1,max=255"`
	Description   *string `json:"description" validate:"omitempty,max=4000"`
	Price         string  `json:"price" validate:"required"`
	DiscountPrice *string `json:"discountPrice"`
	AvailableQty  int     `json:"availableQty" validate:"gte=0"`
}

// UpdateProductInput carries the mutable listing fields; nil means unchanged.
type UpdateProductInput struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description   *string `json:"description" validate:"omitempty,max=4000"`
	Price         *string `json:"price"`
	DiscountPrice *string `json:"discountPrice"`
	IsActive      *bool   `json:"isActive"`
	AvailableQty  *int    `json:"availableQty" validate:"omitempty,gte=0"`
}

// View is one catalog listing on the wire.
type View struct {
	ID            uuid.UUID        `json:"id"`
	SupplierID    uuid.UUID        `json:"supplierId"`
	SKU           string           `json:"sku"`
	Title         string           `json:"title"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	IsActive      bool             `json:"isActive"`
	AvailableQty  *int             `json:"availableQty,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ListView carries one page of listings plus the next cursor.
type ListView struct {
	Products   []View  `json:"products"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// Service manages the supplier catalog.
type Service interface {
	Create(ctx context.Context, supplierID uuid.UUID, input CreateProductInput) (*View, error)
	Update(ctx context.Context, supplierID, productID uuid.UUID, input UpdateProductInput) (*View, error)
	Get(ctx context.Context, productID uuid.UUID) (*View, error)
	ListActive(ctx context.Context, params pagination.Params) (*ListView, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, params pagination.Params) (*ListView, error)

	// checkout.ProductCatalog / cart.ProductCatalog
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	validate *validator.Validate
	logg     *logger.Logger
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// NewService builds the products service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		validate: validator.New(),
		logg:     logg,
	}, nil
}

func (s *service) Create(ctx context.Context, supplierID uuid.UUID, input CreateProductInput) (*View, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product")
	}
	price, discountPrice, err := parsePrices(input.Price, input.DiscountPrice)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		ID:            uuid.New(),
		SupplierID:    supplierID,
		SKU:           input.SKU,
		Title:         input.Title,
		Description:   input.Description,
		Price:         price,
		DiscountPrice: discountPrice,
		IsActive:      true,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, &product); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_products_supplier_sku") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		if err := repo.UpsertInventory(ctx, product.ID, input.AvailableQty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory row")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	qty := input.AvailableQty
	view := newView(product)
	view.AvailableQty = &qty
	return &view, nil
}

func (s *service) Update(ctx context.Context, supplierID, productID uuid.UUID, input UpdateProductInput) (*View, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SupplierID != supplierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to supplier")
	}

	fields := map[string]any{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Price != nil {
		price, err := decimal.NewFromString(*input.Price)
		if err != nil || price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price")
		}
		fields["price"] = price
	}
	if input.DiscountPrice != nil {
		discount, err := decimal.NewFromString(*input.DiscountPrice)
		if err != nil || discount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount price")
		}
		fields["discount_price"] = discount
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(fields) > 0 {
			if err := repo.Update(ctx, productID, fields); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
			}
		}
		if input.AvailableQty != nil {
			if err := repo.UpsertInventory(ctx, productID, *input.AvailableQty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, productID)
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*View, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	view := newView(*product)
	return &view, nil
}

func (s *service) ListActive(ctx context.Context, params pagination.Params) (*ListView, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListActive(ctx, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return buildListView(rows, limit), nil
}

func (s *service) ListBySupplier(ctx context.Context, supplierID uuid.UUID, params pagination.Params) (*ListView, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListBySupplier(ctx, supplierID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return buildListView(rows, limit), nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func parsePrices(rawPrice string, rawDiscount *string) (decimal.Decimal, *decimal.Decimal, error) {
	price, err := decimal.NewFromString(rawPrice)
	if err != nil || price.IsNegative() {
		return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price")
	}
	if rawDiscount == nil {
		return price, nil, nil
	}
	discount, err := decimal.NewFromString(*rawDiscount)
	if err != nil || discount.IsNegative() {
		return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount price")
	}
	if discount.GreaterThanOrEqual(price) {
		return decimal.Zero, nil, pkgerrors.New(pkgerrors.CodeValidation, "discount price must be below price")
	}
	return price, &discount, nil
}

func newView(product models.Product) View {
	view := View{
		ID:            product.ID,
		SupplierID:    product.SupplierID,
		SKU:           product.SKU,
		Title:         product.Title,
		Description:   product.Description,
		Price:         product.Price,
		DiscountPrice: product.DiscountPrice,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
	if product.Inventory != nil {
		qty := product.Inventory.AvailableQty
		view.AvailableQty = &qty
	}
	return view
}

func buildListView(rows []models.Product, limit int) *ListView {
	view := &ListView{Products: make([]View, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		view.NextCursor = &next
	}
	for _, row := range rows {
		view.Products = append(view.Products, newView(row))
	}
	return view
}
