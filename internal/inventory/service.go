package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

// Line is one (product, quantity) pair in a stock adjustment batch.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// Shortfall reports a product that could not cover the requested quantity.
type Shortfall struct {
	ProductID uuid.UUID `json:"productId"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// Service applies stock decrements for confirmed sub-orders. All operations run
// inside the caller's transaction so a failure leaves every count untouched.
type Service struct {
	logg *logger.Logger
}

// NewService builds the inventory service.
func NewService(logg *logger.Logger) *Service {
	return &Service{logg: logg}
}

// Decrement validates that every line has sufficient stock and then applies the
// whole batch. Validation happens before any write; the guarded updates plus
// the caller's transaction make the batch all-or-nothing.
func (s *Service) Decrement(ctx context.Context, tx *gorm.DB, lines []Line) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if len(lines) == 0 {
		return nil
	}

	shortfalls, err := s.validate(ctx, tx, lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read inventory")
	}
	if len(shortfalls) > 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(shortfalls)
	}

	for _, line := range lines {
		res := tx.WithContext(ctx).
			Model(&models.InventoryItem{}).
			Where("product_id = ? AND available_qty >= ?", line.ProductID, line.Quantity).
			Update("available_qty", gorm.Expr("available_qty - ?", line.Quantity))
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement inventory")
		}
		if res.RowsAffected == 0 {
			// A concurrent writer drained the stock between validate and apply.
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails([]Shortfall{{ProductID: line.ProductID, Requested: line.Quantity}})
		}
	}
	return nil
}

// Restock returns quantities to the available pool, e.g. when a confirmed
// sub-order is cancelled.
func (s *Service) Restock(ctx context.Context, tx *gorm.DB, lines []Line) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	for _, line := range lines {
		err := tx.WithContext(ctx).
			Model(&models.InventoryItem{}).
			Where("product_id = ?", line.ProductID).
			Update("available_qty", gorm.Expr("available_qty + ?", line.Quantity)).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock inventory")
		}
	}
	return nil
}

func (s *Service) validate(ctx context.Context, tx *gorm.DB, lines []Line) ([]Shortfall, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	var items []models.InventoryItem
	if err := tx.WithContext(ctx).Where("product_id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	available := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		available[item.ProductID] = item.AvailableQty
	}

	shortfalls := []Shortfall{}
	for _, line := range lines {
		qty, tracked := available[line.ProductID]
		if !tracked || qty < line.Quantity {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: qty,
			})
		}
	}
	return shortfalls, nil
}
