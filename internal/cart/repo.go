package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
)

// Repository persists cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error)
	Upsert(ctx context.Context, item *models.CartItem) error
	DeleteLine(ctx context.Context, customerID, productID uuid.UUID) error
	DeleteByCustomer(ctx context.Context, customerID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) Upsert(ctx context.Context, item *models.CartItem) error {
	var existing models.CartItem
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", item.CustomerID, item.ProductID).
		First(&existing).Error
	if err == nil {
		return r.db.WithContext(ctx).
			Model(&models.CartItem{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"quantity":      item.Quantity,
				"unit_price":    item.UnitPrice,
				"unit_discount": item.UnitDiscount,
				"title":         item.Title,
			}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) DeleteLine(ctx context.Context, customerID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) DeleteByCustomer(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&models.CartItem{}).Error
}
