package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/pagination"
)

// Repository persists catalog listings and their inventory rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	FindBySupplierSKU(ctx context.Context, supplierID uuid.UUID, sku string) (*models.Product, error)
	ListActive(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Product, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Product, error)
	UpsertInventory(ctx context.Context, productID uuid.UUID, availableQty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Inventory").Create(product).Error
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventory").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *repository) FindBySupplierSKU(ctx context.Context, supplierID uuid.UUID, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND sku = ?", supplierID, sku).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListActive(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true)
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var products []models.Product
	err := query.
		Preload("Inventory").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID)
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var products []models.Product
	err := query.
		Preload("Inventory").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *repository) UpsertInventory(ctx context.Context, productID uuid.UUID, availableQty int) error {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ?", productID).
		Update("available_qty", availableQty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&models.InventoryItem{
		ProductID:    productID,
		AvailableQty: availableQty,
	}).Error
}
