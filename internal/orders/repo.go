package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) NextOrderNumber(ctx context.Context) (int64, error) {
	var number int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('order_number_seq')").Scan(&number).Error
	return number, err
}

func (r *repository) CreateMasterOrder(ctx context.Context, order *models.MasterOrder) (*models.MasterOrder, error) {
	if err := r.db.WithContext(ctx).Omit("SubOrders").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateSubOrders(ctx context.Context, subOrders []models.SubOrder) error {
	if len(subOrders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Items").Create(&subOrders).Error
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindMasterOrder(ctx context.Context, id uuid.UUID) (*models.MasterOrder, error) {
	var order models.MasterOrder
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error) {
	var subOrder models.SubOrder
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&subOrder).Error
	if err != nil {
		return nil, err
	}
	return &subOrder, nil
}

func (r *repository) FindSubOrdersByMaster(ctx context.Context, masterOrderID uuid.UUID) ([]models.SubOrder, error) {
	var subOrders []models.SubOrder
	err := r.db.WithContext(ctx).
		Where("master_order_id = ?", masterOrderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&subOrders).Error
	if err != nil {
		return nil, err
	}
	return subOrders, nil
}

func (r *repository) FindOrderItemsBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("sub_order_id = ?", subOrderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateSubOrderFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.SubOrder{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) UpdateMasterOrderFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.MasterOrder{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) ListMasterOrdersByCustomer(ctx context.Context, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.MasterOrder, error) {
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID)
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var orders []models.MasterOrder
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *repository) ListSubOrdersBySupplier(ctx context.Context, supplierID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SubOrder, error) {
	query := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID)
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var subOrders []models.SubOrder
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&subOrders).Error
	return subOrders, err
}

func (r *repository) FindExpiredWindows(ctx context.Context, now time.Time, limit int) ([]models.MasterOrder, error) {
	if limit <= 0 {
		limit = 100
	}
	var orders []models.MasterOrder
	err := r.db.WithContext(ctx).
		Where("cancel_window_expires_at IS NOT NULL").
		Where("cancel_window_expires_at < ?", now).
		Where("finalized_at IS NULL").
		Where("cancelled_at IS NULL").
		Order("cancel_window_expires_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
