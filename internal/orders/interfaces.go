package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/pagination"
)

// Repository exposes persistence for master orders, sub-orders, and line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	NextOrderNumber(ctx context.Context) (int64, error)
	CreateMasterOrder(ctx context.Context, order *models.MasterOrder) (*models.MasterOrder, error)
	CreateSubOrders(ctx context.Context, subOrders []models.SubOrder) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error

	FindMasterOrder(ctx context.Context, id uuid.UUID) (*models.MasterOrder, error)
	FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error)
	FindSubOrdersByMaster(ctx context.Context, masterOrderID uuid.UUID) ([]models.SubOrder, error)
	FindOrderItemsBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]models.OrderItem, error)

	UpdateSubOrderFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	UpdateMasterOrderFields(ctx context.Context, id uuid.UUID, fields map[string]any) error

	ListMasterOrdersByCustomer(ctx context.Context, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.MasterOrder, error)
	ListSubOrdersBySupplier(ctx context.Context, supplierID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SubOrder, error)

	FindExpiredWindows(ctx context.Context, now time.Time, limit int) ([]models.MasterOrder, error)
}
