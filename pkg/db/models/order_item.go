package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is the immutable line snapshot captured at checkout.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubOrderID   uuid.UUID       `gorm:"column:sub_order_id;type:uuid;not null"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SupplierID   uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null"`
	Title        string          `gorm:"column:title;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	UnitDiscount decimal.Decimal `gorm:"column:unit_discount;type:numeric(12,2);not null;default:0"`
	Quantity     int             `gorm:"column:quantity;not null"`
	LineSubtotal decimal.Decimal `gorm:"column:line_subtotal;type:numeric(12,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
