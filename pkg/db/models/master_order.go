package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	"github.com/dukkanhq/dukkan-backend/pkg/types"
)

// MasterOrder is the umbrella record for one checkout, spanning every supplier
// involved. Totals are copied from the cart computation at placement time and
// never re-derived from the sub-order set.
type MasterOrder struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber           int64               `gorm:"column:order_number;not null"`
	CustomerID            uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	CustomerName          string              `gorm:"column:customer_name;not null"`
	CustomerPhone         *string             `gorm:"column:customer_phone"`
	DeliveryAddress       *types.Address      `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	Currency              enums.Currency      `gorm:"column:currency;type:text;not null;default:'EUR'"`
	Status                enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	PaymentMethod         enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'cash_on_delivery'"`
	Subtotal              decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryFee           decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	Tax                   decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Discount              decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total                 decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	SubOrderIDs           types.UUIDArray     `gorm:"column:sub_order_ids;type:uuid[];not null"`
	SupplierCount         int                 `gorm:"column:supplier_count;not null"`
	Notes                 *string             `gorm:"column:notes"`
	ConfirmedAt           *time.Time          `gorm:"column:confirmed_at"`
	DeliveredAt           *time.Time          `gorm:"column:delivered_at"`
	CancelledAt           *time.Time          `gorm:"column:cancelled_at"`
	CancelWindowExpiresAt *time.Time          `gorm:"column:cancel_window_expires_at"`
	FinalizedAt           *time.Time          `gorm:"column:finalized_at"`
	SubOrders             []SubOrder          `gorm:"foreignKey:MasterOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
