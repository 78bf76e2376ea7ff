package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	"github.com/dukkanhq/dukkan-backend/pkg/types"
)

// SubOrder is the per-supplier slice of a master order. SupplierID is uuid.Nil
// when the line items could not be attributed to a known supplier. Customer,
// payment method, delivery address and notes are duplicated from the master so
// the supplier panel can serve a sub-order without joining the master row.
type SubOrder struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MasterOrderID    uuid.UUID           `gorm:"column:master_order_id;type:uuid;not null"`
	SupplierID       uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null"`
	SupplierName     string              `gorm:"column:supplier_name;not null"`
	CustomerID       uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	CustomerName     string              `gorm:"column:customer_name;not null"`
	CustomerPhone    *string             `gorm:"column:customer_phone"`
	DeliveryAddress  *types.Address      `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	Notes            *string             `gorm:"column:notes"`
	Currency         enums.Currency      `gorm:"column:currency;type:text;not null;default:'EUR'"`
	Status           enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'cash_on_delivery'"`
	Subtotal         decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryFeeShare decimal.Decimal     `gorm:"column:delivery_fee_share;type:numeric(12,2);not null;default:0"`
	TaxShare         decimal.Decimal     `gorm:"column:tax_share;type:numeric(12,2);not null;default:0"`
	DiscountShare    decimal.Decimal     `gorm:"column:discount_share;type:numeric(12,2);not null;default:0"`
	Total            decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	ConfirmedAt      *time.Time          `gorm:"column:confirmed_at"`
	DeliveredAt      *time.Time          `gorm:"column:delivered_at"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at"`
	Items            []OrderItem         `gorm:"foreignKey:SubOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
