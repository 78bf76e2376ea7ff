package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukkanhq/dukkan-backend/pkg/enums"
)

// OrderPlacedEvent signals a new checkout fanned out across suppliers.
type OrderPlacedEvent struct {
	MasterOrderID uuid.UUID       `json:"masterOrderId"`
	OrderNumber   int64           `json:"orderNumber"`
	CustomerID    uuid.UUID       `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	SubOrderIDs   []uuid.UUID     `json:"subOrderIds"`
	SupplierIDs   []uuid.UUID     `json:"supplierIds"`
	SupplierCount int             `json:"supplierCount"`
	Total         decimal.Decimal `json:"total"`
	Currency      enums.Currency  `json:"currency"`
}

// OrderFinalizedEvent is emitted when the cancellation window resolves in favor
// of the order, either by early confirmation or expiry.
type OrderFinalizedEvent struct {
	MasterOrderID uuid.UUID `json:"masterOrderId"`
	CustomerID    uuid.UUID `json:"customerId"`
	FinalizedAt   time.Time `json:"finalizedAt"`
}

// OrderCancelledEvent is emitted whenever a master order is cancelled.
type OrderCancelledEvent struct {
	MasterOrderID uuid.UUID `json:"masterOrderId"`
	CustomerID    uuid.UUID `json:"customerId"`
	CancelledAt   time.Time `json:"cancelledAt"`
	Reason        string    `json:"reason,omitempty"`
}

// SubOrderStatusChangedEvent reports a supplier-driven fulfillment transition.
type SubOrderStatusChangedEvent struct {
	SubOrderID     uuid.UUID         `json:"subOrderId"`
	MasterOrderID  uuid.UUID         `json:"masterOrderId"`
	SupplierID     uuid.UUID         `json:"supplierId"`
	CustomerID     uuid.UUID         `json:"customerId"`
	PreviousStatus enums.OrderStatus `json:"previousStatus"`
	Status         enums.OrderStatus `json:"status"`
	MasterStatus   enums.OrderStatus `json:"masterStatus"`
}

// SubOrderPaymentChangedEvent reports a supplier-driven payment update.
type SubOrderPaymentChangedEvent struct {
	SubOrderID          uuid.UUID           `json:"subOrderId"`
	MasterOrderID       uuid.UUID           `json:"masterOrderId"`
	SupplierID          uuid.UUID           `json:"supplierId"`
	PaymentStatus       enums.PaymentStatus `json:"paymentStatus"`
	MasterPaymentStatus enums.PaymentStatus `json:"masterPaymentStatus"`
}
