package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	"github.com/dukkanhq/dukkan-backend/pkg/types"
)

// OrderItemView is the wire shape of one order line.
type OrderItemView struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"productId"`
	Title        string          `json:"productName"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	UnitDiscount decimal.Decimal `json:"discount"`
	Quantity     int             `json:"quantity"`
	LineSubtotal decimal.Decimal `json:"totalPrice"`
}

// SubOrderView is the wire shape of a per-supplier order slice. Field names are
// a stable contract consumed by the storefront and supplier panel. Customer and
// delivery fields are the denormalized copies carried on the sub-order row, so
// the panel never needs the master record to fulfill an order.
type SubOrderView struct {
	ID              uuid.UUID           `json:"id"`
	MasterOrderID   uuid.UUID           `json:"masterOrderId"`
	SupplierID      *uuid.UUID          `json:"supplierId"`
	SupplierName    string              `json:"supplierName"`
	CustomerID      uuid.UUID           `json:"customerId"`
	CustomerName    string              `json:"customerName"`
	CustomerPhone   *string             `json:"customerPhone,omitempty"`
	DeliveryAddress *types.Address      `json:"deliveryAddress,omitempty"`
	OrderNotes      *string             `json:"orderNotes,omitempty"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"paymentStatus"`
	Currency        enums.Currency      `json:"currency"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DeliveryFee     decimal.Decimal     `json:"deliveryFee"`
	Tax             decimal.Decimal     `json:"tax"`
	PromoDiscount   decimal.Decimal     `json:"promoDiscount"`
	Total           decimal.Decimal     `json:"total"`
	Items           []OrderItemView     `json:"items,omitempty"`
	ConfirmedAt     *time.Time          `json:"confirmedAt,omitempty"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time          `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// MasterOrderView is the wire shape of the umbrella order.
type MasterOrderView struct {
	ID                    uuid.UUID           `json:"id"`
	OrderNumber           int64               `json:"orderNumber"`
	CustomerID            uuid.UUID           `json:"customerId"`
	CustomerName          string              `json:"customerName"`
	CustomerPhone         *string             `json:"customerPhone,omitempty"`
	DeliveryAddress       *types.Address      `json:"deliveryAddress,omitempty"`
	Status                enums.OrderStatus   `json:"status"`
	PaymentStatus         enums.PaymentStatus `json:"paymentStatus"`
	PaymentMethod         enums.PaymentMethod `json:"paymentMethod"`
	Currency              enums.Currency      `json:"currency"`
	Subtotal              decimal.Decimal     `json:"subtotal"`
	DeliveryFee           decimal.Decimal     `json:"deliveryFee"`
	Tax                   decimal.Decimal     `json:"tax"`
	PromoDiscount         decimal.Decimal     `json:"promoDiscount"`
	Total                 decimal.Decimal     `json:"total"`
	SubOrderIDs           []uuid.UUID         `json:"subOrderIds"`
	SupplierCount         int                 `json:"supplierCount"`
	OrderNotes            *string             `json:"orderNotes,omitempty"`
	ConfirmedAt           *time.Time          `json:"confirmedAt,omitempty"`
	DeliveredAt           *time.Time          `json:"deliveredAt,omitempty"`
	CancelledAt           *time.Time          `json:"cancelledAt,omitempty"`
	CancelWindowExpiresAt *time.Time          `json:"cancelWindowExpiresAt,omitempty"`
	FinalizedAt           *time.Time          `json:"finalizedAt,omitempty"`
	SubOrders             []SubOrderView      `json:"subOrders,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
}

// OrderListView carries one page of orders plus the next cursor.
type OrderListView struct {
	Orders     []MasterOrderView `json:"orders"`
	NextCursor *string           `json:"nextCursor,omitempty"`
}

// SupplierOrderListView carries one supplier page of sub-orders.
type SupplierOrderListView struct {
	Orders     []SubOrderView `json:"orders"`
	NextCursor *string        `json:"nextCursor,omitempty"`
}

func newOrderItemView(item models.OrderItem) OrderItemView {
	return OrderItemView{
		ID:           item.ID,
		ProductID:    item.ProductID,
		Title:        item.Title,
		UnitPrice:    item.UnitPrice,
		UnitDiscount: item.UnitDiscount,
		Quantity:     item.Quantity,
		LineSubtotal: item.LineSubtotal,
	}
}

// NewSubOrderView maps the persisted sub-order onto its wire shape. A nil
// supplierId marks lines that could not be attributed to a known supplier.
func NewSubOrderView(sub models.SubOrder, items []models.OrderItem) SubOrderView {
	view := SubOrderView{
		ID:              sub.ID,
		MasterOrderID:   sub.MasterOrderID,
		SupplierName:    sub.SupplierName,
		CustomerID:      sub.CustomerID,
		CustomerName:    sub.CustomerName,
		CustomerPhone:   sub.CustomerPhone,
		DeliveryAddress: sub.DeliveryAddress,
		OrderNotes:      sub.Notes,
		PaymentMethod:   sub.PaymentMethod,
		Status:          sub.Status,
		PaymentStatus:   sub.PaymentStatus,
		Currency:        sub.Currency,
		Subtotal:        sub.Subtotal,
		DeliveryFee:     sub.DeliveryFeeShare,
		Tax:             sub.TaxShare,
		PromoDiscount:   sub.DiscountShare,
		Total:           sub.Total,
		ConfirmedAt:     sub.ConfirmedAt,
		DeliveredAt:     sub.DeliveredAt,
		CancelledAt:     sub.CancelledAt,
		CreatedAt:       sub.CreatedAt,
		UpdatedAt:       sub.UpdatedAt,
	}
	if sub.SupplierID != uuid.Nil {
		supplierID := sub.SupplierID
		view.SupplierID = &supplierID
	}
	for _, item := range items {
		view.Items = append(view.Items, newOrderItemView(item))
	}
	return view
}

// NewMasterOrderView maps the persisted master order onto its wire shape.
func NewMasterOrderView(order models.MasterOrder, subOrders []SubOrderView) MasterOrderView {
	return MasterOrderView{
		ID:                    order.ID,
		OrderNumber:           order.OrderNumber,
		CustomerID:            order.CustomerID,
		CustomerName:          order.CustomerName,
		CustomerPhone:         order.CustomerPhone,
		DeliveryAddress:       order.DeliveryAddress,
		Status:                order.Status,
		PaymentStatus:         order.PaymentStatus,
		PaymentMethod:         order.PaymentMethod,
		Currency:              order.Currency,
		Subtotal:              order.Subtotal,
		DeliveryFee:           order.DeliveryFee,
		Tax:                   order.Tax,
		PromoDiscount:         order.Discount,
		Total:                 order.Total,
		SubOrderIDs:           order.SubOrderIDs,
		SupplierCount:         order.SupplierCount,
		OrderNotes:            order.Notes,
		ConfirmedAt:           order.ConfirmedAt,
		DeliveredAt:           order.DeliveredAt,
		CancelledAt:           order.CancelledAt,
		CancelWindowExpiresAt: order.CancelWindowExpiresAt,
		FinalizedAt:           order.FinalizedAt,
		SubOrders:             subOrders,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
}
