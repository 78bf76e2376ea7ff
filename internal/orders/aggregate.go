package orders

import (
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
)

// AggregateStatus derives the master order status from the full sub-order set.
// Rules are evaluated top to bottom, first match wins:
//
//  1. all delivered            -> delivered
//  2. all cancelled            -> cancelled
//  3. any out_for_delivery     -> out_for_delivery
//  4. all at least confirmed   -> preparing
//  5. otherwise                -> pending
//
// Rule 4 deliberately collapses confirmed and preparing into one derived
// bucket; supplier-level granularity below preparing is not surfaced on the
// master record.
func AggregateStatus(subOrders []models.SubOrder) enums.OrderStatus {
	if len(subOrders) == 0 {
		return enums.OrderStatusPending
	}

	allDelivered := true
	allCancelled := true
	allConfirmedOrBeyond := true
	anyOutForDelivery := false

	for _, sub := range subOrders {
		if sub.Status != enums.OrderStatusDelivered {
			allDelivered = false
		}
		if sub.Status != enums.OrderStatusCancelled {
			allCancelled = false
		}
		if sub.Status == enums.OrderStatusOutForDelivery {
			anyOutForDelivery = true
		}
		switch sub.Status {
		case enums.OrderStatusConfirmed, enums.OrderStatusPreparing,
			enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered:
		default:
			allConfirmedOrBeyond = false
		}
	}

	switch {
	case allDelivered:
		return enums.OrderStatusDelivered
	case allCancelled:
		return enums.OrderStatusCancelled
	case anyOutForDelivery:
		return enums.OrderStatusOutForDelivery
	case allConfirmedOrBeyond:
		return enums.OrderStatusPreparing
	default:
		return enums.OrderStatusPending
	}
}

// AggregatePaymentStatus derives the master payment status from the sub-order set.
func AggregatePaymentStatus(subOrders []models.SubOrder) enums.PaymentStatus {
	if len(subOrders) == 0 {
		return enums.PaymentStatusPending
	}

	allPaid := true
	anyFailed := false
	anyRefunded := false

	for _, sub := range subOrders {
		if sub.PaymentStatus != enums.PaymentStatusPaid {
			allPaid = false
		}
		if sub.PaymentStatus == enums.PaymentStatusFailed {
			anyFailed = true
		}
		if sub.PaymentStatus == enums.PaymentStatusRefunded {
			anyRefunded = true
		}
	}

	switch {
	case allPaid:
		return enums.PaymentStatusPaid
	case anyFailed:
		return enums.PaymentStatusFailed
	case anyRefunded:
		return enums.PaymentStatusRefunded
	default:
		return enums.PaymentStatusPending
	}
}

var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:        {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:      {enums.OrderStatusPreparing, enums.OrderStatusCancelled},
	enums.OrderStatusPreparing:      {enums.OrderStatusOutForDelivery},
	enums.OrderStatusOutForDelivery: {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:      {},
	enums.OrderStatusCancelled:      {},
}

// CanTransition reports whether a sub-order may move from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
