package orders

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	"github.com/dukkanhq/dukkan-backend/pkg/types"
)

func TestNewSubOrderViewCarriesFulfillmentFields(t *testing.T) {
	t.Parallel()
	phone := "+90 555 000 00 00"
	notes := "ring the bell twice"
	address := types.Address{
		Line1:      "Mesrutiyet Cd. 12",
		City:       "Istanbul",
		PostalCode: "34430",
		Country:    "TR",
	}
	sub := models.SubOrder{
		ID:              uuid.New(),
		MasterOrderID:   uuid.New(),
		SupplierID:      uuid.New(),
		SupplierName:    "Cheese Co",
		CustomerID:      uuid.New(),
		CustomerName:    "Ada Buyer",
		CustomerPhone:   &phone,
		DeliveryAddress: &address,
		Notes:           &notes,
		PaymentMethod:   enums.PaymentMethodCashOnDelivery,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		Currency:        enums.CurrencyEUR,
	}

	view := NewSubOrderView(sub, nil)

	if view.CustomerID != sub.CustomerID || view.CustomerName != "Ada Buyer" {
		t.Fatalf("customer fields not mapped: %+v", view)
	}
	if view.CustomerPhone == nil || *view.CustomerPhone != phone {
		t.Fatalf("customer phone not mapped: %v", view.CustomerPhone)
	}
	if view.DeliveryAddress == nil || view.DeliveryAddress.City != "Istanbul" {
		t.Fatalf("delivery address not mapped: %v", view.DeliveryAddress)
	}
	if view.OrderNotes == nil || *view.OrderNotes != notes {
		t.Fatalf("order notes not mapped: %v", view.OrderNotes)
	}
	if view.PaymentMethod != enums.PaymentMethodCashOnDelivery {
		t.Fatalf("payment method not mapped: %s", view.PaymentMethod)
	}
}

func TestNewServiceRequiresLogger(t *testing.T) {
	t.Parallel()
	_, err := NewService(&stubOrdersRepo{}, stubTxRunner{}, &stubOutbox{}, &stubStock{}, &stubCart{}, &stubWindow{}, nil)
	if err == nil {
		t.Fatal("expected error for nil logger")
	}
}
