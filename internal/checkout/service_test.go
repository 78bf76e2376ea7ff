package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/internal/checkout/window"
	"github.com/dukkanhq/dukkan-backend/internal/orders"
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox"
	"github.com/dukkanhq/dukkan-backend/pkg/pagination"
	"github.com/dukkanhq/dukkan-backend/pkg/types"
)

type stubCheckoutRepo struct {
	nextNumber int64
	master     *models.MasterOrder
	subs       []models.SubOrder
	items      []models.OrderItem
}

func (s *stubCheckoutRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubCheckoutRepo) NextOrderNumber(ctx context.Context) (int64, error) {
	s.nextNumber++
	return s.nextNumber, nil
}

func (s *stubCheckoutRepo) CreateMasterOrder(ctx context.Context, order *models.MasterOrder) (*models.MasterOrder, error) {
	s.master = order
	return order, nil
}

func (s *stubCheckoutRepo) CreateSubOrders(ctx context.Context, subOrders []models.SubOrder) error {
	s.subs = append(s.subs, subOrders...)
	return nil
}

func (s *stubCheckoutRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubCheckoutRepo) FindMasterOrder(ctx context.Context, id uuid.UUID) (*models.MasterOrder, error) {
	if s.master == nil || s.master.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.master, nil
}

func (s *stubCheckoutRepo) FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error) {
	panic("not implemented")
}

func (s *stubCheckoutRepo) FindSubOrdersByMaster(ctx context.Context, masterOrderID uuid.UUID) ([]models.SubOrder, error) {
	out := make([]models.SubOrder, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.MasterOrderID == masterOrderID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *stubCheckoutRepo) FindOrderItemsBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]models.OrderItem, error) {
	out := make([]models.OrderItem, 0, len(s.items))
	for _, item := range s.items {
		if item.SubOrderID == subOrderID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubCheckoutRepo) UpdateSubOrderFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	panic("not implemented")
}

func (s *stubCheckoutRepo) UpdateMasterOrderFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	panic("not implemented")
}

func (s *stubCheckoutRepo) ListMasterOrdersByCustomer(ctx context.Context, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.MasterOrder, error) {
	panic("not implemented")
}

func (s *stubCheckoutRepo) ListSubOrdersBySupplier(ctx context.Context, supplierID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SubOrder, error) {
	panic("not implemented")
}

func (s *stubCheckoutRepo) FindExpiredWindows(ctx context.Context, now time.Time, limit int) ([]models.MasterOrder, error) {
	panic("not implemented")
}

type stubCheckoutTx struct{}

func (stubCheckoutTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubSupplierDir struct {
	names map[uuid.UUID]string
}

func (s *stubSupplierDir) ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if s.names == nil {
		return map[uuid.UUID]string{}, nil
	}
	return s.names, nil
}

type stubFinalizer struct {
	mu     sync.Mutex
	inputs []orders.FinalizeMasterOrderInput
	done   chan struct{}
}

func (s *stubFinalizer) FinalizeMasterOrder(ctx context.Context, input orders.FinalizeMasterOrderInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, input)
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	return nil
}

func validAddress() types.Address {
	return types.Address{
		Line1:      "Mesrutiyet Cd. 12",
		City:       "Istanbul",
		PostalCode: "34430",
		Country:    "TR",
	}
}

func checkoutInput(customerID uuid.UUID) PlaceOrderInput {
	return PlaceOrderInput{
		CustomerID:    customerID,
		CustomerName:  "Ada Buyer",
		CustomerEmail: "ada@example.com",
		Address:       validAddress(),
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
		Currency:      enums.CurrencyEUR,
		DeliveryFee:   dec("5.00"),
		Tax:           dec("4.50"),
		PromoDiscount: decimal.Zero,
	}
}

func TestPlaceOrderFansOutAcrossSuppliers(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	supplierA := uuid.New()
	supplierB := uuid.New()

	productA1 := activeProduct(supplierA, "10.00")
	productA2 := activeProduct(supplierA, "5.00")
	productB := activeProduct(supplierB, "20.00")

	cart := &stubCartReader{items: []models.CartItem{
		{CustomerID: customerID, ProductID: productA1.ID, Quantity: 2}, // 20.00
		{CustomerID: customerID, ProductID: productB.ID, Quantity: 1},  // 20.00
		{CustomerID: customerID, ProductID: productA2.ID, Quantity: 1}, // 5.00
	}}
	catalog := &stubCatalog{products: []models.Product{productA1, productA2, productB}}
	repo := &stubCheckoutRepo{}
	emitter := &stubEmitter{}
	windows := window.NewController(logger.New(logger.Options{ServiceName: "test"}))
	finalizer := &stubFinalizer{}

	svc, err := NewService(
		repo,
		stubCheckoutTx{},
		emitter,
		cart,
		catalog,
		&stubSupplierDir{names: map[uuid.UUID]string{supplierA: "Supplier A", supplierB: "Supplier B"}},
		windows,
		finalizer,
		time.Hour,
		logger.New(logger.Options{ServiceName: "test"}),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	view, err := svc.PlaceOrder(context.Background(), checkoutInput(customerID))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if view.SupplierCount != 2 {
		t.Fatalf("expected 2 suppliers, got %d", view.SupplierCount)
	}
	if len(view.SubOrders) != 2 {
		t.Fatalf("expected 2 sub-orders, got %d", len(view.SubOrders))
	}

	// Master totals come from the snapshot and the quoted shared costs, verbatim.
	if !view.Subtotal.Equal(dec("45.00")) {
		t.Fatalf("expected master subtotal 45.00, got %s", view.Subtotal)
	}
	if !view.Total.Equal(dec("54.50")) {
		t.Fatalf("expected master total 54.50, got %s", view.Total)
	}

	// Partition completeness: every cart line appears on exactly one sub-order.
	if len(repo.items) != 3 {
		t.Fatalf("expected 3 order items, got %d", len(repo.items))
	}
	seen := map[uuid.UUID]int{}
	for _, item := range repo.items {
		seen[item.ProductID]++
	}
	for _, product := range []models.Product{productA1, productA2, productB} {
		if seen[product.ID] != 1 {
			t.Fatalf("product %s mapped %d times", product.ID, seen[product.ID])
		}
	}

	// Shared cost shares sum exactly to the quoted amounts.
	feeSum, taxSum := decimal.Zero, decimal.Zero
	subtotalSum := decimal.Zero
	for _, sub := range repo.subs {
		feeSum = feeSum.Add(sub.DeliveryFeeShare)
		taxSum = taxSum.Add(sub.TaxShare)
		subtotalSum = subtotalSum.Add(sub.Subtotal)
		if sub.Status != enums.OrderStatusPending {
			t.Fatalf("expected pending sub-order, got %s", sub.Status)
		}
	}
	if !feeSum.Equal(dec("5.00")) || !taxSum.Equal(dec("4.50")) {
		t.Fatalf("shares do not sum to quoted amounts: fee %s tax %s", feeSum, taxSum)
	}
	if !subtotalSum.Equal(dec("45.00")) {
		t.Fatalf("sub-order subtotals sum to %s, want 45.00", subtotalSum)
	}

	// Supplier A carries 25/45 of the shared costs, supplier B the remainder.
	for _, sub := range repo.subs {
		switch sub.SupplierID {
		case supplierA:
			if !sub.DeliveryFeeShare.Equal(dec("2.78")) || !sub.TaxShare.Equal(dec("2.50")) {
				t.Fatalf("supplierA shares: fee %s tax %s", sub.DeliveryFeeShare, sub.TaxShare)
			}
			if sub.SupplierName != "Supplier A" {
				t.Fatalf("unexpected supplier name %q", sub.SupplierName)
			}
		case supplierB:
			if !sub.DeliveryFeeShare.Equal(dec("2.22")) || !sub.TaxShare.Equal(dec("2.00")) {
				t.Fatalf("supplierB shares: fee %s tax %s", sub.DeliveryFeeShare, sub.TaxShare)
			}
		default:
			t.Fatalf("unexpected supplier %s", sub.SupplierID)
		}
	}

	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderPlaced {
		t.Fatalf("expected one order-placed event, got %+v", emitter.events)
	}
	if repo.master.CancelWindowExpiresAt == nil {
		t.Fatal("expected cancel window expiry to be stamped")
	}
	if !windows.Claim(view.ID) {
		t.Fatal("expected the cancellation window to be armed")
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	t.Parallel()
	svc := newCheckoutService(t, &stubCartReader{}, &stubCatalog{})

	_, err := svc.PlaceOrder(context.Background(), checkoutInput(uuid.New()))
	if err == nil {
		t.Fatal("expected validation error for empty cart")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	product := activeProduct(uuid.New(), "10.00")
	cart := &stubCartReader{items: []models.CartItem{
		{CustomerID: customerID, ProductID: product.ID, Quantity: 1},
	}}
	svc := newCheckoutService(t, cart, &stubCatalog{products: []models.Product{product}})

	cases := []struct {
		name   string
		mutate func(*PlaceOrderInput)
	}{
		{"unknown currency", func(in *PlaceOrderInput) { in.Currency = "XXX" }},
		{"unknown payment method", func(in *PlaceOrderInput) { in.PaymentMethod = "barter" }},
		{"negative delivery fee", func(in *PlaceOrderInput) { in.DeliveryFee = dec("-1.00") }},
		{"missing customer name", func(in *PlaceOrderInput) { in.CustomerName = "" }},
		{"missing address city", func(in *PlaceOrderInput) { in.Address.City = "" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			input := checkoutInput(customerID)
			tc.mutate(&input)
			_, err := svc.PlaceOrder(context.Background(), input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPlaceOrderUnknownSupplierFallbackName(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	product := activeProduct(uuid.New(), "10.00")
	cart := &stubCartReader{items: []models.CartItem{
		{CustomerID: customerID, ProductID: product.ID, Quantity: 1},
	}}
	repo := &stubCheckoutRepo{}
	windows := window.NewController(logger.New(logger.Options{ServiceName: "test"}))

	svc, err := NewService(
		repo,
		stubCheckoutTx{},
		&stubEmitter{},
		cart,
		&stubCatalog{products: []models.Product{product}},
		&stubSupplierDir{},
		windows,
		&stubFinalizer{},
		time.Hour,
		logger.New(logger.Options{ServiceName: "test"}),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	view, err := svc.PlaceOrder(context.Background(), checkoutInput(customerID))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if len(repo.subs) != 1 || repo.subs[0].SupplierName != unknownSupplierName {
		t.Fatalf("expected fallback supplier name, got %+v", repo.subs)
	}
	if view.SupplierCount != 1 {
		t.Fatalf("expected supplier count 1, got %d", view.SupplierCount)
	}
	sub := repo.subs[0]
	if !sub.Subtotal.Equal(repo.master.Subtotal) {
		t.Fatalf("sub subtotal %s != master subtotal %s", sub.Subtotal, repo.master.Subtotal)
	}
	if !sub.Total.Equal(repo.master.Total) {
		t.Fatalf("sub total %s != master total %s", sub.Total, repo.master.Total)
	}
}

func TestPlaceOrderCopiesFulfillmentFieldsOntoSubOrders(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	supplierA := uuid.New()
	supplierB := uuid.New()
	productA := activeProduct(supplierA, "10.00")
	productB := activeProduct(supplierB, "20.00")
	cart := &stubCartReader{items: []models.CartItem{
		{CustomerID: customerID, ProductID: productA.ID, Quantity: 1},
		{CustomerID: customerID, ProductID: productB.ID, Quantity: 1},
	}}
	repo := &stubCheckoutRepo{}

	svc, err := NewService(
		repo,
		stubCheckoutTx{},
		&stubEmitter{},
		cart,
		&stubCatalog{products: []models.Product{productA, productB}},
		&stubSupplierDir{names: map[uuid.UUID]string{supplierA: "Supplier A", supplierB: "Supplier B"}},
		window.NewController(logger.New(logger.Options{ServiceName: "test"})),
		&stubFinalizer{},
		time.Hour,
		logger.New(logger.Options{ServiceName: "test"}),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	phone := "+90 555 000 00 00"
	notes := "leave at the door"
	input := checkoutInput(customerID)
	input.CustomerPhone = &phone
	input.Notes = &notes

	view, err := svc.PlaceOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if len(repo.subs) != 2 {
		t.Fatalf("expected 2 sub-orders, got %d", len(repo.subs))
	}
	for _, sub := range repo.subs {
		if sub.CustomerID != customerID || sub.CustomerName != "Ada Buyer" {
			t.Fatalf("customer not copied onto sub-order: %+v", sub)
		}
		if sub.CustomerPhone == nil || *sub.CustomerPhone != phone {
			t.Fatalf("customer phone not copied: %v", sub.CustomerPhone)
		}
		if sub.DeliveryAddress == nil || sub.DeliveryAddress.City != "Istanbul" {
			t.Fatalf("delivery address not copied: %v", sub.DeliveryAddress)
		}
		if sub.Notes == nil || *sub.Notes != notes {
			t.Fatalf("notes not copied: %v", sub.Notes)
		}
		if sub.PaymentMethod != enums.PaymentMethodCashOnDelivery {
			t.Fatalf("payment method not copied: %s", sub.PaymentMethod)
		}
	}
	for _, sub := range view.SubOrders {
		if sub.CustomerName != "Ada Buyer" || sub.DeliveryAddress == nil {
			t.Fatalf("sub-order view missing fulfillment fields: %+v", sub)
		}
		if sub.PaymentMethod != enums.PaymentMethodCashOnDelivery {
			t.Fatalf("sub-order view missing payment method: %+v", sub)
		}
	}
}

func TestPlaceOrderWindowExpiryFinalizes(t *testing.T) {
	t.Parallel()
	customerID := uuid.New()
	product := activeProduct(uuid.New(), "10.00")
	cart := &stubCartReader{items: []models.CartItem{
		{CustomerID: customerID, ProductID: product.ID, Quantity: 1},
	}}
	repo := &stubCheckoutRepo{}
	windows := window.NewController(logger.New(logger.Options{ServiceName: "test"}))
	finalizer := &stubFinalizer{done: make(chan struct{})}
	done := finalizer.done

	svc, err := NewService(
		repo,
		stubCheckoutTx{},
		&stubEmitter{},
		cart,
		&stubCatalog{products: []models.Product{product}},
		&stubSupplierDir{},
		windows,
		finalizer,
		15*time.Millisecond,
		logger.New(logger.Options{ServiceName: "test"}),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	view, err := svc.PlaceOrder(context.Background(), checkoutInput(customerID))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("window expiry never reached the finalizer")
	}

	finalizer.mu.Lock()
	defer finalizer.mu.Unlock()
	if len(finalizer.inputs) != 1 {
		t.Fatalf("expected one finalize call, got %d", len(finalizer.inputs))
	}
	if finalizer.inputs[0].MasterOrderID != view.ID || !finalizer.inputs[0].System {
		t.Fatalf("unexpected finalize input %+v", finalizer.inputs[0])
	}
}

func newCheckoutService(t *testing.T, cart CartReader, catalog ProductCatalog) Service {
	t.Helper()
	windows := window.NewController(logger.New(logger.Options{ServiceName: "test"}))
	svc, err := NewService(
		&stubCheckoutRepo{},
		stubCheckoutTx{},
		&stubEmitter{},
		cart,
		catalog,
		&stubSupplierDir{},
		windows,
		&stubFinalizer{},
		time.Hour,
		logger.New(logger.Options{ServiceName: "test"}),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}
