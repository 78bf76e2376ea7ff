package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/internal/inventory"
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox/payloads"
	"github.com/dukkanhq/dukkan-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StockAdjuster applies all-or-nothing stock movements inside the caller's
// transaction.
type StockAdjuster interface {
	Decrement(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error
	Restock(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error
}

// CartClearer empties the customer's cart when an order is finalized.
type CartClearer interface {
	ClearTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) error
}

// WindowResolver lets a cancel/finalize action claim the in-process
// cancellation window so the competing timer becomes a no-op.
type WindowResolver interface {
	Claim(orderID uuid.UUID) bool
}

// Service defines order lifecycle operations past placement.
type Service interface {
	UpdateSubOrderStatus(ctx context.Context, input UpdateSubOrderStatusInput) (*SubOrderView, error)
	UpdateSubOrderPayment(ctx context.Context, input UpdateSubOrderPaymentInput) (*SubOrderView, error)
	CancelMasterOrder(ctx context.Context, input CancelMasterOrderInput) error
	FinalizeMasterOrder(ctx context.Context, input FinalizeMasterOrderInput) error
	Reaggregate(ctx context.Context, masterOrderID uuid.UUID) error

	GetMasterOrder(ctx context.Context, customerID, orderID uuid.UUID) (*MasterOrderView, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderListView, error)
	GetSupplierSubOrder(ctx context.Context, supplierID, subOrderID uuid.UUID) (*SubOrderView, error)
	ListSupplierOrders(ctx context.Context, supplierID uuid.UUID, params pagination.Params) (*SupplierOrderListView, error)
}

// UpdateSubOrderStatusInput captures a supplier panel fulfillment transition.
type UpdateSubOrderStatusInput struct {
	SubOrderID      uuid.UUID
	Target          enums.OrderStatus
	ActorUserID     uuid.UUID
	ActorSupplierID uuid.UUID
	ActorRole       string
}

// UpdateSubOrderPaymentInput captures a supplier panel payment update.
type UpdateSubOrderPaymentInput struct {
	SubOrderID      uuid.UUID
	Target          enums.PaymentStatus
	ActorUserID     uuid.UUID
	ActorSupplierID uuid.UUID
	ActorRole       string
}

// CancelMasterOrderInput captures a customer cancellation inside the window.
type CancelMasterOrderInput struct {
	MasterOrderID uuid.UUID
	ActorUserID   uuid.UUID
	Reason        string
}

// FinalizeMasterOrderInput resolves the cancellation window in favor of the
// order. System marks sweep/timer invocations that bypass the ownership check.
type FinalizeMasterOrderInput struct {
	MasterOrderID uuid.UUID
	ActorUserID   uuid.UUID
	System        bool
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	stock  StockAdjuster
	cart   CartClearer
	window WindowResolver
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the order lifecycle service. The window resolver is
// optional; processes without an in-memory window (cron worker) pass nil.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, stock StockAdjuster, cart CartClearer, window WindowResolver, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock adjuster required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		stock:  stock,
		cart:   cart,
		window: window,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func (s *service) UpdateSubOrderStatus(ctx context.Context, input UpdateSubOrderStatusInput) (*SubOrderView, error) {
	if input.SubOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub-order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var view SubOrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sub, err := repo.FindSubOrder(ctx, input.SubOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-order")
		}
		if err := s.authorizeSupplier(sub, input.ActorSupplierID, input.ActorRole); err != nil {
			return err
		}

		previous := sub.Status
		if previous == input.Target {
			view = NewSubOrderView(*sub, nil)
			return nil
		}
		if !CanTransition(previous, input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition disallowed").
				WithDetails(map[string]string{
					"from": previous.String(),
					"to":   input.Target.String(),
				})
		}

		items, err := repo.FindOrderItemsBySubOrder(ctx, sub.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}

		now := s.now()
		if input.Target == enums.OrderStatusConfirmed {
			if err := s.stock.Decrement(ctx, tx, stockLines(items)); err != nil {
				return err
			}
		}
		if input.Target == enums.OrderStatusCancelled && previous == enums.OrderStatusConfirmed {
			if err := s.stock.Restock(ctx, tx, stockLines(items)); err != nil {
				return err
			}
		}

		fields := map[string]any{"status": input.Target}
		if input.Target == enums.OrderStatusConfirmed && sub.ConfirmedAt == nil {
			fields["confirmed_at"] = now
			sub.ConfirmedAt = &now
		}
		if input.Target == enums.OrderStatusDelivered && sub.DeliveredAt == nil {
			fields["delivered_at"] = now
			sub.DeliveredAt = &now
		}
		if input.Target == enums.OrderStatusCancelled && sub.CancelledAt == nil {
			fields["cancelled_at"] = now
			sub.CancelledAt = &now
		}
		if err := repo.UpdateSubOrderFields(ctx, sub.ID, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sub-order status")
		}
		sub.Status = input.Target

		master, err := s.reaggregateTx(ctx, tx, sub.MasterOrderID, now)
		if err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventSubOrderStatusChanged,
			AggregateType: enums.AggregateSubOrder,
			AggregateID:   sub.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorSupplierID, input.ActorRole),
			Data: payloads.SubOrderStatusChangedEvent{
				SubOrderID:     sub.ID,
				MasterOrderID:  sub.MasterOrderID,
				SupplierID:     sub.SupplierID,
				CustomerID:     master.CustomerID,
				PreviousStatus: previous,
				Status:         input.Target,
				MasterStatus:   master.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit status event")
		}

		view = NewSubOrderView(*sub, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *service) UpdateSubOrderPayment(ctx context.Context, input UpdateSubOrderPaymentInput) (*SubOrderView, error) {
	if input.SubOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub-order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var view SubOrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sub, err := repo.FindSubOrder(ctx, input.SubOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-order")
		}
		if err := s.authorizeSupplier(sub, input.ActorSupplierID, input.ActorRole); err != nil {
			return err
		}
		if sub.PaymentStatus == input.Target {
			view = NewSubOrderView(*sub, nil)
			return nil
		}

		now := s.now()
		fields := map[string]any{"payment_status": input.Target}
		if err := repo.UpdateSubOrderFields(ctx, sub.ID, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sub-order payment")
		}
		sub.PaymentStatus = input.Target

		master, err := s.reaggregateTx(ctx, tx, sub.MasterOrderID, now)
		if err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventSubOrderPaymentSet,
			AggregateType: enums.AggregateSubOrder,
			AggregateID:   sub.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorSupplierID, input.ActorRole),
			Data: payloads.SubOrderPaymentChangedEvent{
				SubOrderID:          sub.ID,
				MasterOrderID:       sub.MasterOrderID,
				SupplierID:          sub.SupplierID,
				PaymentStatus:       input.Target,
				MasterPaymentStatus: master.PaymentStatus,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit payment event")
		}

		view = NewSubOrderView(*sub, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *service) CancelMasterOrder(ctx context.Context, input CancelMasterOrderInput) error {
	if input.MasterOrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	if s.window != nil {
		// Stops the expiry timer when this process armed it. Losing the claim
		// is not decisive on its own; the database state below is.
		s.window.Claim(input.MasterOrderID)
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		master, err := repo.FindMasterOrder(ctx, input.MasterOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load master order")
		}
		if master.CustomerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if master.CancelledAt != nil {
			return nil
		}
		if master.FinalizedAt != nil {
			// The window already resolved in favor of the order; the late
			// cancel is a silent no-op, not an error.
			s.logg.Info(ctx, "cancel after finalize ignored")
			return nil
		}
		if !master.Status.Cancellable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]string{"status": master.Status.String()})
		}

		subs, err := repo.FindSubOrdersByMaster(ctx, master.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-orders")
		}

		now := s.now()
		for _, sub := range subs {
			if sub.Status == enums.OrderStatusCancelled {
				continue
			}
			if !sub.Status.Cancellable() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "sub-order can no longer be cancelled").
					WithDetails(map[string]string{
						"subOrderId": sub.ID.String(),
						"status":     sub.Status.String(),
					})
			}
			if sub.Status == enums.OrderStatusConfirmed {
				items, err := repo.FindOrderItemsBySubOrder(ctx, sub.ID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
				}
				if err := s.stock.Restock(ctx, tx, stockLines(items)); err != nil {
					return err
				}
			}
			if err := repo.UpdateSubOrderFields(ctx, sub.ID, map[string]any{
				"status":       enums.OrderStatusCancelled,
				"cancelled_at": now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel sub-order")
			}
		}

		if err := repo.UpdateMasterOrderFields(ctx, master.ID, map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel master order")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateMasterOrder,
			AggregateID:   master.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, uuid.Nil, string(enums.RoleCustomer)),
			Data: payloads.OrderCancelledEvent{
				MasterOrderID: master.ID,
				CustomerID:    master.CustomerID,
				CancelledAt:   now,
				Reason:        input.Reason,
			},
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit cancel event")
		}
		return nil
	})
}

func (s *service) FinalizeMasterOrder(ctx context.Context, input FinalizeMasterOrderInput) error {
	if input.MasterOrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	if s.window != nil {
		s.window.Claim(input.MasterOrderID)
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		master, err := repo.FindMasterOrder(ctx, input.MasterOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load master order")
		}
		if !input.System && master.CustomerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if master.CancelledAt != nil || master.FinalizedAt != nil {
			return nil
		}

		now := s.now()
		if err := repo.UpdateMasterOrderFields(ctx, master.ID, map[string]any{
			"finalized_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize master order")
		}

		// The cart empties when the order becomes definitive, not at placement.
		if err := s.cart.ClearTx(ctx, tx, master.CustomerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderFinalized,
			AggregateType: enums.AggregateMasterOrder,
			AggregateID:   master.ID,
			Version:       1,
			Data: payloads.OrderFinalizedEvent{
				MasterOrderID: master.ID,
				CustomerID:    master.CustomerID,
				FinalizedAt:   now,
			},
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit finalize event")
		}
		return nil
	})
}

func (s *service) Reaggregate(ctx context.Context, masterOrderID uuid.UUID) error {
	if masterOrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.reaggregateTx(ctx, tx, masterOrderID, s.now())
		return err
	})
}

// reaggregateTx re-reads the full current sub-order set and rewrites the master
// status/payment status. Running it twice against an unchanged set writes
// nothing the second time.
func (s *service) reaggregateTx(ctx context.Context, tx *gorm.DB, masterOrderID uuid.UUID, now time.Time) (*models.MasterOrder, error) {
	repo := s.repo.WithTx(tx)
	master, err := repo.FindMasterOrder(ctx, masterOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load master order")
	}
	subs, err := repo.FindSubOrdersByMaster(ctx, masterOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-orders")
	}

	status := AggregateStatus(subs)
	paymentStatus := AggregatePaymentStatus(subs)

	fields := map[string]any{}
	if master.Status != status {
		fields["status"] = status
		if status == enums.OrderStatusCancelled && master.CancelledAt == nil {
			fields["cancelled_at"] = now
		}
	}
	if master.PaymentStatus != paymentStatus {
		fields["payment_status"] = paymentStatus
	}
	if master.ConfirmedAt == nil && statusConfirmedOrBeyond(status) {
		fields["confirmed_at"] = now
	}
	if master.DeliveredAt == nil && status == enums.OrderStatusDelivered {
		fields["delivered_at"] = now
	}

	master.Status = status
	master.PaymentStatus = paymentStatus
	if len(fields) == 0 {
		return master, nil
	}
	if err := repo.UpdateMasterOrderFields(ctx, masterOrderID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update master aggregate")
	}
	return master, nil
}

// statusConfirmedOrBeyond reports whether the derived master status implies
// every supplier has at least confirmed.
func statusConfirmedOrBeyond(status enums.OrderStatus) bool {
	switch status {
	case enums.OrderStatusPreparing, enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered:
		return true
	}
	return false
}

func (s *service) GetMasterOrder(ctx context.Context, customerID, orderID uuid.UUID) (*MasterOrderView, error) {
	master, err := s.repo.FindMasterOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load master order")
	}
	if master.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	subs, err := s.repo.FindSubOrdersByMaster(ctx, master.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-orders")
	}
	views := make([]SubOrderView, 0, len(subs))
	for _, sub := range subs {
		items, err := s.repo.FindOrderItemsBySubOrder(ctx, sub.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		views = append(views, NewSubOrderView(sub, items))
	}
	view := NewMasterOrderView(*master, views)
	return &view, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderListView, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListMasterOrdersByCustomer(ctx, customerID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	view := &OrderListView{Orders: make([]MasterOrderView, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		view.NextCursor = &next
	}
	for _, row := range rows {
		view.Orders = append(view.Orders, NewMasterOrderView(row, nil))
	}
	return view, nil
}

func (s *service) GetSupplierSubOrder(ctx context.Context, supplierID, subOrderID uuid.UUID) (*SubOrderView, error) {
	sub, err := s.repo.FindSubOrder(ctx, subOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-order")
	}
	if sub.SupplierID != supplierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sub-order does not belong to supplier")
	}
	items, err := s.repo.FindOrderItemsBySubOrder(ctx, sub.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	view := NewSubOrderView(*sub, items)
	return &view, nil
}

func (s *service) ListSupplierOrders(ctx context.Context, supplierID uuid.UUID, params pagination.Params) (*SupplierOrderListView, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListSubOrdersBySupplier(ctx, supplierID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sub-orders")
	}

	view := &SupplierOrderListView{Orders: make([]SubOrderView, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		view.NextCursor = &next
	}
	for _, row := range rows {
		view.Orders = append(view.Orders, NewSubOrderView(row, nil))
	}
	return view, nil
}

func (s *service) authorizeSupplier(sub *models.SubOrder, actorSupplierID uuid.UUID, role string) error {
	if role == string(enums.RoleAdmin) {
		return nil
	}
	if actorSupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing")
	}
	if sub.SupplierID != actorSupplierID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "sub-order does not belong to supplier")
	}
	return nil
}

func stockLines(items []models.OrderItem) []inventory.Line {
	lines := make([]inventory.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

func buildActor(userID, supplierID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	actor := &outbox.ActorRef{UserID: userID, Role: role}
	if supplierID != uuid.Nil {
		id := supplierID
		actor.SupplierID = &id
	}
	return actor
}
