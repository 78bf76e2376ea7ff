package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/internal/checkout/helpers"
	"github.com/dukkanhq/dukkan-backend/internal/checkout/window"
	"github.com/dukkanhq/dukkan-backend/internal/orders"
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox/payloads"
	"github.com/dukkanhq/dukkan-backend/pkg/types"
)

const unknownSupplierName = "Unknown supplier"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SupplierDirectory resolves supplier ids to display names at placement time.
type SupplierDirectory interface {
	ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Finalizer resolves the cancellation window in favor of the order when the
// grace period expires.
type Finalizer interface {
	FinalizeMasterOrder(ctx context.Context, input orders.FinalizeMasterOrderInput) error
}

// PlaceOrderInput carries everything the storefront submits at checkout. The
// shared cost amounts come from the storefront's quoted totals and are copied
// onto the order verbatim.
type PlaceOrderInput struct {
	CustomerID    uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	Address       types.Address
	PaymentMethod enums.PaymentMethod
	Currency      enums.Currency
	DeliveryFee   decimal.Decimal
	Tax           decimal.Decimal
	PromoDiscount decimal.Decimal
	Notes         *string
}

// Service turns a cart into a master order fanned out across suppliers.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*orders.MasterOrderView, error)
}

type service struct {
	repo         orders.Repository
	tx           txRunner
	outbox       outboxPublisher
	cart         CartReader
	catalog      ProductCatalog
	suppliers    SupplierDirectory
	windows      *window.Controller
	finalizer    Finalizer
	cancelWindow time.Duration
	logg         *logger.Logger
	now          func() time.Time
}

// NewService builds the checkout service.
func NewService(
	repo orders.Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	cart CartReader,
	catalog ProductCatalog,
	suppliers SupplierDirectory,
	windows *window.Controller,
	finalizer Finalizer,
	cancelWindow time.Duration,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil || tx == nil || outboxSvc == nil {
		return nil, fmt.Errorf("orders repository, transaction runner and outbox required")
	}
	if cart == nil || catalog == nil || suppliers == nil {
		return nil, fmt.Errorf("cart, catalog and supplier directory required")
	}
	if windows == nil || finalizer == nil {
		return nil, fmt.Errorf("window controller and finalizer required")
	}
	if cancelWindow <= 0 {
		return nil, fmt.Errorf("cancel window must be positive")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		outbox:       outboxSvc,
		cart:         cart,
		catalog:      catalog,
		suppliers:    suppliers,
		windows:      windows,
		finalizer:    finalizer,
		cancelWindow: cancelWindow,
		logg:         logg,
		now:          time.Now,
	}, nil
}

// PlaceOrder snapshots the cart, partitions it by supplier, creates one
// sub-order per group plus the master order in a single transaction, and arms
// the cancellation window after commit. Master totals are copied from the cart
// computation, never re-derived by summing sub-order totals.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*orders.MasterOrderView, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	snapshot, err := BuildSnapshot(ctx, input.CustomerID, s.cart, s.catalog)
	if err != nil {
		return nil, err
	}
	groups := helpers.GroupBySupplier(snapshot.Lines)
	shares := helpers.SplitShared(groups, helpers.SharedCosts{
		DeliveryFee:   input.DeliveryFee,
		Tax:           input.Tax,
		PromoDiscount: input.PromoDiscount,
	})

	supplierIDs := make([]uuid.UUID, 0, len(groups))
	for _, group := range groups {
		if group.SupplierID != uuid.Nil {
			supplierIDs = append(supplierIDs, group.SupplierID)
		}
	}
	supplierNames, err := s.suppliers.ResolveNames(ctx, supplierIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve suppliers")
	}

	total := snapshot.Subtotal.
		Add(input.DeliveryFee).
		Add(input.Tax).
		Sub(input.PromoDiscount)
	now := s.now()
	expiresAt := now.Add(s.cancelWindow)

	var master models.MasterOrder
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		orderNumber, err := repo.NextOrderNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}

		masterID := uuid.New()
		subOrders := make([]models.SubOrder, 0, len(groups))
		items := make([]models.OrderItem, 0, len(snapshot.Lines))
		subOrderIDs := make(types.UUIDArray, 0, len(groups))

		for i, group := range groups {
			name := unknownSupplierName
			if resolved, ok := supplierNames[group.SupplierID]; ok {
				name = resolved
			}
			subTotal := group.Subtotal.
				Add(shares[i].DeliveryFee).
				Add(shares[i].Tax).
				Sub(shares[i].PromoDiscount)

			sub := models.SubOrder{
				ID:               uuid.New(),
				MasterOrderID:    masterID,
				SupplierID:       group.SupplierID,
				SupplierName:     name,
				CustomerID:       input.CustomerID,
				CustomerName:     input.CustomerName,
				CustomerPhone:    input.CustomerPhone,
				DeliveryAddress:  &input.Address,
				Notes:            input.Notes,
				Currency:         input.Currency,
				Status:           enums.OrderStatusPending,
				PaymentStatus:    enums.PaymentStatusPending,
				PaymentMethod:    input.PaymentMethod,
				Subtotal:         group.Subtotal,
				DeliveryFeeShare: shares[i].DeliveryFee,
				TaxShare:         shares[i].Tax,
				DiscountShare:    shares[i].PromoDiscount,
				Total:            subTotal,
			}
			subOrders = append(subOrders, sub)
			subOrderIDs = append(subOrderIDs, sub.ID)

			for _, line := range group.Lines {
				items = append(items, models.OrderItem{
					ID:           uuid.New(),
					SubOrderID:   sub.ID,
					ProductID:    line.ProductID,
					SupplierID:   line.SupplierID,
					Title:        line.Title,
					UnitPrice:    line.UnitPrice,
					UnitDiscount: line.UnitDiscount,
					Quantity:     line.Quantity,
					LineSubtotal: line.LineSubtotal,
				})
			}
		}

		if err := repo.CreateSubOrders(ctx, subOrders); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sub-orders")
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return s.partialWrite(ctx, input.CustomerID, subOrderIDs, err, "create order items")
		}

		master = models.MasterOrder{
			ID:                    masterID,
			OrderNumber:           orderNumber,
			CustomerID:            input.CustomerID,
			CustomerName:          input.CustomerName,
			CustomerPhone:         input.CustomerPhone,
			DeliveryAddress:       &input.Address,
			Currency:              input.Currency,
			Status:                enums.OrderStatusPending,
			PaymentStatus:         enums.PaymentStatusPending,
			PaymentMethod:         input.PaymentMethod,
			Subtotal:              snapshot.Subtotal,
			DeliveryFee:           input.DeliveryFee,
			Tax:                   input.Tax,
			Discount:              input.PromoDiscount,
			Total:                 total,
			SubOrderIDs:           subOrderIDs,
			SupplierCount:         len(groups),
			Notes:                 input.Notes,
			CancelWindowExpiresAt: &expiresAt,
		}
		if _, err := repo.CreateMasterOrder(ctx, &master); err != nil {
			return s.partialWrite(ctx, input.CustomerID, subOrderIDs, err, "create master order")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateMasterOrder,
			AggregateID:   masterID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.CustomerID, Role: enums.RoleCustomer.String()},
			Data: payloads.OrderPlacedEvent{
				MasterOrderID: masterID,
				OrderNumber:   orderNumber,
				CustomerID:    input.CustomerID,
				CustomerName:  input.CustomerName,
				CustomerEmail: input.CustomerEmail,
				SubOrderIDs:   subOrderIDs,
				SupplierIDs:   supplierIDs,
				SupplierCount: len(groups),
				Total:         total,
				Currency:      input.Currency,
			},
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit placed event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.windows.Arm(master.ID, s.cancelWindow, func(expireCtx context.Context, orderID uuid.UUID) {
		finalizeErr := s.finalizer.FinalizeMasterOrder(expireCtx, orders.FinalizeMasterOrderInput{
			MasterOrderID: orderID,
			System:        true,
		})
		if finalizeErr != nil && s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(expireCtx, orderID.String()), "finalize on window expiry failed", finalizeErr)
		}
	})

	subs, err := s.repo.FindSubOrdersByMaster(ctx, master.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-orders")
	}
	views := make([]orders.SubOrderView, 0, len(subs))
	for _, sub := range subs {
		subItems, err := s.repo.FindOrderItemsBySubOrder(ctx, sub.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		views = append(views, orders.NewSubOrderView(sub, subItems))
	}
	view := orders.NewMasterOrderView(master, views)
	return &view, nil
}

// partialWrite classifies a mid-fan-out failure. The transaction rolls the
// rows back; the error still carries the partial ids so the log line supports
// reconciliation if the rollback itself is interrupted.
func (s *service) partialWrite(ctx context.Context, customerID uuid.UUID, subOrderIDs types.UUIDArray, err error, message string) error {
	wrapped := pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, message).
		WithDetails(map[string]any{
			"customerId":  customerID,
			"subOrderIds": subOrderIDs,
		})
	if s.logg != nil {
		fields := map[string]any{
			"customer_id":   customerID.String(),
			"sub_order_ids": fmt.Sprintf("%v", subOrderIDs),
		}
		s.logg.Error(s.logg.WithFields(ctx, fields), "order fan-out partially written", err)
	}
	return wrapped
}

func (s *service) validate(input PlaceOrderInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var problems []string
	if input.CustomerName == "" {
		problems = append(problems, "customer name required")
	}
	if !input.PaymentMethod.IsValid() {
		problems = append(problems, "unknown payment method")
	}
	if !input.Currency.IsValid() {
		problems = append(problems, "unknown currency")
	}
	if input.DeliveryFee.IsNegative() || input.Tax.IsNegative() || input.PromoDiscount.IsNegative() {
		problems = append(problems, "shared cost amounts must not be negative")
	}
	if missing := input.Address.Validate(); len(missing) > 0 {
		for _, field := range missing {
			problems = append(problems, fmt.Sprintf("delivery address: %s required", field))
		}
	}
	if len(problems) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout failed validation").
			WithDetails(problems)
	}
	return nil
}
