package orderplaced

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/dukkanhq/dukkan-backend/internal/email"
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox/idempotency"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox/payloads"
)

const orderPlacedConsumer = "order-placed"

type notificationCreator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type subOrderReader interface {
	FindSubOrdersByMaster(ctx context.Context, masterOrderID uuid.UUID) ([]models.SubOrder, error)
	FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error)
}

// Consumer fans the order.placed event out to its side effects: one "new
// order" notification per supplier and the order confirmation emails. Both are
// best-effort relative to order placement, which already committed.
type Consumer struct {
	orders        subOrderReader
	notifications notificationCreator
	sender        email.Sender
	subscription  *pubsub.Subscriber
	idempotency   *idempotency.Manager
	logg          *logger.Logger
}

// NewConsumer builds the order.placed consumer.
func NewConsumer(
	ordersRepo subOrderReader,
	notifications notificationCreator,
	sender email.Sender,
	subscription *pubsub.Subscriber,
	manager *idempotency.Manager,
	logg *logger.Logger,
) (*Consumer, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		orders:        ordersRepo,
		notifications: notifications,
		sender:        sender,
		subscription:  subscription,
		idempotency:   manager,
		logg:          logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) bool {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventOrderPlaced) {
		c.logg.Info(logCtx, "skipping unhandled event")
		return true
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderPlacedConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return true
	}

	var payload payloads.OrderPlacedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, orderPlacedConsumer, eventID)
		return false
	}
	logCtx = c.logg.WithOrderID(logCtx, payload.MasterOrderID.String())

	if err := c.notifySuppliers(ctx, payload, logCtx); err != nil {
		c.logg.Error(logCtx, "supplier notification failed", err)
		_ = c.idempotency.Delete(ctx, orderPlacedConsumer, eventID)
		return false
	}

	// Email delivery stays best-effort: a provider outage must not park the
	// event in a retry loop.
	c.sendConfirmations(ctx, payload, logCtx)
	return true
}

func (c *Consumer) notifySuppliers(ctx context.Context, payload payloads.OrderPlacedEvent, logCtx context.Context) error {
	subs, err := c.orders.FindSubOrdersByMaster(ctx, payload.MasterOrderID)
	if err != nil {
		return fmt.Errorf("load sub-orders: %w", err)
	}
	for _, sub := range subs {
		if sub.SupplierID == uuid.Nil {
			continue
		}
		link := fmt.Sprintf("/panel/orders/%s", sub.ID)
		notification := &models.Notification{
			SupplierID: sub.SupplierID,
			Type:       enums.NotificationTypeNewOrder,
			Title:      "New order received",
			Message:    fmt.Sprintf("Order #%d includes a sub-order for you totaling %s %s.", payload.OrderNumber, sub.Total.StringFixed(2), sub.Currency),
			Link:       &link,
		}
		if err := c.notifications.Create(ctx, notification); err != nil {
			return fmt.Errorf("create notification for supplier %s: %w", sub.SupplierID, err)
		}
	}
	c.logg.Info(logCtx, "suppliers notified of new order")
	return nil
}

func (c *Consumer) sendConfirmations(ctx context.Context, payload payloads.OrderPlacedEvent, logCtx context.Context) {
	if payload.CustomerEmail == "" {
		c.logg.Info(logCtx, "no customer email on event, skipping confirmation")
		return
	}

	msg := email.Message{
		To:      payload.CustomerEmail,
		Subject: fmt.Sprintf("Order #%d confirmed", payload.OrderNumber),
		HTML: fmt.Sprintf(
			"<p>Thanks %s, your order #%d for %s %s has been placed across %d supplier(s).</p>",
			payload.CustomerName, payload.OrderNumber, payload.Total.StringFixed(2), payload.Currency, payload.SupplierCount,
		),
	}
	if err := c.sender.Send(ctx, msg); err != nil {
		c.logg.Error(logCtx, "order confirmation email failed", err)
	}

	for _, subOrderID := range payload.SubOrderIDs {
		sub, err := c.orders.FindSubOrder(ctx, subOrderID)
		if err != nil {
			c.logg.Error(logCtx, "load sub-order for email failed", err)
			continue
		}
		subMsg := email.Message{
			To:      payload.CustomerEmail,
			Subject: fmt.Sprintf("Order #%d — %s", payload.OrderNumber, sub.SupplierName),
			HTML: fmt.Sprintf(
				"<p>%s will fulfill part of your order #%d (%s %s).</p>",
				sub.SupplierName, payload.OrderNumber, sub.Total.StringFixed(2), sub.Currency,
			),
		}
		if err := c.sender.Send(ctx, subMsg); err != nil {
			c.logg.Error(logCtx, "sub-order confirmation email failed", err)
		}
	}
}
