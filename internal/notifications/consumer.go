package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox/idempotency"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox/payloads"
)

const supplierNotificationConsumer = "supplier-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches sub-order events and materializes supplier panel
// notifications. Failures here never reach the order flow; the worst case is a
// nacked message retried later.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a supplier notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	switch eventType {
	case string(enums.EventSubOrderStatusChanged), string(enums.EventSubOrderPaymentSet):
	default:
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, supplierNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var handleErr error
	switch eventType {
	case string(enums.EventSubOrderStatusChanged):
		handleErr = c.handleStatusChanged(ctx, envelope.Data, logCtx)
	case string(enums.EventSubOrderPaymentSet):
		handleErr = c.handlePaymentChanged(ctx, envelope.Data, logCtx)
	}
	if handleErr != nil {
		c.logg.Error(logCtx, "notification handling failed", handleErr)
		_ = c.idempotency.Delete(ctx, supplierNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handleStatusChanged(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.SubOrderStatusChangedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse status payload: %w", err)
	}
	if payload.SupplierID == uuid.Nil {
		c.logg.Info(logCtx, "no supplier attributed, skipping notification")
		return nil
	}

	link := fmt.Sprintf("/panel/orders/%s", payload.SubOrderID)
	notification := &models.Notification{
		SupplierID: payload.SupplierID,
		Type:       enums.NotificationTypeOrderStatus,
		Title:      "Order status updated",
		Message:    fmt.Sprintf("Sub-order %s moved from %s to %s.", payload.SubOrderID, payload.PreviousStatus, payload.Status),
		Link:       &link,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "supplier notified of status change")
	return nil
}

func (c *Consumer) handlePaymentChanged(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.SubOrderPaymentChangedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payment payload: %w", err)
	}
	if payload.SupplierID == uuid.Nil {
		c.logg.Info(logCtx, "no supplier attributed, skipping notification")
		return nil
	}

	link := fmt.Sprintf("/panel/orders/%s", payload.SubOrderID)
	notification := &models.Notification{
		SupplierID: payload.SupplierID,
		Type:       enums.NotificationTypeOrderStatus,
		Title:      "Payment status updated",
		Message:    fmt.Sprintf("Sub-order %s payment is now %s.", payload.SubOrderID, payload.PaymentStatus),
		Link:       &link,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "supplier notified of payment change")
	return nil
}
