package orderplaced

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/internal/email"
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/enums"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox/idempotency"
	"github.com/dukkanhq/dukkan-backend/pkg/outbox/payloads"
)

type stubOrdersRepo struct {
	subs    []models.SubOrder
	subsErr error
}

func (s *stubOrdersRepo) FindSubOrdersByMaster(ctx context.Context, masterOrderID uuid.UUID) ([]models.SubOrder, error) {
	if s.subsErr != nil {
		return nil, s.subsErr
	}
	return s.subs, nil
}

func (s *stubOrdersRepo) FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error) {
	for i := range s.subs {
		if s.subs[i].ID == id {
			return &s.subs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubNotifications struct {
	created []models.Notification
	err     error
}

func (s *stubNotifications) Create(ctx context.Context, notification *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *notification)
	return nil
}

type stubSender struct {
	sent []email.Message
	err  error
}

func (s *stubSender) Send(ctx context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type fakeIdempotencyStore struct {
	values map[string]string
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = "1"
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "dk:idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func newTestConsumer(t *testing.T, repo *stubOrdersRepo, notifications *stubNotifications, sender *stubSender) *Consumer {
	t.Helper()
	manager, err := idempotency.NewManager(&fakeIdempotencyStore{values: map[string]string{}}, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return &Consumer{
		orders:        repo,
		notifications: notifications,
		sender:        sender,
		idempotency:   manager,
		logg:          logger.New(logger.Options{ServiceName: "consumer-test"}),
	}
}

func orderPlacedMessage(t *testing.T, payload payloads.OrderPlacedEvent) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       envelope,
		Attributes: map[string]string{"event_type": string(enums.EventOrderPlaced)},
	}
}

func TestProcessNotifiesEachSupplierAndEmailsCustomer(t *testing.T) {
	t.Parallel()
	masterID := uuid.New()
	subA := models.SubOrder{ID: uuid.New(), MasterOrderID: masterID, SupplierID: uuid.New(), SupplierName: "Cheese Co", Currency: enums.CurrencyEUR, Total: decimal.RequireFromString("27.78")}
	subB := models.SubOrder{ID: uuid.New(), MasterOrderID: masterID, SupplierID: uuid.New(), SupplierName: "Olive Co", Currency: enums.CurrencyEUR, Total: decimal.RequireFromString("26.72")}
	repo := &stubOrdersRepo{subs: []models.SubOrder{subA, subB}}
	notifications := &stubNotifications{}
	sender := &stubSender{}
	consumer := newTestConsumer(t, repo, notifications, sender)

	msg := orderPlacedMessage(t, payloads.OrderPlacedEvent{
		MasterOrderID: masterID,
		OrderNumber:   1042,
		CustomerName:  "Ada Buyer",
		CustomerEmail: "ada@example.com",
		SubOrderIDs:   []uuid.UUID{subA.ID, subB.ID},
		SupplierCount: 2,
		Total:         decimal.RequireFromString("54.50"),
		Currency:      enums.CurrencyEUR,
	})

	if !consumer.process(context.Background(), msg) {
		t.Fatal("expected ack")
	}
	if len(notifications.created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications.created))
	}
	for _, notification := range notifications.created {
		if notification.Type != enums.NotificationTypeNewOrder {
			t.Fatalf("unexpected notification type %s", notification.Type)
		}
		if notification.Link == nil {
			t.Fatal("expected panel link")
		}
	}
	// One master confirmation plus one email per sub-order.
	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 emails, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "ada@example.com" {
		t.Fatalf("unexpected recipient %s", sender.sent[0].To)
	}
}

func TestProcessSkipsNilSupplierBucket(t *testing.T) {
	t.Parallel()
	masterID := uuid.New()
	repo := &stubOrdersRepo{subs: []models.SubOrder{
		{ID: uuid.New(), MasterOrderID: masterID, SupplierID: uuid.Nil, SupplierName: "Unknown supplier"},
	}}
	notifications := &stubNotifications{}
	consumer := newTestConsumer(t, repo, notifications, &stubSender{})

	msg := orderPlacedMessage(t, payloads.OrderPlacedEvent{MasterOrderID: masterID, OrderNumber: 1})
	if !consumer.process(context.Background(), msg) {
		t.Fatal("expected ack")
	}
	if len(notifications.created) != 0 {
		t.Fatal("nil supplier bucket must not produce a notification")
	}
}

func TestProcessDuplicateEventIsAckedOnce(t *testing.T) {
	t.Parallel()
	masterID := uuid.New()
	repo := &stubOrdersRepo{subs: []models.SubOrder{
		{ID: uuid.New(), MasterOrderID: masterID, SupplierID: uuid.New(), SupplierName: "Cheese Co"},
	}}
	notifications := &stubNotifications{}
	consumer := newTestConsumer(t, repo, notifications, &stubSender{})

	msg := orderPlacedMessage(t, payloads.OrderPlacedEvent{MasterOrderID: masterID, OrderNumber: 1})
	if !consumer.process(context.Background(), msg) {
		t.Fatal("first delivery should ack")
	}
	if !consumer.process(context.Background(), msg) {
		t.Fatal("redelivery should ack without reprocessing")
	}
	if len(notifications.created) != 1 {
		t.Fatalf("expected 1 notification total, got %d", len(notifications.created))
	}
}

func TestProcessNacksOnNotificationFailure(t *testing.T) {
	t.Parallel()
	masterID := uuid.New()
	repo := &stubOrdersRepo{subs: []models.SubOrder{
		{ID: uuid.New(), MasterOrderID: masterID, SupplierID: uuid.New(), SupplierName: "Cheese Co"},
	}}
	notifications := &stubNotifications{err: errors.New("db down")}
	consumer := newTestConsumer(t, repo, notifications, &stubSender{})

	msg := orderPlacedMessage(t, payloads.OrderPlacedEvent{MasterOrderID: masterID, OrderNumber: 1})
	if consumer.process(context.Background(), msg) {
		t.Fatal("expected nack on notification failure")
	}

	// The idempotency marker rolls back so a retry can succeed.
	notifications.err = nil
	if !consumer.process(context.Background(), msg) {
		t.Fatal("expected retry to succeed")
	}
	if len(notifications.created) != 1 {
		t.Fatalf("expected 1 notification after retry, got %d", len(notifications.created))
	}
}

func TestProcessEmailFailureStillAcks(t *testing.T) {
	t.Parallel()
	masterID := uuid.New()
	repo := &stubOrdersRepo{subs: []models.SubOrder{
		{ID: uuid.New(), MasterOrderID: masterID, SupplierID: uuid.New(), SupplierName: "Cheese Co"},
	}}
	sender := &stubSender{err: errors.New("provider outage")}
	consumer := newTestConsumer(t, repo, &stubNotifications{}, sender)

	msg := orderPlacedMessage(t, payloads.OrderPlacedEvent{
		MasterOrderID: masterID,
		OrderNumber:   1,
		CustomerEmail: "ada@example.com",
	})
	if !consumer.process(context.Background(), msg) {
		t.Fatal("email outage must not nack the event")
	}
}

func TestProcessSkipsForeignEventTypes(t *testing.T) {
	t.Parallel()
	notifications := &stubNotifications{}
	consumer := newTestConsumer(t, &stubOrdersRepo{}, notifications, &stubSender{})

	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       []byte(`{}`),
		Attributes: map[string]string{"event_type": "order.cancelled"},
	}
	if !consumer.process(context.Background(), msg) {
		t.Fatal("foreign event types ack without processing")
	}
	if len(notifications.created) != 0 {
		t.Fatal("foreign events must not create notifications")
	}
}

func TestProcessBadEnvelopeIsDropped(t *testing.T) {
	t.Parallel()
	consumer := newTestConsumer(t, &stubOrdersRepo{}, &stubNotifications{}, &stubSender{})
	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       []byte(`not-json`),
		Attributes: map[string]string{"event_type": string(enums.EventOrderPlaced)},
	}
	if !consumer.process(context.Background(), msg) {
		t.Fatal("undecodable envelopes ack to avoid poison loops")
	}
}
