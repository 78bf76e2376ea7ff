package enums

// OutboxEventType enumerates domain events persisted via the outbox.
type OutboxEventType string

const (
	EventOrderPlaced           OutboxEventType = "order.placed"
	EventOrderFinalized        OutboxEventType = "order.finalized"
	EventOrderCancelled        OutboxEventType = "order.cancelled"
	EventSubOrderStatusChanged OutboxEventType = "suborder.status_changed"
	EventSubOrderPaymentSet    OutboxEventType = "suborder.payment_changed"
)

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// OutboxAggregateType names the aggregate a domain event belongs to.
type OutboxAggregateType string

const (
	AggregateMasterOrder OutboxAggregateType = "master_order"
	AggregateSubOrder    OutboxAggregateType = "sub_order"
)

// String implements fmt.Stringer.
func (t OutboxAggregateType) String() string {
	return string(t)
}

// OutboxDLQErrorReason classifies why an event was moved to the dead letter queue.
type OutboxDLQErrorReason string

const (
	DLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts_exceeded"
	DLQReasonUnregistered OutboxDLQErrorReason = "unregistered_event_type"
	DLQReasonBadPayload   OutboxDLQErrorReason = "payload_marshal_failed"
)
