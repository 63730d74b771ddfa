package enums

// OutboxEventType names the domain events appended to the outbox.
type OutboxEventType string

const (
	EventOrderBatchCreated OutboxEventType = "order.batch_created"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrderBatch OutboxAggregateType = "order_batch"
)

// OutboxEventStatus tracks publication state of an outbox row.
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusPublished OutboxEventStatus = "published"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)
