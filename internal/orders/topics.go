package orders

const (
	TopicOrderCreated   = "order.created"
	TopicPaymentSuccess = "order.payment.succeeded"
	TopicPaymentFailed  = "order.payment.failed"
	TopicOrderExpired   = "order.expired"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
