package redisx

import "time"

const (
	// Cache status order: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup delivery webhook: dedup:webhook:{transaction_id}:{status}
	// DB conditional update tetap jadi kebenaran; ini cuma short-circuit.
	KeyWebhookDedup = "dedup:webhook:%s:%s"

	// Idempotency checkout: idem:checkout:{user_id}:{client_key} -> order_id.
	// Key datang dari client (header x-idempotency-key), di-scope per user.
	KeyIdemCheckout = "idem:checkout:%s:%s"
)

var (
	TTLStatusCache  = 5 * time.Minute
	TTLWebhookDedup = 48 * time.Hour
	TTLIdempotency  = 24 * time.Hour
)
