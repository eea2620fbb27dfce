package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventPaymentSuccess = "PaymentSucceeded"
	EventPaymentFailed  = "PaymentFailed"
	EventOrderExpired   = "OrderExpired"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemLine struct {
	ProductID       string `json:"product_id"`
	Qty             int    `json:"qty"`
	PriceAtPurchase int64  `json:"price_at_purchase"`
}

type OrderCreatedPayload struct {
	OrderID     string     `json:"order_id"`
	BuyerID     string     `json:"buyer_id"`
	Items       []ItemLine `json:"items"`
	TotalAmount int64      `json:"total_amount"`
	AdminFee    int64      `json:"admin_fee"`
	PaymentID   string     `json:"payment_id,omitempty"`
}

type PaymentResultPayload struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type OrderExpiredPayload struct {
	OrderID string     `json:"order_id"`
	Items   []ItemLine `json:"items"` // stok yang dikembalikan
}
