package events

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-market-checkout/internal/kafka"
	"github.com/ariefcatur/go-market-checkout/internal/orders"
)

// Sink menerima event lifecycle order. Publish best-effort: downstream
// (analytics, email worker) bukan bagian dari jalur checkout.
type Sink interface {
	Emit(topic, eventType, orderID string, payload any)
}

type Kafka struct {
	Producer *kafkax.Producer
	Service  string
}

func (k *Kafka) Emit(topic, eventType, orderID string, payload any) {
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.Service,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	k.Producer.Publish(topic, orders.PartitionKey(orderID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// Nop dipakai saat broker belum tersedia (mis. sweeper standalone).
type Nop struct{}

func (Nop) Emit(topic, eventType, orderID string, payload any) {}
