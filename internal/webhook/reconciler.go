package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ariefcatur/go-market-checkout/internal/events"
	"github.com/ariefcatur/go-market-checkout/internal/orders"
)

var (
	ErrInvalidPayload = errors.New("transaction_id dan status wajib diisi")
	ErrOrderNotFound  = errors.New("order tidak ditemukan untuk transaction_id")
)

type OrderStore interface {
	GetByPaymentID(ctx context.Context, transactionID string) (*orders.Order, error)
	TransitionFromPending(ctx context.Context, orderID string, to orders.Status) (bool, error)
}

type Notifier interface {
	Insert(ctx context.Context, userID, title, message string) error
}

// Deduper short-circuit delivery kembar yang sudah SELESAI diproses;
// boleh nil. Bukan sumber kebenaran: guard sebenarnya adalah
// conditional update di DB. Mark hanya boleh dipanggil setelah transisi
// DB jalan tanpa error -- delivery yang gagal harus tetap bisa
// di-retry provider, bukan ditelan dedup.
type Deduper interface {
	Seen(ctx context.Context, transactionID, status string) bool
	Mark(ctx context.Context, transactionID, status string)
}

// StatusCache refresh cache status order di titik transisi; boleh nil.
type StatusCache interface {
	SetStatus(ctx context.Context, orderID, status string)
}

type Callback struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// Reconciler menerapkan callback status pembayaran ke order.
// Autentikasi signature terjadi di layer HTTP, atas raw body, sebelum
// payload ini dipercaya.
type Reconciler struct {
	Orders OrderStore
	Notifs Notifier
	Events events.Sink
	Dedup  Deduper
	Status StatusCache
}

// Apply idempoten: delivery ulang atau yang kalah balapan (order sudah
// terminal) di-ack tanpa mutasi; provider berhenti retry begitu dapat 200.
func (r *Reconciler) Apply(ctx context.Context, cb Callback) error {
	if cb.TransactionID == "" || cb.Status == "" {
		return ErrInvalidPayload
	}

	if r.Dedup != nil && r.Dedup.Seen(ctx, cb.TransactionID, cb.Status) {
		log.Printf("webhook duplikat txn=%s status=%s, skip", cb.TransactionID, cb.Status)
		return nil
	}

	// jalur error di bawah TIDAK menandai dedup: retry provider harus
	// masuk lagi sampai transisi beneran jalan
	ord, err := r.Orders.GetByPaymentID(ctx, cb.TransactionID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, cb.TransactionID)
		}
		return err
	}

	applied, err := r.Orders.TransitionFromPending(ctx, ord.ID, orders.Status(cb.Status))
	if err != nil {
		return err
	}
	if r.Dedup != nil {
		r.Dedup.Mark(ctx, cb.TransactionID, cb.Status)
	}
	if !applied {
		log.Printf("webhook order=%s sudah %s, callback %s jadi no-op", ord.ID, ord.Status, cb.Status)
		return nil
	}
	if r.Status != nil {
		r.Status.SetStatus(ctx, ord.ID, cb.Status)
	}

	switch orders.Status(cb.Status) {
	case orders.StatusSuccess:
		r.notify(ctx, ord.BuyerID, "Pembayaran berhasil",
			fmt.Sprintf("Pembayaran order #%s sebesar %d sudah kami terima.", shortID(ord.ID), ord.TotalAmount))
		r.emit(orders.TopicPaymentSuccess, orders.EventPaymentSuccess, ord.ID, cb)
	case orders.StatusFailed:
		r.notify(ctx, ord.BuyerID, "Pembayaran gagal",
			fmt.Sprintf("Pembayaran order #%s gagal. Silakan coba lagi.", shortID(ord.ID)))
		r.emit(orders.TopicPaymentFailed, orders.EventPaymentFailed, ord.ID, cb)
	}
	return nil
}

func (r *Reconciler) notify(ctx context.Context, userID, title, msg string) {
	if r.Notifs == nil {
		return
	}
	if err := r.Notifs.Insert(ctx, userID, title, msg); err != nil {
		// notifikasi gagal tidak boleh menggagalkan response webhook
		log.Printf("webhook notify user=%s: %v", userID, err)
	}
}

func (r *Reconciler) emit(topic, eventType, orderID string, cb Callback) {
	if r.Events == nil {
		return
	}
	r.Events.Emit(topic, eventType, orderID, orders.PaymentResultPayload{
		OrderID:       orderID,
		TransactionID: cb.TransactionID,
		Status:        cb.Status,
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
