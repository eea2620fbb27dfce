package expiry

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/go-market-checkout/internal/events"
	"github.com/ariefcatur/go-market-checkout/internal/orders"
)

type OrderStore interface {
	ListExpiredPending(ctx context.Context, olderThan time.Time) ([]orders.OrderView, error)
	ExpireTx(ctx context.Context, ord orders.OrderView) (bool, error)
}

type Notifier interface {
	Insert(ctx context.Context, userID, title, message string) error
}

// StatusCache refresh cache status order setelah transisi; boleh nil.
type StatusCache interface {
	SetStatus(ctx context.Context, orderID, status string)
}

// Sweeper membatalkan order PENDING yang lewat TTL dan mengembalikan
// stoknya. Balapan dengan webhook telat dimenangkan siapa pun yang
// commit duluan; ExpireTx skip kalau status sudah terminal.
type Sweeper struct {
	Orders   OrderStore
	Notifs   Notifier
	Events   events.Sink
	Status   StatusCache
	TTL      time.Duration
	Interval time.Duration

	now func() time.Time // test hook
}

func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("sweep: %v", err)
			} else if n > 0 {
				log.Printf("sweep: %d order expired, stok dikembalikan", n)
			}
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	stale, err := s.Orders.ListExpiredPending(ctx, now().Add(-s.TTL))
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, ord := range stale {
		ok, err := s.Orders.ExpireTx(ctx, ord)
		if err != nil {
			log.Printf("sweep order=%s: %v", ord.ID, err)
			continue
		}
		if !ok {
			continue // webhook keburu menang
		}
		expired++
		if s.Status != nil {
			s.Status.SetStatus(ctx, ord.ID, string(orders.StatusExpired))
		}
		if s.Notifs != nil {
			if err := s.Notifs.Insert(ctx, ord.BuyerID, "Order kedaluwarsa",
				fmt.Sprintf("Order #%s dibatalkan karena tidak dibayar dalam batas waktu.", shortID(ord.ID))); err != nil {
				log.Printf("sweep notify order=%s: %v", ord.ID, err)
			}
		}
		if s.Events != nil {
			s.Events.Emit(orders.TopicOrderExpired, orders.EventOrderExpired, ord.ID, orders.OrderExpiredPayload{
				OrderID: ord.ID,
				Items:   toLines(ord.Items),
			})
		}
	}
	return expired, nil
}

func toLines(items []orders.ItemView) []orders.ItemLine {
	out := make([]orders.ItemLine, 0, len(items))
	for _, it := range items {
		out = append(out, orders.ItemLine{
			ProductID:       it.ProductID,
			Qty:             it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
		})
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
