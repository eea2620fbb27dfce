package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ariefcatur/go-market-checkout/internal/auth"
	"github.com/ariefcatur/go-market-checkout/internal/catalog"
	"github.com/ariefcatur/go-market-checkout/internal/events"
	"github.com/ariefcatur/go-market-checkout/internal/orders"
	"github.com/ariefcatur/go-market-checkout/internal/payment"
)

var (
	ErrMissingPhone      = errors.New("nomor HP wajib diisi, mohon update profil")
	ErrEmptyCheckout     = errors.New("tidak ada barang yang di-checkout")
	ErrProductNotFound   = errors.New("produk tidak ditemukan")
	ErrSelfPurchase      = errors.New("tidak bisa membeli produk sendiri")
	ErrInvalidQuantity   = errors.New("quantity tidak valid")
	ErrInsufficientStock = errors.New("stok tidak cukup")
)

const defaultPaymentMethod = "BCA_VA"

type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Request struct {
	Items             []ItemInput `json:"items"`
	PaymentMethodCode string      `json:"payment_method_code"`
}

type Result struct {
	Success        bool                    `json:"success"`
	OrderID        string                  `json:"order_id"`
	TotalAmount    int64                   `json:"total_amount"`
	AdminFee       int64                   `json:"admin_fee"`
	Status         orders.Status           `json:"status"`
	PaymentID      *string                 `json:"payment_id"`
	PaymentDetails *payment.PaymentDetails `json:"payment_details,omitempty"`
	Message        string                  `json:"message,omitempty"`
}

// Service menjalankan pipeline checkout: validasi -> resolve fee ->
// commit transaksional -> inisiasi pembayaran.
type Service struct {
	Products ProductReader
	Orders   OrderStore
	Fees     FeeResolver
	Payments PaymentCreator
	Notifs   Notifier
	Events   events.Sink
}

// Checkout memvalidasi fail-fast sesuai urutan input lalu commit.
// Error yang keluar dari sini adalah rejection (4xx) atau fatal (5xx);
// kegagalan inisiasi pembayaran BUKAN error: order tetap commit,
// Result.Success=false.
func (s *Service) Checkout(ctx context.Context, ident auth.Identity, req Request) (*Result, error) {
	if ident.Phone == "" {
		return nil, ErrMissingPhone
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCheckout
	}

	// Tahap 1: validasi per line, urutan input. Line utk produk sama
	// TIDAK di-merge; masing-masing dicek terhadap stok terbaca.
	var productTotal int64
	items := make([]orders.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: produk %s", ErrInvalidQuantity, in.ProductID)
		}
		p, err := s.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductID)
			}
			return nil, err
		}
		if p.SellerID == ident.UserID {
			return nil, fmt.Errorf("%w: %s", ErrSelfPurchase, p.Name)
		}
		if in.Quantity > p.Stock {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}
		productTotal += p.Price * int64(in.Quantity)
		items = append(items, orders.OrderItem{
			ProductID:       p.ID,
			Quantity:        in.Quantity,
			PriceAtPurchase: p.Price, // snapshot harga saat commit
		})
	}

	// Tahap 2: resolve fee; provider bermasalah -> 0, jangan blokir.
	method := req.PaymentMethodCode
	if method == "" {
		method = defaultPaymentMethod
	}
	fee := s.Fees.AdminFee(ctx, method)

	// Tahap 3: commit header+items+stok+keranjang, satu transaksi.
	ord := &orders.Order{
		BuyerID:     ident.UserID,
		TotalAmount: productTotal + fee,
		AdminFee:    fee,
	}
	if err := s.Orders.CreateOrderTx(ctx, ord, items); err != nil {
		if errors.Is(err, catalog.ErrInsufficientStock) {
			// stok keburu dipotong checkout lain antara validasi & commit
			return nil, fmt.Errorf("%w: berubah saat commit", ErrInsufficientStock)
		}
		return nil, fmt.Errorf("commit order: %w", err)
	}

	// Tahap 4: inisiasi pembayaran. reference_id = order id, aman
	// di-retry tanpa double charge.
	details, err := s.Payments.CreatePayment(ctx, payment.CreatePaymentRequest{
		ReferenceID:   ord.ID,
		Amount:        ord.TotalAmount,
		PaymentMethod: method,
		CustomerName:  ident.Name,
		CustomerEmail: ident.Email,
		CustomerPhone: ident.Phone,
		Description:   fmt.Sprintf("Order #%s", shortID(ord.ID)),
	})
	if err != nil {
		log.Printf("payment initiation order=%s: %v", ord.ID, err)
		return &Result{
			Success:     false,
			OrderID:     ord.ID,
			TotalAmount: ord.TotalAmount,
			AdminFee:    ord.AdminFee,
			Status:      ord.Status,
			Message:     "Order dibuat tapi inisiasi pembayaran gagal. Silakan coba bayar lagi nanti.",
		}, nil
	}

	if err := s.Orders.SetPaymentID(ctx, ord.ID, details.TransactionID); err != nil {
		// order & payment sudah ada; handle hilang berarti webhook tidak
		// akan match. Jangan gagalkan response, tapi ini harus kelihatan.
		log.Printf("persist payment_id order=%s txn=%s: %v", ord.ID, details.TransactionID, err)
	}
	if s.Notifs != nil {
		if err := s.Notifs.Insert(ctx, ident.UserID, "Order dibuat",
			fmt.Sprintf("Order #%s menunggu pembayaran sebesar %d.", shortID(ord.ID), ord.TotalAmount)); err != nil {
			log.Printf("notify order=%s: %v", ord.ID, err)
		}
	}
	if s.Events != nil {
		s.Events.Emit(orders.TopicOrderCreated, orders.EventOrderCreated, ord.ID, orders.OrderCreatedPayload{
			OrderID:     ord.ID,
			BuyerID:     ord.BuyerID,
			Items:       toLines(items),
			TotalAmount: ord.TotalAmount,
			AdminFee:    ord.AdminFee,
			PaymentID:   details.TransactionID,
		})
	}

	txn := details.TransactionID
	return &Result{
		Success:        true,
		OrderID:        ord.ID,
		TotalAmount:    ord.TotalAmount,
		AdminFee:       ord.AdminFee,
		Status:         ord.Status,
		PaymentID:      &txn,
		PaymentDetails: details,
	}, nil
}

func toLines(items []orders.OrderItem) []orders.ItemLine {
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
