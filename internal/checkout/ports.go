package checkout

import (
	"context"

	"github.com/ariefcatur/go-market-checkout/internal/catalog"
	"github.com/ariefcatur/go-market-checkout/internal/orders"
	"github.com/ariefcatur/go-market-checkout/internal/payment"
)

type ProductReader interface {
	GetByID(ctx context.Context, id string) (*catalog.Product, error)
}

type OrderStore interface {
	CreateOrderTx(ctx context.Context, ord *orders.Order, items []orders.OrderItem) error
	SetPaymentID(ctx context.Context, orderID, transactionID string) error
}

type FeeResolver interface {
	AdminFee(ctx context.Context, code string) int64
}

type PaymentCreator interface {
	CreatePayment(ctx context.Context, in payment.CreatePaymentRequest) (*payment.PaymentDetails, error)
}

type Notifier interface {
	Insert(ctx context.Context, userID, title, message string) error
}
