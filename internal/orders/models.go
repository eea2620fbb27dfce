package orders

import "time"

type Order struct {
	ID          string    `json:"id"`
	BuyerID     string    `json:"buyer_id"`
	TotalAmount int64     `json:"total_amount"`
	AdminFee    int64     `json:"admin_fee"`
	Status      Status    `json:"status"`
	PaymentID   *string   `json:"payment_id"` // nil sampai orchestrator merespons
	CreatedAt   time.Time `json:"created_at"`
}

// OrderItem immutable setelah commit; price_at_purchase tidak pernah
// dihitung ulang walau harga produk berubah.
type OrderItem struct {
	ID              string `json:"id"`
	OrderID         string `json:"order_id"`
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase int64  `json:"price_at_purchase"`
}

// ItemView: line order + snapshot produk untuk GET /orders/my.
type ItemView struct {
	OrderItem
	ProductName string `json:"product_name"`
	ImageURL    string `json:"image_url"`
}

type OrderView struct {
	Order
	Items []ItemView `json:"items"`
}
