package cart

import "time"

type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemView: isi keranjang + snapshot produk untuk UI.
type ItemView struct {
	Item
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
	ProductStock int    `json:"product_stock"`
	ImageURL     string `json:"image_url"`
}
