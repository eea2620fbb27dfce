package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-market-checkout/internal/cart"
	"github.com/ariefcatur/go-market-checkout/internal/catalog"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx commit checkout dalam SATU transaksi:
// header -> order_items -> potong stok (kondisional) -> bersihkan keranjang.
// Stok kurang di salah satu line -> rollback semua, return
// catalog.ErrInsufficientStock.
func (r *Repo) CreateOrderTx(ctx context.Context, ord *Order, items []OrderItem) error {
	if ord.ID == "" {
		ord.ID = uuid.NewString()
	}
	ord.Status = StatusPending

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, buyer_id, total_amount, admin_fee, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		ord.ID, ord.BuyerID, ord.TotalAmount, ord.AdminFee, ord.Status).Scan(&ord.CreatedAt)
	if err != nil {
		return err
	}

	productIDs := make([]string, 0, len(items))
	for i := range items {
		it := &items[i]
		it.ID = uuid.NewString()
		it.OrderID = ord.ID
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, quantity, price_at_purchase)
			VALUES ($1,$2,$3,$4,$5)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.PriceAtPurchase); err != nil {
			return err
		}
		// per line, urutan input; line ganda utk produk sama tidak di-merge
		if err := catalog.DecrementStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
		productIDs = append(productIDs, it.ProductID)
	}

	if err := cart.DeleteForProducts(ctx, tx, ord.BuyerID, productIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) SetPaymentID(ctx context.Context, orderID, transactionID string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET payment_id=$2 WHERE id=$1`, orderID, transactionID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getBy(ctx, `id`, id)
}

func (r *Repo) GetByPaymentID(ctx context.Context, transactionID string) (*Order, error) {
	return r.getBy(ctx, `payment_id`, transactionID)
}

func (r *Repo) getBy(ctx context.Context, col, val string) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, buyer_id, total_amount, admin_fee, status, payment_id, created_at
		FROM orders WHERE `+col+`=$1`, val).
		Scan(&o.ID, &o.BuyerID, &o.TotalAmount, &o.AdminFee, &o.Status, &o.PaymentID, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// TransitionFromPending: guard replay/out-of-order. false = order sudah
// terminal, tidak ada baris yang berubah.
func (r *Repo) TransitionFromPending(ctx context.Context, orderID string, to Status) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2 WHERE id=$1 AND status=$3`,
		orderID, to, StatusPending)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *Repo) ListByBuyer(ctx context.Context, buyerID string) ([]OrderView, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, buyer_id, total_amount, admin_fee, status, payment_id, created_at
		FROM orders WHERE buyer_id=$1 ORDER BY created_at DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []OrderView
	index := map[string]int{}
	var ids []string
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.TotalAmount, &o.AdminFee, &o.Status, &o.PaymentID, &o.CreatedAt); err != nil {
			return nil, err
		}
		index[o.ID] = len(views)
		ids = append(ids, o.ID)
		views = append(views, OrderView{Order: o})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return views, nil
	}

	irows, err := r.DB.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.price_at_purchase,
		       p.name, p.image_url
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var v ItemView
		if err := irows.Scan(&v.ID, &v.OrderID, &v.ProductID, &v.Quantity, &v.PriceAtPurchase,
			&v.ProductName, &v.ImageURL); err != nil {
			return nil, err
		}
		if idx, ok := index[v.OrderID]; ok {
			views[idx].Items = append(views[idx].Items, v)
		}
	}
	return views, irows.Err()
}

// ListExpiredPending: order PENDING yang lewat TTL, beserta item utk
// pengembalian stok.
func (r *Repo) ListExpiredPending(ctx context.Context, olderThan time.Time) ([]OrderView, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, buyer_id, total_amount, admin_fee, status, payment_id, created_at
		FROM orders WHERE status=$1 AND created_at < $2`, StatusPending, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []OrderView
	index := map[string]int{}
	var ids []string
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.TotalAmount, &o.AdminFee, &o.Status, &o.PaymentID, &o.CreatedAt); err != nil {
			return nil, err
		}
		index[o.ID] = len(views)
		ids = append(ids, o.ID)
		views = append(views, OrderView{Order: o})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return views, nil
	}

	irows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_purchase
		FROM order_items WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var it OrderItem
		if err := irows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceAtPurchase); err != nil {
			return nil, err
		}
		if idx, ok := index[it.OrderID]; ok {
			views[idx].Items = append(views[idx].Items, ItemView{OrderItem: it})
		}
	}
	return views, irows.Err()
}

// ExpireTx: kembalikan stok lalu tandai EXPIRED, satu transaksi per
// order. false kalau webhook keburu menang (status bukan PENDING lagi).
func (r *Repo) ExpireTx(ctx context.Context, ord OrderView) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// lock + cek status dulu; restock hanya kalau masih PENDING
	var status Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, ord.ID).Scan(&status)
	if err != nil {
		return false, err
	}
	if status != StatusPending {
		return false, nil
	}

	for _, it := range ord.Items {
		if err := catalog.RestoreStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return false, err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, ord.ID, StatusExpired); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
