package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("cart item not found")

type Repo struct{ DB *pgxpool.Pool }

// Add: upsert per (user, product); kalau sudah ada, qty ditambah.
func (r *Repo) Add(ctx context.Context, userID, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("invalid quantity %d", qty)
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items(id, user_id, product_id, quantity)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		uuid.NewString(), userID, productID, qty)
	return err
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]ItemView, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at,
		       p.name, p.price, p.stock, p.image_url
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemView
	for rows.Next() {
		var v ItemView
		if err := rows.Scan(&v.ID, &v.UserID, &v.ProductID, &v.Quantity, &v.CreatedAt,
			&v.ProductName, &v.ProductPrice, &v.ProductStock, &v.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) Remove(ctx context.Context, userID, itemID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, itemID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteForProducts: hapus hanya baris produk yang dibeli, bukan seisi
// keranjang; item lain harus selamat dari checkout.
func DeleteForProducts(ctx context.Context, tx pgx.Tx, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		DELETE FROM cart_items WHERE user_id=$1 AND product_id = ANY($2)`,
		userID, productIDs)
	return err
}
