package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DecrementStock: decrement kondisional, bukan read-then-write.
// RowsAffected 0 berarti stok kurang pada saat commit -> caller rollback.
func DecrementStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock mengembalikan stok (reversal order EXPIRED).
func RestoreStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	_, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1`, productID, qty)
	return err
}
