package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrNotOwner          = errors.New("product not owned by seller")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, seller_id, name, description, price, stock, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, seller_id, name, description, price, stock, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.SellerID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL)
	return err
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repo) ListBySeller(ctx context.Context, sellerID string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products WHERE seller_id=$1 ORDER BY created_at DESC`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update hanya field mutable; harga & stok lewat jalur sendiri.
func (r *Repo) Update(ctx context.Context, sellerID string, p *Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$3, description=$4, price=$5, image_url=$6, updated_at=now()
		WHERE id=$1 AND seller_id=$2`,
		p.ID, sellerID, p.Name, p.Description, p.Price, p.ImageURL)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, sellerID, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1 AND seller_id=$2`, id, sellerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotOwner
	}
	return nil
}
