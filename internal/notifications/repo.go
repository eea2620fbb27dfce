package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Insert(ctx context.Context, userID, title, message string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO notifications(id, user_id, title, message)
		VALUES ($1,$2,$3,$4)`,
		uuid.NewString(), userID, title, message)
	return err
}

// ListByUser: 20 terakhir + hitungan belum dibaca.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Notification, int, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, title, message, is_read, created_at
		FROM notifications WHERE user_id=$1
		ORDER BY created_at DESC LIMIT 20`, userID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Notification
	unread := 0
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		if !n.IsRead {
			unread++
		}
		out = append(out, n)
	}
	return out, unread, rows.Err()
}

func (r *Repo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE notifications SET is_read=true
		WHERE user_id=$1 AND is_read=false`, userID)
	return err
}
