package webhook

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-market-checkout/internal/redisx"
)

// RedisDedup implementasi Deduper; error redis dianggap belum pernah
// lihat supaya delivery tetap diproses (DB yang jaga idempotensi).
type RedisDedup struct {
	Client *redis.Client
}

func (d *RedisDedup) Seen(ctx context.Context, transactionID, status string) bool {
	key := fmt.Sprintf(redisx.KeyWebhookDedup, transactionID, status)
	n, err := d.Client.Exists(ctx, key).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Mark dipanggil reconciler hanya setelah transisi DB sukses.
func (d *RedisDedup) Mark(ctx context.Context, transactionID, status string) {
	key := fmt.Sprintf(redisx.KeyWebhookDedup, transactionID, status)
	_ = d.Client.Set(ctx, key, "1", redisx.TTLWebhookDedup).Err()
}
