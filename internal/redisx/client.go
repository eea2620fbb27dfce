package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Cache: wrapper tipis di atas client. Handler dan reconciler memakainya
// lewat interface kecil supaya bisa di-stub tanpa redis beneran.
type Cache struct{ Client *redis.Client }

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *Cache) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return c.Client.Set(ctx, key, val, ttl).Err()
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.Client.Exists(ctx, key).Result()
	return n > 0, err
}

// SetStatus refresh cache status order di titik transisi, supaya
// GET status tidak menyajikan PENDING basi sampai TTL habis.
func (c *Cache) SetStatus(ctx context.Context, orderID, status string) {
	_ = c.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderID), status, TTLStatusCache)
}
