// Package cache wraps the Redis client with the atomic primitives the
// deduplicator and buffer engine need: set-if-absent with TTL, and an
// atomic get-and-delete for single-dispatch flush semantics.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client wraps a go-redis client with the domain-specific atomic operations
// used across the dedup and buffer packages.
type Client struct {
	rdb *redis.Client
}

// New builds a Client from a redis:// URL.
func New(url string) (*Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Client{rdb: redis.NewClient(opt)}, nil
}

// Raw exposes the underlying go-redis client for callers that need direct access.
func (c *Client) Raw() *redis.Client {
	return c.rdb
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetNX atomically sets key to value with ttl only if key does not already
// exist, returning whether this call won the race.
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

// Lease atomically acquires an exclusive lease on key for ttl; Buffer.AddMessage
// uses it to serialize concurrent appends to the same chat's buffer.
func (c *Client) Lease(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, token, ttl).Result()
}

// ReleaseLease releases a lease previously acquired with Lease, but only if
// token still matches the holder (a compare-and-delete Lua script), so a
// leaseholder can never release another holder's lease after its own lease expired.
var releaseLeaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// ReleaseLease releases the lease at key if and only if token is still the holder.
func (c *Client) ReleaseLease(ctx context.Context, key, token string) error {
	return releaseLeaseScript.Run(ctx, c.rdb, []string{key}, token).Err()
}

// GetAndDelete atomically reads and removes key, returning redis.Nil if it
// did not exist.
var getAndDeleteScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v then
	redis.call("DEL", KEYS[1])
end
return v
`)

// GetAndDelete atomically fetches and clears key.
func (c *Client) GetAndDelete(ctx context.Context, key string) (string, error) {
	res, err := getAndDeleteScript.Run(ctx, c.rdb, []string{key}).Result()
	if err == redis.Nil {
		return "", redis.Nil
	}
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", redis.Nil
	}
	return res.(string), nil
}

// ScanKeys returns all keys matching pattern, used by the buffer flush
// worker to find chats with pending buffered messages.
func (c *Client) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
