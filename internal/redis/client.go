package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Client is the process-wide Redis handle, shared by the OAuth token
// store and the feature flag invalidation channel.
type Client struct {
	rdb *goredis.Client
}

// NewClient opens a client against a redis:// URL. The connection itself
// is established lazily; call Ping for an eager check.
func NewClient(redisURL string) (*Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return &Client{rdb: goredis.NewClient(opts)}, nil
}

// Ping round-trips the connection, for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying exposes the raw go-redis client for components that take a
// goredis.Cmdable, like the token store.
func (c *Client) Underlying() *goredis.Client {
	return c.rdb
}
