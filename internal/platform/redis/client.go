package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"access-gate/internal/platform/config"
)

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
}

// New creates a new Redis client from the provided configuration.
// Returns nil if the URL is empty (Redis not configured).
func New(url string, opts config.RedisOptions) (*Client, error) {
	if url == "" {
		return nil, nil
	}

	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	parsed.PoolSize = opts.PoolSize
	parsed.MinIdleConns = opts.MinIdleConns
	parsed.DialTimeout = opts.DialTimeout
	parsed.ReadTimeout = opts.ReadTimeout
	parsed.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(parsed)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}
