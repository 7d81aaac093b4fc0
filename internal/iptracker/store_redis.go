package iptracker

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const (
	// Per-identity known-address sets.
	knownKeyPrefix = "ip:known:"
	// Global set of administratively flagged addresses.
	flaggedKey = "ip:flagged"
)

// RedisChecker is a Redis-backed hot path for distributed deployments where
// multiple instances must share the known-address state. SADD is the atomic
// check-and-record: its reply says whether the member was new.
type RedisChecker struct {
	client *redis.Client
}

func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) LinkIfNew(ctx context.Context, identityID, address string) (bool, error) {
	added, err := c.client.SAdd(ctx, knownKeyPrefix+identityID, address).Result()
	if err != nil {
		return false, err
	}
	// added == 0 means the member already existed: the address was known.
	return added == 0, nil
}

func (c *RedisChecker) IsFlagged(ctx context.Context, address string) (bool, error) {
	flagged, err := c.client.SIsMember(ctx, flaggedKey, address).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return flagged, nil
}

// Flag sets or clears the global suspicious flag for an address.
// Administrative flag writes reach it through MirroredStore so the decision
// hot path sees them.
func (c *RedisChecker) Flag(ctx context.Context, address string, suspicious bool) error {
	if suspicious {
		return c.client.SAdd(ctx, flaggedKey, address).Err()
	}
	return c.client.SRem(ctx, flaggedKey, address).Err()
}

// Forget drops the address from each identity's known set and clears its
// flag, so the address reads as novel again after removal.
func (c *RedisChecker) Forget(ctx context.Context, address string, identityIDs []string) error {
	for _, identityID := range identityIDs {
		if err := c.client.SRem(ctx, knownKeyPrefix+identityID, address).Err(); err != nil {
			return err
		}
	}
	return c.client.SRem(ctx, flaggedKey, address).Err()
}
