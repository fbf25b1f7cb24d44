package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var ErrCacheMiss = errors.New("cache miss")

// setIfNewer writes balance and version only when the cached entry is absent
// or holds an older version. A reader that loaded the store before a credit
// committed therefore cannot overwrite the credited balance.
var setIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('HSET', KEYS[1], 'balance', ARGV[1], 'version', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultTTL applies when NewCacheService is given a non-positive TTL.
const DefaultTTL = 30 * time.Second

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

func (s *CacheService) balanceKey(customerKey string) string {
	return s.GenerateKey("wallet", "balance", customerKey)
}

// Balance caching
func (s *CacheService) GetBalance(ctx context.Context, customerKey string) (decimal.Decimal, error) {
	vals, err := s.client.HMGet(ctx, s.balanceKey(customerKey), "balance", "version").Result()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get cached balance: %w", err)
	}
	raw, ok := vals[0].(string)
	if !ok {
		return decimal.Zero, ErrCacheMiss
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse cached balance: %w", err)
	}
	return balance, nil
}

// SetBalance caches balance as of wallet version. It reports false when the
// cache already holds the same or a newer version, in which case nothing is
// written.
func (s *CacheService) SetBalance(ctx context.Context, customerKey string, balance decimal.Decimal, version int64) (bool, error) {
	stored, err := setIfNewer.Run(ctx, s.client,
		[]string{s.balanceKey(customerKey)},
		balance.String(),
		strconv.FormatInt(version, 10),
		s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to set cached balance: %w", err)
	}
	return stored == 1, nil
}

func (s *CacheService) InvalidateBalance(ctx context.Context, customerKey string) error {
	return s.Delete(ctx, s.balanceKey(customerKey))
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *CacheService) GetStats() *redis.PoolStats {
	return s.client.PoolStats()
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
