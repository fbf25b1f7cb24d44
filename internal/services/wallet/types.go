package wallet

import (
	"context"

	"github.com/shopspring/decimal"
)

// Config holds configuration for the read path
type Config struct {
	// DisableCache bypasses Redis entirely, even when a cache is supplied.
	DisableCache bool
}

// BalanceCache is the subset of the Redis cache service used for balances.
// SetBalance must never replace an entry written at a newer version.
type BalanceCache interface {
	GetBalance(ctx context.Context, customerKey string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, customerKey string, balance decimal.Decimal, version int64) (bool, error)
	InvalidateBalance(ctx context.Context, customerKey string) error
}

// MetricsCollector defines the interface for collecting read path metrics
type MetricsCollector interface {
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
	RecordError(operation, errType string)
}
