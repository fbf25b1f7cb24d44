package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/repositories/cache"

	"github.com/shopspring/decimal"
)

type service struct {
	store   repositories.LedgerStore
	cache   BalanceCache
	config  Config
	metrics MetricsCollector
	log     *slog.Logger
}

// NewService creates a new wallet read service. A nil cache disables caching.
func NewService(
	store repositories.LedgerStore,
	balances BalanceCache,
	config Config,
	metrics MetricsCollector,
	log *slog.Logger,
) Service {
	if store == nil {
		panic("store is required")
	}

	if config.DisableCache {
		balances = nil
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &service{
		store:   store,
		cache:   balances,
		config:  config,
		metrics: metrics,
		log:     log.With("component", "wallet"),
	}
}

func (s *service) GetBalance(ctx context.Context, customerKey string) (decimal.Decimal, error) {
	if strings.TrimSpace(customerKey) == "" {
		return decimal.Zero, ErrInvalidCustomer
	}

	if s.cache != nil {
		balance, err := s.cache.GetBalance(ctx, customerKey)
		switch {
		case err == nil:
			s.metrics.RecordCacheHit(customerKey)
			return balance, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.metrics.RecordCacheMiss(customerKey)
		default:
			s.metrics.RecordError("get_balance", "cache")
			s.log.Warn("balance cache read failed", "customer", customerKey, "error", err)
		}
	}

	snap, err := s.store.GetBalance(ctx, customerKey)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return decimal.Zero, ErrWalletNotFound
		}
		s.metrics.RecordError("get_balance", "store")
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	if s.cache != nil {
		// a credit may have committed since the store read; the versioned
		// write then leaves the newer entry in place
		stored, err := s.cache.SetBalance(ctx, customerKey, snap.Balance, snap.Version)
		switch {
		case err != nil:
			s.metrics.RecordError("get_balance", "cache")
			s.log.Warn("balance cache write failed", "customer", customerKey, "error", err)
		case !stored:
			s.log.Debug("newer cached balance kept", "customer", customerKey, "version", snap.Version)
		}
	}

	return snap.Balance, nil
}

func (s *service) ListHistory(ctx context.Context, userID string, page, limit int) ([]models.TransactionRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidCustomer
	}
	if page < 1 || limit < 1 || limit > MaxPageLimit {
		return nil, ErrInvalidPagination
	}

	records, err := s.store.ListTransactions(ctx, userID, page, limit)
	if err != nil {
		s.metrics.RecordError("list_history", "store")
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if records == nil {
		records = []models.TransactionRecord{}
	}
	return records, nil
}

func (s *service) RefreshBalance(ctx context.Context, customerKey string, snapshot repositories.BalanceSnapshot) error {
	if s.cache == nil {
		return nil
	}

	_, err := s.cache.SetBalance(ctx, customerKey, snapshot.Balance, snapshot.Version)
	if err == nil {
		return nil
	}
	s.metrics.RecordError("refresh_balance", "cache")
	if delErr := s.cache.InvalidateBalance(ctx, customerKey); delErr != nil {
		return errors.Join(err, delErr)
	}
	return err
}
