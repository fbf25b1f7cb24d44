package wallet

import (
	"context"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"

	"github.com/shopspring/decimal"
)

// Service defines the wallet read path
type Service interface {
	GetBalance(ctx context.Context, customerKey string) (decimal.Decimal, error)
	ListHistory(ctx context.Context, userID string, page, limit int) ([]models.TransactionRecord, error)

	// RefreshBalance caches a balance that was just committed. If the write
	// fails the entry is dropped so the next read goes to the store.
	RefreshBalance(ctx context.Context, customerKey string, snapshot repositories.BalanceSnapshot) error
}
