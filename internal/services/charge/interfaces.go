package charge

import (
	"context"

	"ledgerpay/internal/repositories"

	"github.com/shopspring/decimal"
)

type Service interface {
	CreateCharge(ctx context.Context, userID string, amount decimal.Decimal) (*ChargeHandle, error)
	AcknowledgeCharge(ctx context.Context, userID, token string, transactionID uint) error
}

// BalanceRefresher caches the balance a settle committed. Writing the new
// balance, rather than dropping the entry, keeps a reader that loaded the
// wallet before the credit from filling the cache with the older value.
type BalanceRefresher interface {
	RefreshBalance(ctx context.Context, customerKey string, snapshot repositories.BalanceSnapshot) error
}
