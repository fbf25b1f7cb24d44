package repositories

import (
	"context"
	"errors"

	"ledgerpay/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrDuplicateWallet     = errors.New("wallet already exists")
	ErrChargeNotFound      = errors.New("charge not found")
	ErrChargeConflict      = errors.New("charge already exists")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadySettled      = errors.New("transaction already settled")
)

// LedgerStore is the durable state behind wallets, transactions and charges.
// Every method runs as a single database transaction; callers never see a
// partially applied write.
type LedgerStore interface {
	// Wallets
	CreateWallet(ctx context.Context, customerKey string) (*models.Wallet, error)
	GetBalance(ctx context.Context, customerKey string) (BalanceSnapshot, error)

	// Charge lifecycle
	CreateChargeRecord(ctx context.Context, rec ChargeRecord) (uint, error)
	LookupCharge(ctx context.Context, userID, token string, transactionID uint) (uint, error)
	SettleCharge(ctx context.Context, transactionID uint, customerKey string) (*SettleResult, error)

	// History
	ListTransactions(ctx context.Context, userID string, page, limit int) ([]models.TransactionRecord, error)

	Ping(ctx context.Context) error
}

// ChargeRecord is what CreateChargeRecord persists: a PENDING transaction
// for Amount and the charge row tying it to UserID and Token.
type ChargeRecord struct {
	UserID string
	Amount decimal.Decimal
	Token  string
	Cause  string
}

// BalanceSnapshot is a wallet balance together with the wallet version it
// was read at.
type BalanceSnapshot struct {
	Balance decimal.Decimal
	Version int64
}

// SettleResult describes a committed settlement. Wallet is the credited
// wallet as of that commit.
type SettleResult struct {
	TransactionID uint
	Amount        decimal.Decimal
	Wallet        BalanceSnapshot
}
