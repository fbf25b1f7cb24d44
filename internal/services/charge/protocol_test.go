package charge

import (
	"context"
	"sync"
	"testing"

	"ledgerpay/internal/repositories"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newLedger(t *testing.T, wallets ...string) repositories.LedgerStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repositories.Migrate(db))

	store := repositories.NewLedgerStore(db)
	for _, key := range wallets {
		_, err := store.CreateWallet(context.Background(), key)
		require.NoError(t, err)
	}
	return store
}

func balanceOf(t *testing.T, store repositories.LedgerStore, key string) decimal.Decimal {
	t.Helper()
	snap, err := store.GetBalance(context.Background(), key)
	require.NoError(t, err)
	return snap.Balance
}

func TestProtocol_CreateThenAcknowledge(t *testing.T) {
	store := newLedger(t, "7")
	svc := NewService(store, nil, nil, Config{AckURL: "https://pay.test/charge_ack"}, nil)
	ctx := context.Background()

	handle, err := svc.CreateCharge(ctx, "7", decimal.RequireFromString("12.5"))
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/charge_ack", handle.AckURL)
	assert.Len(t, handle.Token, 32)

	// creating a charge moves no money
	assert.True(t, balanceOf(t, store, "7").IsZero())

	require.NoError(t, svc.AcknowledgeCharge(ctx, "7", handle.Token, handle.TransactionID))
	assert.True(t, decimal.RequireFromString("12.5").Equal(balanceOf(t, store, "7")))

	err = svc.AcknowledgeCharge(ctx, "7", handle.Token, handle.TransactionID)
	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.True(t, decimal.RequireFromString("12.5").Equal(balanceOf(t, store, "7")))
}

func TestProtocol_MismatchedAcknowledgment(t *testing.T) {
	store := newLedger(t, "7", "8")
	svc := NewService(store, nil, nil, Config{}, nil)
	ctx := context.Background()

	mine, err := svc.CreateCharge(ctx, "7", decimal.NewFromInt(10))
	require.NoError(t, err)
	theirs, err := svc.CreateCharge(ctx, "8", decimal.NewFromInt(20))
	require.NoError(t, err)

	tests := []struct {
		name  string
		user  string
		token string
		trxID uint
	}{
		{name: "wrong token", user: "7", token: theirs.Token, trxID: mine.TransactionID},
		{name: "wrong transaction", user: "7", token: mine.Token, trxID: theirs.TransactionID},
		{name: "wrong user", user: "8", token: mine.Token, trxID: mine.TransactionID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AcknowledgeCharge(ctx, tt.user, tt.token, tt.trxID)
			assert.ErrorIs(t, err, ErrChargeNotFound)
			assert.True(t, balanceOf(t, store, "7").IsZero())
			assert.True(t, balanceOf(t, store, "8").IsZero())
		})
	}
}

func TestProtocol_ConcurrentAcknowledgments(t *testing.T) {
	store := newLedger(t, "7")
	svc := NewService(store, nil, nil, Config{}, nil)
	ctx := context.Background()

	handle, err := svc.CreateCharge(ctx, "7", decimal.NewFromInt(25))
	require.NoError(t, err)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.AcknowledgeCharge(ctx, "7", handle.Token, handle.TransactionID)
		}(i)
	}
	wg.Wait()

	var ok, settled int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrAlreadySettled):
			settled++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, settled)
	assert.True(t, decimal.NewFromInt(25).Equal(balanceOf(t, store, "7")))
}

func TestProtocol_DuplicateTokenIsRejected(t *testing.T) {
	store := newLedger(t, "7")
	svc := NewService(store, nil, nil, Config{Tokens: fixedToken("00112233445566778899aabbccddeeff")}, nil)
	ctx := context.Background()

	_, err := svc.CreateCharge(ctx, "7", decimal.NewFromInt(1))
	require.NoError(t, err)

	_, err = svc.CreateCharge(ctx, "7", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrChargeExists)

	records, err := store.ListTransactions(ctx, "7", 1, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestProtocol_AcknowledgeWithoutWallet(t *testing.T) {
	store := newLedger(t)
	svc := NewService(store, nil, nil, Config{}, nil)
	ctx := context.Background()

	handle, err := svc.CreateCharge(ctx, "42", decimal.NewFromInt(3))
	require.NoError(t, err)

	err = svc.AcknowledgeCharge(ctx, "42", handle.Token, handle.TransactionID)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}
