package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledgerpay/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

type ledgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) LedgerStore {
	return &ledgerStore{
		db: db,
	}
}

func (s *ledgerStore) CreateWallet(ctx context.Context, customerKey string) (*models.Wallet, error) {
	wallet := &models.Wallet{
		CustomerPhoneNumber: customerKey,
		Balance:             decimal.Zero,
	}
	if err := s.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateWallet
		}
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

func (s *ledgerStore) GetBalance(ctx context.Context, customerKey string) (BalanceSnapshot, error) {
	var wallet models.Wallet
	err := s.db.WithContext(ctx).
		Select("balance", "version").
		Where("customer_phone_number = ?", customerKey).
		Take(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceSnapshot{}, ErrWalletNotFound
		}
		return BalanceSnapshot{}, fmt.Errorf("failed to get balance: %w", err)
	}
	return BalanceSnapshot{Balance: wallet.Balance, Version: wallet.Version}, nil
}

func (s *ledgerStore) CreateChargeRecord(ctx context.Context, rec ChargeRecord) (uint, error) {
	var transactionID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn := &models.Transaction{
			Status: models.TransactionStatusPending,
			Amount: rec.Amount,
			Cause:  rec.Cause,
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		charge := &models.Charge{
			TransactionID: txn.ID,
			UserID:        rec.UserID,
			Token:         rec.Token,
		}
		if err := tx.Omit(clause.Associations).Create(charge).Error; err != nil {
			return err
		}

		transactionID = txn.ID
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrChargeConflict
		}
		return 0, fmt.Errorf("failed to create charge: %w", err)
	}

	return transactionID, nil
}

// LookupCharge matches user, token and transaction in one query so a miss
// never tells the caller which of the three was wrong.
func (s *ledgerStore) LookupCharge(ctx context.Context, userID, token string, transactionID uint) (uint, error) {
	var charge models.Charge
	err := s.db.WithContext(ctx).
		Select("transaction_id").
		Where("user_id = ? AND token = ? AND transaction_id = ?", userID, token, transactionID).
		Take(&charge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrChargeNotFound
		}
		return 0, fmt.Errorf("failed to look up charge: %w", err)
	}
	return charge.TransactionID, nil
}

// SettleCharge flips the transaction from PENDING to PAID and credits its
// stored amount to the wallet. The status update is conditional, so of any
// number of concurrent settles for one transaction exactly one commits.
func (s *ledgerStore) SettleCharge(ctx context.Context, transactionID uint, customerKey string) (*SettleResult, error) {
	var result *SettleResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.Select("id", "amount").Take(&txn, transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}

		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", transactionID, models.TransactionStatusPending).
			Update("status", models.TransactionStatusPaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		res = tx.Model(&models.Wallet{}).
			Where("customer_phone_number = ?", customerKey).
			Updates(map[string]interface{}{
				"balance": gorm.Expr("balance + ?", txn.Amount),
				"version": gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrWalletNotFound
		}

		// the row is locked by the update above, so this is the committed state
		var wallet models.Wallet
		if err := tx.Select("balance", "version").
			Where("customer_phone_number = ?", customerKey).
			Take(&wallet).Error; err != nil {
			return err
		}

		result = &SettleResult{
			TransactionID: txn.ID,
			Amount:        txn.Amount,
			Wallet:        BalanceSnapshot{Balance: wallet.Balance, Version: wallet.Version},
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTransactionNotFound),
			errors.Is(err, ErrAlreadySettled),
			errors.Is(err, ErrWalletNotFound):
			return nil, err
		}
		return nil, fmt.Errorf("failed to settle charge: %w", err)
	}

	return result, nil
}

func (s *ledgerStore) ListTransactions(ctx context.Context, userID string, page, limit int) ([]models.TransactionRecord, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	records := make([]models.TransactionRecord, 0, limit)
	err := s.db.WithContext(ctx).
		Table("transactions AS t").
		Select("t.id AS id, t.created_at AS time, t.amount AS amount, t.cause AS cause").
		Joins("JOIN charges AS c ON c.transaction_id = t.id").
		Where("c.user_id = ?", userID).
		Order("t.created_at DESC").
		Order("t.id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return records, nil
}

func (s *ledgerStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// sqlite reports constraint failures only through the message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
