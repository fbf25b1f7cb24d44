package charge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/repositories/events"
	"ledgerpay/internal/utils"

	"github.com/shopspring/decimal"
)

type service struct {
	store     repositories.LedgerStore
	balances  BalanceRefresher
	publisher events.Publisher
	config    Config
	log       *slog.Logger
}

// NewService creates the charge protocol engine
func NewService(
	store repositories.LedgerStore,
	balances BalanceRefresher,
	publisher events.Publisher,
	config Config,
	log *slog.Logger,
) Service {
	if store == nil {
		panic("store is required")
	}

	if config.AckURL == "" {
		config.AckURL = DefaultAckURL
	}
	if config.Tokens == nil {
		config.Tokens = utils.GenerateToken
	}
	if config.PublishTimeout == 0 {
		config.PublishTimeout = DefaultPublishTimeout
	}

	// Publisher and logger are optional
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &service{
		store:     store,
		balances:  balances,
		publisher: publisher,
		config:    config,
		log:       log.With("component", "charge"),
	}
}

func (s *service) CreateCharge(ctx context.Context, userID string, amount decimal.Decimal) (*ChargeHandle, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUser
	}
	// the stored column keeps two decimals; anything finer would be credited rounded
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return nil, ErrInvalidAmount
	}

	token, err := s.config.Tokens()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	transactionID, err := s.store.CreateChargeRecord(ctx, repositories.ChargeRecord{
		UserID: userID,
		Amount: amount,
		Token:  token,
		Cause:  models.CauseCharge,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrChargeConflict) {
			s.log.Warn("charge rejected as duplicate", "user_id", userID)
			return nil, ErrChargeExists
		}
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}

	s.log.Info("charge created",
		"user_id", userID,
		"trx_id", transactionID,
		"amount", amount.String(),
	)
	s.publish(ctx, events.NewLedgerEvent(events.TypeChargeCreated, userID, transactionID, amount))

	return &ChargeHandle{
		AckURL:        s.config.AckURL,
		Token:         token,
		TransactionID: transactionID,
	}, nil
}

// AcknowledgeCharge settles a charge. The lookup only proves the caller knows
// the token; replays pass it and are stopped by the settle step.
func (s *service) AcknowledgeCharge(ctx context.Context, userID, token string, transactionID uint) error {
	trxID, err := s.store.LookupCharge(ctx, userID, token, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrChargeNotFound) {
			s.log.Warn("charge acknowledgment did not match", "trx_id", transactionID)
			return ErrChargeNotFound
		}
		return fmt.Errorf("failed to look up charge: %w", err)
	}

	result, err := s.store.SettleCharge(ctx, trxID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrAlreadySettled):
			s.log.Warn("charge acknowledgment replayed", "user_id", userID, "trx_id", trxID)
			return ErrAlreadySettled
		case errors.Is(err, repositories.ErrWalletNotFound):
			return ErrWalletNotFound
		case errors.Is(err, repositories.ErrTransactionNotFound):
			return ErrChargeNotFound
		}
		return fmt.Errorf("failed to settle charge: %w", err)
	}

	s.log.Info("charge settled",
		"user_id", userID,
		"trx_id", trxID,
		"amount", result.Amount.String(),
	)

	if s.balances != nil {
		if err := s.balances.RefreshBalance(ctx, userID, result.Wallet); err != nil {
			s.log.Warn("failed to refresh cached balance", "user_id", userID, "error", err)
		}
	}
	s.publish(ctx, events.NewLedgerEvent(events.TypeChargeSettled, userID, trxID, result.Amount))

	return nil
}

// publish runs after the ledger has committed, so a broker failure is logged
// and never reported to the caller.
func (s *service) publish(ctx context.Context, event events.LedgerEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.PublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish ledger event",
			"type", event.Type,
			"trx_id", event.TransactionID,
			"error", err,
		)
	}
}
