// Command wallet_seed creates an empty wallet for WALLET_PHONE.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ledgerpay/internal/app"
	"ledgerpay/internal/config"
	"ledgerpay/internal/repositories"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	log := app.NewLogger(os.Stdout, cfg.LogLevel)

	phone := os.Getenv("WALLET_PHONE")
	if phone == "" {
		log.Error("WALLET_PHONE must be set in environment")
		os.Exit(1)
	}

	if err := seed(cfg, phone, log); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(cfg *config.Config, phone string, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repositories.OpenPostgres(ctx, cfg.Postgres, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}()

	if err := repositories.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	wallet, err := repositories.NewLedgerStore(db).CreateWallet(ctx, phone)
	if errors.Is(err, repositories.ErrDuplicateWallet) {
		log.Info("wallet already exists", "customer", phone)
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("wallet created", "customer", phone, "id", wallet.ID)
	return nil
}
