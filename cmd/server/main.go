// Package main is the entry point for the ledger service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ledgerpay/internal/app"
	"ledgerpay/internal/config"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	log := app.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}

	runErr := a.Run(ctx)
	if err := a.Close(); err != nil {
		log.Warn("failed to release resources", "error", err)
	}
	if runErr != nil {
		log.Error("server stopped", "error", runErr)
		os.Exit(1)
	}
}
