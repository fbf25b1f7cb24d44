// Package app assembles the ledger service: it opens the process-wide
// resources once, wires the services and serves HTTP until shut down.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledgerpay/internal/broker"
	"ledgerpay/internal/config"
	"ledgerpay/internal/handlers"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/repositories/cache"
	"ledgerpay/internal/repositories/events"
	"ledgerpay/internal/routes"
	"ledgerpay/internal/services/charge"
	"ledgerpay/internal/services/wallet"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = time.Minute
)

type App struct {
	cfg       *config.Config
	log       *slog.Logger
	db        *gorm.DB
	cache     *cache.CacheService
	publisher events.Publisher
	server    *fiber.App
}

// Deps are the already opened resources the HTTP layer is built from.
type Deps struct {
	Store     repositories.LedgerStore
	Cache     *cache.CacheService
	Publisher events.Publisher
}

// New opens the database, Redis and Kafka connections and builds the server.
// Redis and Kafka are optional: when unavailable the service runs without a
// balance cache or without events.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	db, err := repositories.OpenPostgres(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, err
	}
	if err := repositories.Migrate(db); err != nil {
		_ = repositories.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("connected to database", "host", cfg.Postgres.Host, "name", cfg.Postgres.Name)

	a := &App{
		cfg:       cfg,
		log:       log,
		db:        db,
		cache:     openCache(ctx, cfg.Redis, log),
		publisher: openPublisher(cfg.Kafka, log),
	}

	a.server = NewServer(cfg, Deps{
		Store:     repositories.NewLedgerStore(db),
		Cache:     a.cache,
		Publisher: a.publisher,
	}, log)

	return a, nil
}

func openCache(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) *cache.CacheService {
	svc := cache.NewCacheService(cache.NewRedisClient(cfg), cfg.BalanceTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := svc.HealthCheck(pingCtx); err != nil {
		log.Warn("redis unavailable, balance cache disabled", "error", err)
		_ = svc.Close()
		return nil
	}
	log.Info("connected to redis", "host", cfg.Host)
	return svc
}

func openPublisher(cfg config.KafkaConfig, log *slog.Logger) events.Publisher {
	if !cfg.Enabled() {
		log.Info("kafka brokers not configured, ledger events disabled")
		return events.NoopPublisher{}
	}
	log.Info("publishing ledger events", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return events.NewKafkaPublisher(broker.NewKafkaWriter(cfg))
}

// NewServer builds the fiber app with middleware and routes.
func NewServer(cfg *config.Config, deps Deps, log *slog.Logger) *fiber.App {
	// avoid handing a typed nil to the interfaces below
	var balances wallet.BalanceCache
	var cacheCheck handlers.CacheChecker
	if deps.Cache != nil {
		balances = deps.Cache
		cacheCheck = deps.Cache
	}

	walletService := wallet.NewService(
		deps.Store,
		balances,
		wallet.Config{},
		wallet.NewLogMetricsCollector(log),
		log,
	)
	chargeService := charge.NewService(
		deps.Store,
		walletService,
		deps.Publisher,
		charge.Config{AckURL: cfg.Charge.AckURL},
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      "ledgerpay",
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Wallet: handlers.NewWalletHandler(walletService, cfg.Server.RequestTimeout, log),
		Charge: handlers.NewChargeHandler(chargeService, cfg.Server.RequestTimeout, log),
		Health: handlers.NewHealthHandler(deps.Store, cacheCheck, log),
	}, cfg.Server.AckRateLimit)

	return app
}

func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.Error("unhandled request error", "path", c.Path(), "error", err)
		}
		return utils.Error(c, code, message)
	}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	go repositories.LogPoolStats(ctx, a.db, a.log, poolStatsInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Listen(":" + a.cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.server.ShutdownWithContext(shutdownCtx)
}

// Close releases the event writer, Redis and the database pool, in that order.
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, repositories.Close(a.db))
	return errors.Join(errs...)
}
