package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/goremit/internal/adapter/http"
	"github.com/iho/goremit/internal/adapter/http/handler"
	"github.com/iho/goremit/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/goremit/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goremit/internal/adapter/repository/redis"
	"github.com/iho/goremit/internal/engine/rate"
	"github.com/iho/goremit/internal/infrastructure/auth"
	"github.com/iho/goremit/internal/infrastructure/config"
	"github.com/iho/goremit/internal/infrastructure/eventpublisher"
	"github.com/iho/goremit/internal/infrastructure/logger"
	"github.com/iho/goremit/internal/infrastructure/metrics"
	"github.com/iho/goremit/internal/infrastructure/postgres"
	"github.com/iho/goremit/internal/infrastructure/redis"
	"github.com/iho/goremit/internal/usecase"
)

const (
	rateCachePrefix     = "goremit:"
	limiterCleanupEvery = time.Minute
	limiterMaxIdle      = 10 * time.Minute
)

// Database is the pool surface the server needs. Satisfied by *pgxpool.Pool.
type Database interface {
	postgresRepo.DBTX
	postgresRepo.TxBeginner
	Ping(ctx context.Context) error
}

// app holds the wired HTTP handler and its background workers.
type app struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := checkConfig(cfg); err != nil {
		return err
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClientWithConfig(ctx, redis.ClientConfig{
		URL:         cfg.RedisURL,
		PoolSize:    cfg.RedisPoolSize,
		DialTimeout: cfg.RedisDialTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := newApp(cfg, pool, redisClient, log, reg)

	workers, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	go func() {
		if err := a.publisher.Start(workers); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()
	go cleanupLimiters(workers, a.rateLimiter, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// checkConfig rejects settings that would start a server with a silently
// weaker setup than requested.
func checkConfig(cfg *config.Config) error {
	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return errors.New("AUTH_ENABLED requires JWT_SECRET")
	}
	if cfg.TokenIssuing && cfg.JWTSecret == "" {
		return errors.New("AUTH_TOKEN_ISSUING requires JWT_SECRET")
	}
	if cfg.CancellationWindow <= 0 {
		return errors.New("CANCELLATION_WINDOW must be positive")
	}
	if cfg.DefaultMargin.IsNegative() {
		return errors.New("DEFAULT_MARGIN must not be negative")
	}
	return nil
}

// newApp wires repositories, use cases and handlers into a router.
func newApp(cfg *config.Config, db Database, redisClient *goredis.Client, log zerolog.Logger, reg *prometheus.Registry) *app {
	m := metrics.New(reg)

	// Repositories
	txManager := postgresRepo.NewTxManager(db)
	retrier := postgresRepo.NewRetrier(logger.Component(log, "retrier"))
	idGen := postgresRepo.NewULIDGenerator()
	outboxRepo := postgresRepo.NewOutboxRepository(db)
	auditRepo := postgresRepo.NewAuditRepository(db)
	txRepo := postgresRepo.NewTransactionRepository(db)
	entryRepo := postgresRepo.NewLedgerEntryRepository(db)
	approvalRepo := postgresRepo.NewApprovalRepository(db)
	balanceRepo := postgresRepo.NewAgencyBalanceRepository(db)
	rateCache := redisRepo.NewRateCache(redisRepo.NewCache(redisClient, rateCachePrefix))
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	settingsUC := usecase.NewSettingsUseCase(
		txManager,
		postgresRepo.NewExchangeRateRepository(db),
		postgresRepo.NewCommissionTierRepository(db),
		postgresRepo.NewFeeRepository(db),
		postgresRepo.NewApprovalRuleRepository(db),
		outboxRepo, auditRepo, rateCache, idGen, retrier,
		logger.Component(log, "settings"), m,
	)
	settingsUC.SetRateCacheTTL(cfg.RateCacheTTL)

	transactionUC := usecase.NewTransactionUseCase(
		txManager, settingsUC, txRepo, approvalRepo, entryRepo,
		outboxRepo, auditRepo, idGen, retrier,
		logger.Component(log, "transactions"), m,
	)
	transactionUC.SetMargin(rate.Margin{Sell: cfg.DefaultMargin, Buy: cfg.DefaultMargin})

	approvalUC := usecase.NewApprovalUseCase(
		txManager, approvalRepo, txRepo, entryRepo, outboxRepo, auditRepo,
		idGen, retrier, logger.Component(log, "approvals"), m,
	)

	cancellationUC := usecase.NewCancellationUseCase(
		txManager, postgresRepo.NewCancellationRepository(db), txRepo, entryRepo,
		outboxRepo, auditRepo, idGen, retrier, logger.Component(log, "cancellations"), m,
	)
	cancellationUC.SetWindow(cfg.CancellationWindow)

	reconciliationUC := usecase.NewReconciliationUseCase(
		txManager, postgresRepo.NewReconciliationRepository(db), postgresRepo.NewCashOperationRepository(db),
		txRepo, balanceRepo, outboxRepo, auditRepo, idGen, retrier, m,
	)

	liquidityUC := usecase.NewLiquidityUseCase(
		txManager, postgresRepo.NewLiquidityRepository(db), balanceRepo,
		outboxRepo, auditRepo, idGen, retrier, m,
	)

	balanceLocks := usecase.NewKeyedLocker()
	reconciliationUC.SetLocker(balanceLocks)
	liquidityUC.SetLocker(balanceLocks)

	ledgerUC := usecase.NewLedgerUseCase(entryRepo)

	var jwtManager *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	var authHandler *handler.AuthHandler
	if jwtManager != nil {
		authHandler = handler.NewAuthHandler(jwtManager)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		HealthHandler: handler.NewHealthHandler(
			handler.PingerFunc(db.Ping),
			handler.PingerFunc(redis.Ping(redisClient)),
		),
		AuthHandler:           authHandler,
		SettingsHandler:       handler.NewSettingsHandler(settingsUC),
		TransactionHandler:    handler.NewTransactionHandler(transactionUC),
		ApprovalHandler:       handler.NewApprovalHandler(approvalUC),
		CancellationHandler:   handler.NewCancellationHandler(cancellationUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		LiquidityHandler:      handler.NewLiquidityHandler(liquidityUC),
		Logger:                logger.Component(log, "http"),
		Metrics:               m,
		MetricsHandler:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RateLimiter:           rateLimiter,
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		JWTManager:            jwtManager,
		AuthRequired:          cfg.AuthEnabled,
		TokenIssuing:          cfg.TokenIssuing,
	})

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		Outbox:    outboxRepo,
		Publisher: eventpublisher.NewLogPublisher(log),
		Logger:    log,
		BatchSize: cfg.OutboxBatchSize,
		Interval:  cfg.OutboxInterval,
	})

	return &app{
		handler:     router,
		publisher:   publisher,
		rateLimiter: rateLimiter,
	}
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(limiterCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Cleanup(limiterMaxIdle); n > 0 {
				log.Debug().Int("removed", n).Msg("dropped idle rate limiters")
			}
		}
	}
}
