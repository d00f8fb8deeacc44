package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/bankcore/internal/adapter/http"
	"github.com/iho/bankcore/internal/adapter/http/handler"
	"github.com/iho/bankcore/internal/adapter/http/middleware"
	"github.com/iho/bankcore/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/bankcore/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankcore/internal/adapter/repository/redis"
	"github.com/iho/bankcore/internal/infrastructure/config"
	"github.com/iho/bankcore/internal/infrastructure/eventpublisher"
	"github.com/iho/bankcore/internal/infrastructure/idgen"
	"github.com/iho/bankcore/internal/infrastructure/lock"
	"github.com/iho/bankcore/internal/infrastructure/logger"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
	"github.com/iho/bankcore/internal/infrastructure/postgres"
	"github.com/iho/bankcore/internal/infrastructure/redis"
	"github.com/iho/bankcore/internal/infrastructure/retry"
	"github.com/iho/bankcore/internal/usecase"
)

const rateLimitCleanupInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logg := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "bankcore",
	})
	logger.SetGlobal(logg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// storage is the set of repositories backing the use cases.
type storage struct {
	txManager  usecase.TransactionManager
	accounts   usecase.AccountStore
	ledger     usecase.TransactionLedger
	outbox     usecase.OutboxRepository
	ledgerRepo usecase.LedgerRepository
	checks     map[string]handler.Check
	close      func()
}

func newStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		log.Warn().Msg("using in-memory storage; data is lost on restart")

		return &storage{
			txManager:  memory.NewTxManager(store),
			accounts:   memory.NewAccountRepository(store),
			ledger:     memory.NewLedger(store),
			outbox:     memory.NewOutboxRepository(store),
			ledgerRepo: memory.NewLedgerRepository(store),
			checks:     map[string]handler.Check{},
			close:      func() {},
		}, nil

	case config.StorageDriverPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")

		return &storage{
			txManager:  postgresRepo.NewTxManager(pool),
			accounts:   postgresRepo.NewAccountRepository(pool),
			ledger:     postgresRepo.NewTransactionRepository(pool),
			outbox:     postgresRepo.NewOutboxRepository(pool),
			ledgerRepo: postgresRepo.NewLedgerRepository(pool),
			checks: map[string]handler.Check{
				"postgres": pool.Ping,
			},
			close: pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// app is a fully wired server ready to be started.
type app struct {
	router      http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	close       func()
}

func newApp(ctx context.Context, cfg *config.Config, logg zerolog.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*app, error) {
	openingBalance, err := cfg.OpeningBalance()
	if err != nil {
		return nil, err
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.OutboxEnabled {
		store.outbox = postgresRepo.NewNullOutboxRepository()
		log.Info().Msg("outbox disabled; events are discarded")
	}

	closers := []func(){store.close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		idempotencyStore usecase.IdempotencyStore
		publisher        eventpublisher.Publisher = eventpublisher.NewLogPublisher(logg)
	)

	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		log.Info().Msg("connected to redis")

		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		publisher = eventpublisher.NewRedisPublisher(client, eventpublisher.DefaultChannel)
		store.checks["redis"] = func(ctx context.Context) error {
			return redis.Ping(ctx, client)
		}
	}

	m := metrics.New(reg)
	ids := idgen.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(usecase.AccountDeps{
		TxManager:      store.txManager,
		Accounts:       store.accounts,
		Ledger:         store.ledger,
		Outbox:         store.outbox,
		IDGen:          ids,
		Numbers:        idgen.NewNumberAllocator(),
		Metrics:        m,
		Logger:         logg,
		OpeningBalance: openingBalance,
	})

	retrier := retry.NewRetrier(retry.Config{
		MaxRetries:      cfg.EngineMaxRetries,
		InitialInterval: cfg.EngineRetryInterval,
		MaxInterval:     retry.DefaultConfig().MaxInterval,
		MaxElapsedTime:  retry.DefaultConfig().MaxElapsedTime,
	}, logg)

	bankingUC := usecase.NewBankingUseCase(usecase.BankingDeps{
		TxManager: store.txManager,
		Accounts:  store.accounts,
		Ledger:    store.ledger,
		Outbox:    store.outbox,
		Locks:     lock.NewManager(cfg.LockTimeout),
		Retrier:   retrier,
		IDGen:     ids,
		Metrics:   m,
		Logger:    logg,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).
		OnReject(func(r *http.Request) {
			m.RateLimitHits.WithLabelValues(rateLimitLabel(r.URL.Path)).Inc()
		})

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(bankingUC),
		HistoryHandler:     handler.NewHistoryHandler(usecase.NewHistoryUseCase(store.accounts, store.ledger)),
		LedgerHandler: handler.NewLedgerHandler(
			usecase.NewLedgerUseCase(store.ledgerRepo),
			usecase.NewReconciliationUseCase(store.accounts, store.ledgerRepo),
		),
		HealthHandler:    handler.NewHealthHandler(store.checks),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		Logger:           logg,
	})

	return &app{
		router: router,
		publisher: eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: store.outbox,
			Publisher:  publisher,
			Logger:     logg,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
		}),
		rateLimiter: rateLimiter,
		close:       closeAll,
	}, nil
}

// rateLimitLabel keeps the metric label set bounded: rejected requests never
// reach the router, so only the first path segment is known.
func rateLimitLabel(path string) string {
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if segment == "" {
		return "/"
	}

	return "/" + segment
}

func run(ctx context.Context, cfg *config.Config, logg zerolog.Logger) error {
	a, err := newApp(ctx, cfg, logg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}
	defer a.close()

	bgCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	go func() {
		if err := a.publisher.Start(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()
	go a.rateLimiter.Run(bgCtx, rateLimitCleanupInterval)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Str("storage", cfg.StorageDriver).
			Bool("redis", cfg.RedisEnabled).
			Msg("starting server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	cancelBackground()

	// Flush what the last requests committed.
	if _, err := a.publisher.Drain(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("final outbox drain failed")
	}

	return nil
}
