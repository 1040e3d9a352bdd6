package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger-api/config"
	httpHandler "ledger-api/internal/adapter/http/handler"
	"ledger-api/internal/adapter/storage/memory"
	pgStorage "ledger-api/internal/adapter/storage/postgres"
	redisStorage "ledger-api/internal/adapter/storage/redis"
	"ledger-api/internal/core/ports"
	"ledger-api/internal/seed"
	"ledger-api/internal/service"
	"ledger-api/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// storage bundles the repositories of the configured driver.
type storage struct {
	accounts     ports.AccountRepository
	transactions ports.TransactionRepository
	users        ports.UserRepository
	audit        ports.AuditRepository
	transactor   ports.DBTransactor
	health       ports.HealthChecker
	close        func()
}

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config.yaml or ./config/config.yaml)")
	flag.Parse()

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("driver", cfg.Database.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting ledger API")

	ctx := context.Background()

	// Initialize storage
	store, err := openStorage(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.close()

	healthCheckers := []ports.HealthChecker{store.health}

	// Initialize Redis stores (optional)
	var (
		idempotencyCache ports.IdempotencyCache
		rateLimitStore   *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		idempotencyCache = redisStorage.NewIdempotencyCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled: no idempotency keys, no rate limiting")
	}

	// Initialize core services
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = randomSecret()
		log.Warn().Msg("jwt.secret not set, using a random secret; sessions end on restart")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(jwtSecret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	ledgerSvc := service.NewLedgerService(
		store.accounts,
		store.transactions,
		store.users,
		store.transactor,
		idempotencyCache,
		service.LedgerOptions{RequireActor: cfg.Ledger.RequireActor},
		logger.Component(log, "transfer_engine"),
	)
	authSvc := service.NewAuthService(store.users, store.accounts, store.transactor, hashSvc, tokenSvc)
	auditSvc := service.NewAuditService(store.audit, logger.Component(log, "audit"))

	// Apply seed fixture
	if cfg.Ledger.SeedFile != "" {
		fixture, err := seed.Load(cfg.Ledger.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Ledger.SeedFile).Msg("Failed to load seed file")
		}
		if _, err := seed.Apply(ctx, fixture, authSvc, ledgerSvc, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply seed")
		}
	}

	if cfg.Auth.AdminAPIKey == "" {
		log.Warn().Msg("auth.admin_api_key not set, X-API-Key access disabled")
	}

	// Load OpenAPI document for Swagger UI
	openAPI, err := os.ReadFile("docs/api/openapi.yaml")
	if err != nil {
		log.Warn().Err(err).Msg("OpenAPI document not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		AuthSvc:        authSvc,
		TokenSvc:       tokenSvc,
		AuditSvc:       auditSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		AdminAPIKey:    cfg.Auth.AdminAPIKey,
		RequireActor:   cfg.Ledger.RequireActor,
		OpenAPI:        openAPI,
		Logger:         logger.Component(log, "http"),
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*storage, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		log.Warn().Msg("Using in-memory storage; data is lost on exit")
		return &storage{
			accounts:     memory.NewAccountRepo(store),
			transactions: memory.NewTransactionRepo(store),
			users:        memory.NewUserRepo(store),
			audit:        memory.NewAuditRepo(store),
			transactor:   store,
			health:       memory.NewHealthCheck(store),
			close:        func() {},
		}, nil

	case config.DriverPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		if cfg.BootstrapSchema {
			if err := pgStorage.EnsureSchema(ctx, pool, log); err != nil {
				pool.Close()
				return nil, fmt.Errorf("bootstrap schema: %w", err)
			}
		}
		return &storage{
			accounts:     pgStorage.NewAccountRepo(pool),
			transactions: pgStorage.NewTransactionRepo(pool),
			users:        pgStorage.NewUserRepo(pool),
			audit:        pgStorage.NewAuditRepo(pool),
			transactor:   pgStorage.NewTransactor(pool),
			health:       pgStorage.NewHealthCheck(pool),
			close:        pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
