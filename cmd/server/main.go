// Package main is the entry point for the fueldesk API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fueldesk/internal/domain/auth"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/internal/domain/catalogs/tank"
	"fueldesk/internal/domain/closing"
	"fueldesk/internal/domain/ledger"
	"fueldesk/internal/domain/lossrate"
	"fueldesk/internal/domain/reports"
	v1 "fueldesk/internal/infrastructure/http/v1"
	"fueldesk/internal/infrastructure/storage/postgres"
	"fueldesk/internal/infrastructure/storage/postgres/auth_repo"
	"fueldesk/internal/infrastructure/storage/postgres/catalog_repo"
	"fueldesk/internal/infrastructure/storage/postgres/closing_repo"
	"fueldesk/internal/infrastructure/storage/postgres/ledger_repo"
	"fueldesk/internal/infrastructure/storage/postgres/lossrate_repo"
	"fueldesk/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting fueldesk server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 25); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	storeRepo := catalog_repo.NewStoreRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	tankRepo := catalog_repo.NewTankRepo(txManager)
	movementRepo := ledger_repo.NewMovementRepo(txManager)
	configRepo := lossrate_repo.NewConfigRepo(txManager)
	periodRepo := closing_repo.NewPeriodRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)

	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		log.Fatalw("failed to create audit store", "error", err)
	}

	// --- Auth ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(userRepo, tokenRepo, txManager, jwtService, auth.DefaultServiceConfig())

	// --- Domain services ---
	storeService := store.NewService(storeRepo, txManager)
	productService := product.NewService(productRepo, txManager)
	tankService := tank.NewService(tankRepo, storeRepo, productRepo, txManager)
	movementService := ledger.NewService(movementRepo, tankRepo, txManager)

	// The closing repo doubles as the reference checker: a rate window is
	// frozen once a closing row points at it.
	lossRateService := lossrate.NewService(configRepo, storeRepo, periodRepo, auditStore, txManager)
	closingService := closing.NewService(periodRepo, storeRepo, tankRepo, movementRepo, lossRateService, auditStore, txManager)
	reportsService := reports.NewService(periodRepo, storeRepo, tankRepo, movementRepo, lossRateService, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		StoreService:    storeService,
		ProductService:  productService,
		TankService:     tankService,
		MovementService: movementService,
		LossRateService: lossRateService,
		ClosingService:  closingService,
		ReportsService:  reportsService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
