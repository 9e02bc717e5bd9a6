// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/auth"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/internal/domain/catalogs/tank"
	"fueldesk/internal/domain/lossrate"
	"fueldesk/internal/infrastructure/storage/postgres"
	"fueldesk/internal/infrastructure/storage/postgres/auth_repo"
	"fueldesk/internal/infrastructure/storage/postgres/catalog_repo"
	"fueldesk/internal/infrastructure/storage/postgres/closing_repo"
	"fueldesk/internal/infrastructure/storage/postgres/lossrate_repo"
	"fueldesk/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding complete")
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	users := auth_repo.NewUserRepo(txManager)

	exists, err := users.Exists(ctx, "admin")
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if exists {
		log.Info("admin user already exists, skipping")
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Warn("ADMIN_PASSWORD not set, using default password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := auth.NewUser("admin", string(hash))
	admin.FullName = "Administrator"
	admin.IsAdmin = true
	admin.Roles = []string{auth.RoleAdmin}

	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Infow("admin user created", "login", admin.Login)
	return nil
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	storeRepo := catalog_repo.NewStoreRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	tankRepo := catalog_repo.NewTankRepo(txManager)
	configRepo := lossrate_repo.NewConfigRepo(txManager)
	periodRepo := closing_repo.NewPeriodRepo(txManager)

	storeService := store.NewService(storeRepo, txManager)
	productService := product.NewService(productRepo, txManager)
	tankService := tank.NewService(tankRepo, storeRepo, productRepo, txManager)
	rateService := lossrate.NewService(configRepo, storeRepo, periodRepo, nil, txManager)

	st := store.NewStore("ST-001", "Demo Station North")
	if err := storeService.Create(ctx, st); err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	gasoline := product.NewProduct("A95", "Gasoline A-95", product.CategoryGasoline)
	diesel := product.NewProduct("DT", "Diesel", product.CategoryDiesel)
	for _, p := range []*product.Product{gasoline, diesel} {
		if err := productService.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", p.Code, err)
		}
	}

	startDate := types.Today().AddDays(-30)

	tanks := []*tank.Tank{
		tank.NewTank("T-01", "Tank 1 (A-95)", st.ID, gasoline.ID),
		tank.NewTank("T-02", "Tank 2 (Diesel)", st.ID, diesel.ID),
	}
	for _, t := range tanks {
		t.Capacity = decimal.NewFromInt(20000)
		t.InitialStock = decimal.NewFromInt(5000)
		t.InitialStockDate = &startDate
		if err := tankService.Create(ctx, t); err != nil {
			return fmt.Errorf("create tank %s: %w", t.Code, err)
		}
	}

	for _, category := range product.Categories {
		rate := decimal.NewFromFloat(0.0025)
		cfg := lossrate.NewConfig(st.ID, category, rate, startDate)
		if _, err := rateService.Create(ctx, cfg); err != nil {
			return fmt.Errorf("create loss rate for %s: %w", category, err)
		}
	}

	log.Infow("demo data created",
		"store", st.Code,
		"tanks", len(tanks),
	)
	return nil
}
