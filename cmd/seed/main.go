// Command seed creates a demo user with a default wallet. With SEED_RESET=true
// every ledger table is dropped and recreated first.
package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/wallet"
)

func main() {
	config.LoadEnv()

	email := config.GetEnv("SEED_EMAIL", "demo@fintrack.local")
	name := config.GetEnv("SEED_NAME", "Demo User")
	mainCurrency := strings.ToUpper(config.GetEnv("SEED_CURRENCY", wallet.DefaultCurrency))
	if !currency.ValidCode(mainCurrency) {
		log.Fatalf("SEED_CURRENCY %q is not a currency code", mainCurrency)
	}

	db, err := repositories.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Printf("⚠️ Failed to get SQL DB instance: %v", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
		}
	}()

	if config.GetEnv("SEED_RESET", "false") == "true" {
		if err := repositories.DropAllTables(db); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		if err := repositories.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Println("✅ Ledger tables reset")
	}

	ctx := context.Background()
	repos := repositories.NewRepositories(db)

	existing, err := repos.Users.GetByEmail(ctx, email)
	if err == nil {
		log.Printf("User %s already exists (id %s)", email, existing.ID)
		return
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		log.Fatalf("Failed to look up user: %v", err)
	}

	user := &models.User{
		Name:             name,
		Email:            email,
		MainCurrencyCode: mainCurrency,
	}
	if err := repos.Users.Create(ctx, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	// The default wallet never converts, so the rate source is never hit.
	fx := currency.NewService(currency.NewHTTPRateSource(currency.DefaultRateSourceURL, currency.DefaultHTTPTimeout), nil, currency.Config{}, nil)
	w, err := wallet.NewService(repos, fx, nil).CreateDefaultWallet(ctx, user.ID, mainCurrency, 0)
	if err != nil {
		log.Fatalf("Failed to create default wallet: %v", err)
	}

	log.Printf("✅ Demo user %s created (id %s) with wallet %q", email, user.ID, w.Name)
}
