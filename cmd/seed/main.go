package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"finagent/internal/models"
	"finagent/internal/store"
	"finagent/pkg/config"
	"finagent/pkg/logger"
	"finagent/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Starting store seeding...")

	if err := ensureTable(ctx, db, cfg.Store.Table); err != nil {
		appLogger.Fatal("Failed to create transactions table", zap.Error(err))
	}

	client := store.NewPostgresClient(db, cfg.Store.Table, appLogger)

	transactions := sampleTransactions(time.Now())
	if err := client.InsertTransactions(ctx, transactions); err != nil {
		appLogger.Fatal("Failed to insert sample transactions", zap.Error(err))
	}

	appLogger.Info("Store seeding completed successfully!",
		zap.Int("inserted", len(transactions)),
		zap.String("table", cfg.Store.Table),
	)
}

// ensureTable creates the transactions table when it does not exist yet, so
// the seed tool works against a fresh database without separate migrations.
func ensureTable(ctx context.Context, db *pgxpool.Pool, table string) error {
	_, err := db.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			date TIMESTAMPTZ NOT NULL,
			amount NUMERIC(14, 2) NOT NULL,
			category TEXT NOT NULL,
			merchant TEXT
		)`, table))
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// sampleTransactions builds three months of spending ending at the current
// month, so the dashboard comparison has recent data to work with.
func sampleTransactions(now time.Time) []models.Transaction {
	entries := []struct {
		monthsAgo int
		day       int
		amount    string
		category  string
		merchant  string
	}{
		{2, 3, "64.20", "Groceries", "FreshMart"},
		{2, 7, "18.50", "Transport", "Metro"},
		{2, 12, "42.00", "Dining", "Pasta House"},
		{2, 15, "120.00", "Utilities", "City Power"},
		{2, 21, "35.90", "Entertainment", "CinemaPlex"},
		{2, 27, "88.40", "Groceries", "FreshMart"},
		{1, 2, "71.15", "Groceries", "GreenGrocer"},
		{1, 6, "22.00", "Transport", "Metro"},
		{1, 9, "-15.00", "Refunds", "Pasta House"},
		{1, 14, "130.25", "Utilities", "City Power"},
		{1, 19, "56.80", "Dining", "Burger Barn"},
		{1, 25, "44.99", "Entertainment", "StreamFlix"},
		{0, 1, "59.30", "Groceries", "FreshMart"},
		{0, 4, "25.00", "Transport", "City Cab"},
		{0, 8, "18.75", "Dining", "Coffee Corner"},
	}

	transactions := make([]models.Transaction, 0, len(entries))
	for _, e := range entries {
		month := now.AddDate(0, -e.monthsAgo, 0)
		date := time.Date(month.Year(), month.Month(), e.day, 12, 0, 0, 0, time.UTC)
		transactions = append(transactions, models.Transaction{
			Date:     date,
			Amount:   decimal.RequireFromString(e.amount),
			Category: e.category,
			Merchant: e.merchant,
		})
	}
	return transactions
}
