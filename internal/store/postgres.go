package store

import (
	"context"
	"fmt"
	"time"

	"finagent/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostgresClient reads the table the extraction workflow inserts into when
// the store is reached over a direct database connection instead of HTTP.
type PostgresClient struct {
	db     *pgxpool.Pool
	table  string
	logger *zap.Logger
}

func NewPostgresClient(db *pgxpool.Pool, table string, logger *zap.Logger) *PostgresClient {
	return &PostgresClient{
		db:     db,
		table:  table,
		logger: logger,
	}
}

func (c *PostgresClient) FetchTransactions(ctx context.Context) ([]models.Transaction, error) {
	query := squirrel.Select("date", "amount::text", "category", "COALESCE(merchant, '')").
		From(c.table).
		OrderBy("date ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	dropped := 0
	for rows.Next() {
		var (
			date     time.Time
			amount   string
			category string
			merchant string
		)
		if err := rows.Scan(&date, &amount, &category, &merchant); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		value, err := decimal.NewFromString(amount)
		if err != nil {
			dropped++
			continue
		}
		transactions = append(transactions, models.Transaction{
			Date:     date,
			Amount:   value,
			Category: category,
			Merchant: merchant,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if dropped > 0 {
		c.logger.Warn("dropped unparseable transaction rows", zap.Int("dropped", dropped))
	}

	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// InsertTransactions backfills records, used by the seed tool to populate a
// local store for development.
func (c *PostgresClient) InsertTransactions(ctx context.Context, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	builder := squirrel.Insert(c.table).
		Columns("date", "amount", "category", "merchant").
		PlaceholderFormat(squirrel.Dollar)

	for _, tx := range transactions {
		builder = builder.Values(tx.Date, tx.Amount.String(), tx.Category, tx.Merchant)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = c.db.Exec(ctx, sql, args...)
	return err
}
