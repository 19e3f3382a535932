package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gridwatt/energymarket/internal/models"
)

// Journal appends settled trades to PostgreSQL. It is best-effort: the
// market never depends on it, and a failed write must not fail the trade
// that produced it. Resets do not truncate the journal.
type Journal struct {
	Pool *pgxpool.Pool
}

// Open connects to the journal database and ensures the trades table exists
func Open(ctx context.Context, connString string) (*Journal, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS trades (
			id          UUID PRIMARY KEY,
			buyer       TEXT NOT NULL,
			seller      TEXT NOT NULL,
			quantity    BIGINT NOT NULL,
			price       NUMERIC NOT NULL,
			executed_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure trades table: %w", err)
	}

	return &Journal{Pool: pool}, nil
}

// Close closes the connection pool
func (j *Journal) Close() {
	j.Pool.Close()
}

// Record appends a settled trade
func (j *Journal) Record(ctx context.Context, trade models.Trade) error {
	_, err := j.Pool.Exec(ctx,
		"INSERT INTO trades (id, buyer, seller, quantity, price, executed_at) VALUES ($1, $2, $3, $4, $5, $6)",
		trade.ID, trade.Buyer, trade.Seller, trade.Quantity, trade.Price.String(), trade.ExecutedAt)
	if err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}
	return nil
}

// Trades returns every journaled trade in execution order
func (j *Journal) Trades(ctx context.Context) ([]models.Trade, error) {
	rows, err := j.Pool.Query(ctx,
		"SELECT id::text, buyer, seller, quantity, price::text, executed_at FROM trades ORDER BY executed_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to get trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var trade models.Trade
		var price string
		if err := rows.Scan(&trade.ID, &trade.Buyer, &trade.Seller, &trade.Quantity, &price, &trade.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trade.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trade price: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trades, nil
}
