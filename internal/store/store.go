// Package store reads wager ledgers from Postgres. The engine never
// writes: settlement is owned by an upstream service, and the ledger is
// consumed here read-only.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// WagerStore defines the ledger read operations.
type WagerStore interface {
	ListWagers(ctx context.Context, filters WagerFilters) ([]models.Wager, error)
	Ping(ctx context.Context) error
	Close() error
}

// WagerFilters narrows a ledger query. Zero values mean "no filter".
type WagerFilters struct {
	UserID      string
	Sport       string
	Market      string
	Book        string
	SettledOnly bool
	Since       *time.Time
	Limit       int
	Offset      int
}

// Client implements WagerStore against Postgres.
type Client struct {
	db *sql.DB
}

// NewClient opens a connection pool and verifies connectivity.
func NewClient(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// ListWagers retrieves wagers with optional filtering, ordered by
// placement time so ledgers replay deterministically.
func (c *Client) ListWagers(ctx context.Context, filters WagerFilters) ([]models.Wager, error) {
	query := `
		SELECT wager_id, book, sport_key, market_key, selection,
		       stake, odds_decimal, outcome, placed_at, settled_at, payout
		FROM wagers
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filters.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, filters.UserID)
		argIdx++
	}

	if filters.Sport != "" {
		query += fmt.Sprintf(" AND sport_key = $%d", argIdx)
		args = append(args, filters.Sport)
		argIdx++
	}

	if filters.Market != "" {
		query += fmt.Sprintf(" AND market_key = $%d", argIdx)
		args = append(args, filters.Market)
		argIdx++
	}

	if filters.Book != "" {
		query += fmt.Sprintf(" AND book = $%d", argIdx)
		args = append(args, filters.Book)
		argIdx++
	}

	if filters.SettledOnly {
		query += " AND outcome <> 'pending'"
	}

	if filters.Since != nil {
		query += fmt.Sprintf(" AND placed_at >= $%d", argIdx)
		args = append(args, *filters.Since)
		argIdx++
	}

	query += " ORDER BY placed_at ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		argIdx++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query wagers: %w", err)
	}
	defer rows.Close()

	var wagers []models.Wager
	for rows.Next() {
		var w models.Wager
		if err := rows.Scan(
			&w.ID, &w.Book, &w.Sport, &w.Market, &w.Selection,
			&w.Stake, &w.OddsDecimal, &w.Outcome, &w.PlacedAt, &w.SettledAt, &w.Payout,
		); err != nil {
			return nil, fmt.Errorf("scan wager: %w", err)
		}
		wagers = append(wagers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wagers: %w", err)
	}

	return wagers, nil
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
