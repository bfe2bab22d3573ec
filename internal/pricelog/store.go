// Package pricelog owns the append-only price history log and the retention
// sweeper that prunes it.
//
// One row is written per previously unseen (product, price) pair; the log is
// queried for the lowest price recorded strictly before today when a product
// goes on sale. Rows are never updated.
package pricelog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocante/omnibus/internal/catalog"
)

// Store manages the price history log backed by PostgreSQL.
//
// Store is safe for concurrent use by multiple goroutines; the database
// serializes at the row level and no cross-row invariants exist.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a price log Store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Record logs a submitted regular price for a product.
//
// The raw price is normalized first (see NormalizePrice). Nothing is written
// when:
//   - the normalized price is empty (no price was submitted)
//   - the normalized price does not parse as a decimal (a malformed field is
//     treated as "no price change", not as an error)
//   - any row with the same (product_id, price) already exists, regardless
//     of date — a price that was ever seen is never re-logged while its row
//     survives the retention window
//
// At most one row is inserted, dated today.
func (s *Store) Record(ctx context.Context, productID catalog.ProductID, rawPrice string) error {
	price := NormalizePrice(rawPrice)
	if price == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(price, 64); err != nil {
		s.logger.Debug("skipping unparseable price", "product_id", productID, "price", price)
		return nil
	}

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM omnibus_price_log
		   WHERE product_id = $1 AND price = $2
		 )`,
		productID, price,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking for existing price: %w", err)
	}
	if exists {
		return nil
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO omnibus_price_log (product_id, price) VALUES ($1, $2)`,
		productID, price,
	)
	if err != nil {
		return fmt.Errorf("inserting price log entry: %w", err)
	}

	s.logger.Debug("logged price", "product_id", productID, "price", price)
	return nil
}

// Lowest returns the lowest price logged for a product strictly before
// today, compared by absolute numeric value. A price logged today reflects
// the just-applied change, not a genuinely prior price, and is excluded.
//
// The second return value is false when no qualifying row exists.
func (s *Store) Lowest(ctx context.Context, productID catalog.ProductID) (string, bool, error) {
	var price string
	err := s.pool.QueryRow(ctx,
		`SELECT price FROM omnibus_price_log
		 WHERE product_id = $1 AND date_changed < CURRENT_DATE
		 ORDER BY abs(price::numeric) ASC
		 LIMIT 1`,
		productID,
	).Scan(&price)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("querying lowest price: %w", err)
	default:
		return price, true, nil
	}
}

// Purge deletes rows for all products whose date_changed is more than days
// days in the past. Rows exactly days old survive. days <= 0 falls back to
// DefaultRetentionDays. Returns the number of rows removed.
func (s *Store) Purge(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = DefaultRetentionDays
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM omnibus_price_log WHERE date_changed < CURRENT_DATE - $1::int`,
		days,
	)
	if err != nil {
		return 0, fmt.Errorf("purging price log: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Uninstall drops the price log table. System-removal path only; all
// history is lost.
func (s *Store) Uninstall(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DROP TABLE IF EXISTS omnibus_price_log`); err != nil {
		return fmt.Errorf("dropping price log table: %w", err)
	}
	s.logger.Info("price log table dropped")
	return nil
}
