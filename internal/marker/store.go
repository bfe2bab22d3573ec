// Package marker persists the per-product lowest-price marker and the
// explicit sale status the presentation layer reads.
package marker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocante/omnibus/internal/catalog"
)

// TableName is the marker table created by the migrations.
const TableName = "omnibus_product_marker"

// ErrNotFound is returned when no marker row exists for a product.
var ErrNotFound = errors.New("marker not found")

// SaleStatus is the recorded sale state of a product. It is stored
// explicitly rather than inferred from marker presence, so "never
// computed" and "computed, not on sale" stay distinguishable.
type SaleStatus string

const (
	// StatusUnknown means no marker row exists for the product yet.
	StatusUnknown SaleStatus = ""
	// StatusOnSale means the product was last seen with an active sale.
	StatusOnSale SaleStatus = "on_sale"
	// StatusNotOnSale means the product was last seen without a sale.
	StatusNotOnSale SaleStatus = "not_on_sale"
)

// Marker is one product's persisted omnibus state.
type Marker struct {
	ProductID   catalog.ProductID
	LowestPrice string
	Status      SaleStatus
	UpdatedAt   time.Time
}

// Store persists markers in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a marker store. The pool is required.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, errors.New("marker: pool is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Get returns the marker for a product, or ErrNotFound when the product
// has never been through a sale transition.
func (s *Store) Get(ctx context.Context, productID catalog.ProductID) (Marker, error) {
	var m Marker
	err := s.pool.QueryRow(ctx,
		`SELECT product_id, lowest_price, sale_status, updated_at
		 FROM omnibus_product_marker
		 WHERE product_id = $1`,
		productID,
	).Scan(&m.ProductID, &m.LowestPrice, &m.Status, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Marker{}, ErrNotFound
	}
	if err != nil {
		return Marker{}, fmt.Errorf("get marker for product %d: %w", productID, err)
	}
	return m, nil
}

// Status returns the recorded sale status, StatusUnknown when no row exists.
func (s *Store) Status(ctx context.Context, productID catalog.ProductID) (SaleStatus, error) {
	m, err := s.Get(ctx, productID)
	if errors.Is(err, ErrNotFound) {
		return StatusUnknown, nil
	}
	if err != nil {
		return StatusUnknown, err
	}
	return m.Status, nil
}

// SetOnSale upserts the marker with the lowest prior price and marks the
// product on sale.
func (s *Store) SetOnSale(ctx context.Context, productID catalog.ProductID, lowestPrice string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO omnibus_product_marker (product_id, lowest_price, sale_status, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (product_id) DO UPDATE
		 SET lowest_price = EXCLUDED.lowest_price,
		     sale_status  = EXCLUDED.sale_status,
		     updated_at   = now()`,
		productID, lowestPrice, StatusOnSale,
	)
	if err != nil {
		return fmt.Errorf("set on-sale marker for product %d: %w", productID, err)
	}

	s.logger.Debug("marker set", "product_id", productID, "lowest_price", lowestPrice)
	return nil
}

// ClearSale upserts the marker with an empty price and marks the product
// not on sale.
func (s *Store) ClearSale(ctx context.Context, productID catalog.ProductID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO omnibus_product_marker (product_id, lowest_price, sale_status, updated_at)
		 VALUES ($1, '', $2, now())
		 ON CONFLICT (product_id) DO UPDATE
		 SET lowest_price = '',
		     sale_status  = EXCLUDED.sale_status,
		     updated_at   = now()`,
		productID, StatusNotOnSale,
	)
	if err != nil {
		return fmt.Errorf("clear marker for product %d: %w", productID, err)
	}

	s.logger.Debug("marker cleared", "product_id", productID)
	return nil
}

// DeleteAll drops the marker table. Used by the uninstall path only.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DROP TABLE IF EXISTS omnibus_product_marker`); err != nil {
		return fmt.Errorf("drop marker table: %w", err)
	}
	s.logger.Info("marker table removed")
	return nil
}
