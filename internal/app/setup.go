package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocante/omnibus/db"
	"github.com/chocante/omnibus/internal/catalog"
	"github.com/chocante/omnibus/internal/config"
	"github.com/chocante/omnibus/internal/marker"
	"github.com/chocante/omnibus/internal/omnibus"
	"github.com/chocante/omnibus/internal/pricelog"
)

// Setup creates and initializes the application. The catalog adapter and
// page purger come from the host integration; both may be nil when only
// the maintenance side (migrations, retention sweep) runs.
// Call Close() to release resources.
func Setup(ctx context.Context, cfg *config.Config, cat catalog.Catalog, purger omnibus.PagePurger, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	a.Prices, err = pricelog.NewStore(pool, logger)
	if err != nil {
		return nil, err
	}
	a.Markers, err = marker.NewStore(pool, logger)
	if err != nil {
		return nil, err
	}

	a.Observer = omnibus.NewObserver(a.Prices, logger)
	a.Controller = omnibus.NewController(a.Prices, a.Markers, cat, purger, logger)
	a.Display = omnibus.NewDisplay(a.Markers, cat, omnibus.NewPriceFormatter(cfg.Currency), logger)

	a.Dispatcher = provideDispatcher(a, logger)
	a.sweeper = pricelog.NewSweeper(a.Prices, cfg.RetentionDays, logger)

	return a, nil
}

// provideDBPool runs migrations and opens the PostgreSQL connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideDispatcher registers every listener and filter. Registration
// happens once here; the dispatcher is not safe for later registration.
func provideDispatcher(a *App, logger *slog.Logger) *catalog.Dispatcher {
	d := catalog.NewDispatcher(logger)

	// The observer logs the price point first so the controller's marker
	// computation sees a complete history.
	d.OnProductSaved(a.Observer.HandleProductSaved)
	d.OnProductSaved(a.Controller.HandleProductSaved)
	d.OnVariationsSaved(a.Observer.HandleVariationsSaved)
	d.OnVariationsSaved(a.Controller.HandleVariationsSaved)
	d.OnSaleStarted(a.Controller.HandleSaleStarted)
	d.OnSaleEnded(a.Controller.HandleSaleEnded)

	d.AddPriceHTMLFilter(a.Display.FilterPriceHTML)
	d.AddPriceFieldsFilter(a.Display.PriceFields)

	return d
}
