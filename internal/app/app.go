// Package app wires the omnibus components together: migrations, the
// connection pool, stores, event listeners and the retention sweeper. All
// dependencies are constructed explicitly here; nothing reaches for
// globals.
package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocante/omnibus/internal/catalog"
	"github.com/chocante/omnibus/internal/config"
	"github.com/chocante/omnibus/internal/marker"
	"github.com/chocante/omnibus/internal/omnibus"
	"github.com/chocante/omnibus/internal/pricelog"
)

// App is the assembled service.
type App struct {
	Config *config.Config

	DBPool  *pgxpool.Pool
	Prices  *pricelog.Store
	Markers *marker.Store

	// Dispatcher is the entry point for the platform adapter: it feeds
	// catalog events and render filters through the registered listeners.
	Dispatcher *catalog.Dispatcher

	Observer   *omnibus.Observer
	Controller *omnibus.Controller
	Display    *omnibus.Display

	sweeper *pricelog.Sweeper
	logger  *slog.Logger
}

// Run blocks running the retention sweeper until ctx is canceled.
func (a *App) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sweeper.Run(ctx)
	}()
	wg.Wait()
}

// Close releases the connection pool.
func (a *App) Close() error {
	a.logger.Info("shutting down")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.logger.Info("database pool closed")
	}
	return nil
}

// Uninstall removes all data this service owns: the price log and the
// marker table. Irreversible; only the explicit uninstall command calls it.
func (a *App) Uninstall(ctx context.Context) error {
	if err := a.Prices.Uninstall(ctx); err != nil {
		return err
	}
	if err := a.Markers.DeleteAll(ctx); err != nil {
		return err
	}

	a.logger.Info("all omnibus data removed")
	return nil
}
