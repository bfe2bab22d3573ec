package omnibus

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chocante/omnibus/internal/catalog"
	"github.com/chocante/omnibus/internal/marker"
)

// lowestFinder is the slice of the price log store the controller needs.
type lowestFinder interface {
	Lowest(ctx context.Context, productID catalog.ProductID) (string, bool, error)
}

// markerWriter is the slice of the marker store the controller needs.
type markerWriter interface {
	Status(ctx context.Context, productID catalog.ProductID) (marker.SaleStatus, error)
	SetOnSale(ctx context.Context, productID catalog.ProductID, lowestPrice string) error
	ClearSale(ctx context.Context, productID catalog.ProductID) error
}

// PagePurger invalidates cached storefront pages for a product after its
// sale state changes. Optional; a nil purger means no page cache is in
// front of the shop.
type PagePurger interface {
	PurgeProduct(ctx context.Context, productID catalog.ProductID) error
}

// Controller maintains the lowest-price marker across sale transitions.
// When a product enters a sale the marker captures the lowest price logged
// before today; when the sale ends the marker is cleared.
type Controller struct {
	log     lowestFinder
	markers markerWriter
	catalog catalog.Catalog
	purger  PagePurger
	logger  *slog.Logger

	// now is swapped in tests to pin the sale-start date comparison.
	now func() time.Time
}

// NewController creates a sale-transition controller. purger may be nil.
func NewController(log lowestFinder, markers markerWriter, cat catalog.Catalog, purger PagePurger, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		log:     log,
		markers: markers,
		catalog: cat,
		purger:  purger,
		logger:  logger,
		now:     time.Now,
	}
}

// HandleProductSaved evaluates the submitted sale fields and applies or
// clears markers where the sale state changed. Variable products never hold
// a marker themselves; their variations are evaluated independently.
func (c *Controller) HandleProductSaved(ctx context.Context, e catalog.ProductSaved) error {
	if e.Autosave || e.Revision {
		return nil
	}

	if len(e.Variations) > 0 {
		return c.transitionVariations(ctx, e.Variations)
	}
	return c.transition(ctx, e.ID, e.SalePrice, e.SaleStartsAt)
}

// HandleVariationsSaved evaluates the sale fields of every variation in the
// batch.
func (c *Controller) HandleVariationsSaved(ctx context.Context, e catalog.VariationsSaved) error {
	return c.transitionVariations(ctx, e.Variations)
}

// HandleSaleStarted applies markers for products whose scheduled sale start
// has been reached, then purges their cached pages. The scheduler already
// decided these sales are active; no field evaluation happens here.
func (c *Controller) HandleSaleStarted(ctx context.Context, e catalog.SaleStarted) error {
	var errs []error
	for _, id := range e.IDs {
		if err := c.applyMarker(ctx, id); err != nil {
			errs = append(errs, err)
		}
		// Purge even after a failed marker write; a stale cached page is
		// worse than a redundant purge.
		c.purgePage(ctx, id)
	}
	return errors.Join(errs...)
}

// HandleSaleEnded clears markers for products whose scheduled sale has
// ended, then purges their cached pages.
func (c *Controller) HandleSaleEnded(ctx context.Context, e catalog.SaleEnded) error {
	var errs []error
	for _, id := range e.IDs {
		if err := c.markers.ClearSale(ctx, id); err != nil {
			errs = append(errs, err)
		}
		c.purgePage(ctx, id)
	}
	return errors.Join(errs...)
}

func (c *Controller) transitionVariations(ctx context.Context, vars []catalog.VariationSubmission) error {
	var errs []error
	for _, v := range vars {
		if err := c.transition(ctx, v.ID, v.SalePrice, v.SaleStartsAt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// transition compares the recorded sale status against the submitted sale
// fields and acts only on the edges.
func (c *Controller) transition(ctx context.Context, id catalog.ProductID, salePrice, saleStartsAt *string) error {
	// A sale scheduled for a future date is not a transition in either
	// direction: a product currently on sale keeps its marker, one not on
	// sale stays unmarked. The scheduler announces the actual start via
	// SaleStarted.
	if c.startsInFuture(saleStartsAt) {
		return nil
	}

	status, err := c.markers.Status(ctx, id)
	if err != nil {
		return err
	}

	was := status == marker.StatusOnSale
	is := saleSubmitted(salePrice)

	switch {
	case !was && is:
		return c.applyMarker(ctx, id)
	case was && !is:
		return c.markers.ClearSale(ctx, id)
	default:
		return nil
	}
}

// saleSubmitted reports whether a non-empty sale price was submitted.
func saleSubmitted(salePrice *string) bool {
	return salePrice != nil && strings.TrimSpace(*salePrice) != ""
}

// startsInFuture reports whether the submitted start date schedules the
// sale to begin after today. An unparseable start date is treated as unset.
func (c *Controller) startsInFuture(saleStartsAt *string) bool {
	if saleStartsAt == nil || strings.TrimSpace(*saleStartsAt) == "" {
		return false
	}

	start, err := time.Parse("2006-01-02", strings.TrimSpace(*saleStartsAt))
	if err != nil {
		c.logger.Debug("unparseable sale start date treated as unset", "value", *saleStartsAt)
		return false
	}

	y, m, d := c.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start.After(today)
}

// applyMarker records the lowest price logged before today, falling back to
// the catalog regular price when the product has no prior history.
func (c *Controller) applyMarker(ctx context.Context, id catalog.ProductID) error {
	lowest, found, err := c.log.Lowest(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		p, err := c.catalog.Product(ctx, id)
		if err != nil {
			return err
		}
		lowest = p.RegularPrice
	}

	if err := c.markers.SetOnSale(ctx, id, lowest); err != nil {
		return err
	}

	c.logger.Debug("sale marker applied", "product_id", id, "lowest_price", lowest, "from_history", found)
	return nil
}

// purgePage asks the page cache to drop the product's pages. Cache purge
// failures only delay the visual update until the cache expires, so they
// are logged and swallowed.
func (c *Controller) purgePage(ctx context.Context, id catalog.ProductID) {
	if c.purger == nil {
		return
	}
	if err := c.purger.PurgeProduct(ctx, id); err != nil {
		c.logger.Warn("page cache purge failed", "product_id", id, "error", err)
	}
}
