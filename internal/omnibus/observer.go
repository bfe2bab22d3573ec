// Package omnibus implements the EU price-transparency behavior on top of
// the price log and marker stores: observing price changes, driving the
// sale-state transitions, and decorating rendered prices with the lowest
// prior price.
package omnibus

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chocante/omnibus/internal/catalog"
)

// recorder is the slice of the price log store the observer needs.
type recorder interface {
	Record(ctx context.Context, productID catalog.ProductID, rawPrice string) error
}

// Observer appends submitted regular prices to the price log. It listens to
// the catalog save events and records every price the shop operator enters,
// deduplicated downstream by the store.
type Observer struct {
	log    recorder
	logger *slog.Logger
}

// NewObserver creates a price change observer.
func NewObserver(log recorder, logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{log: log, logger: logger}
}

// HandleProductSaved records the submitted regular price of a simple
// product, or of every submitted variation for a variable product.
// Autosaves, revisions and metadata-only AJAX saves repeat values that were
// already seen and are skipped.
func (o *Observer) HandleProductSaved(ctx context.Context, e catalog.ProductSaved) error {
	if e.Autosave || e.Revision || e.AJAXMetadataOnly {
		return nil
	}

	if len(e.Variations) > 0 {
		return o.recordVariations(ctx, e.Variations)
	}

	if e.RegularPrice == nil {
		return nil
	}
	if err := o.log.Record(ctx, e.ID, *e.RegularPrice); err != nil {
		return err
	}

	o.logger.Debug("observed product save", "product_id", e.ID)
	return nil
}

// HandleVariationsSaved records the submitted regular price of every
// variation in the batch. Variations are priced independently, so each gets
// its own log entry.
func (o *Observer) HandleVariationsSaved(ctx context.Context, e catalog.VariationsSaved) error {
	return o.recordVariations(ctx, e.Variations)
}

func (o *Observer) recordVariations(ctx context.Context, vars []catalog.VariationSubmission) error {
	var errs []error
	for _, v := range vars {
		if v.RegularPrice == nil {
			continue
		}
		// One failed variation must not block the rest of the batch.
		if err := o.log.Record(ctx, v.ID, *v.RegularPrice); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
