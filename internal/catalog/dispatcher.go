package catalog

import (
	"context"
	"log/slog"
)

// Listener signatures for the catalog lifecycle events.
type (
	ProductSavedFunc    func(ctx context.Context, e ProductSaved) error
	VariationsSavedFunc func(ctx context.Context, e VariationsSaved) error
	SaleStartedFunc     func(ctx context.Context, e SaleStarted) error
	SaleEndedFunc       func(ctx context.Context, e SaleEnded) error

	// PriceHTMLFilterFunc rewrites a rendered price fragment. Filters run in
	// registration order, each receiving the previous filter's output.
	PriceHTMLFilterFunc func(ctx context.Context, html string, p *Product, rc RenderContext) string

	// PriceFieldsFilterFunc extends the list of metadata keys that hold
	// prices. Multi-currency integrations call PriceFields to learn which
	// keys need conversion.
	PriceFieldsFilterFunc func(fields []string) []string
)

// Dispatcher routes catalog events to explicitly registered, typed
// listeners. It replaces the platform's name-based hook table: handlers are
// registered as values at wiring time, not looked up by string.
//
// Dispatch is synchronous and runs listeners in registration order. A
// listener error is logged at Warn and does not stop the remaining
// listeners; a lost price point degrades the lowest-price computation
// gracefully rather than failing the save request.
//
// Dispatcher is not safe for concurrent registration; register everything
// during wiring, then dispatch freely.
type Dispatcher struct {
	productSaved    []ProductSavedFunc
	variationsSaved []VariationsSavedFunc
	saleStarted     []SaleStartedFunc
	saleEnded       []SaleEndedFunc
	priceHTML       []PriceHTMLFilterFunc
	priceFields     []PriceFieldsFilterFunc

	logger *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// OnProductSaved registers a product-save listener.
func (d *Dispatcher) OnProductSaved(fn ProductSavedFunc) {
	d.productSaved = append(d.productSaved, fn)
}

// OnVariationsSaved registers a variation-batch-save listener.
func (d *Dispatcher) OnVariationsSaved(fn VariationsSavedFunc) {
	d.variationsSaved = append(d.variationsSaved, fn)
}

// OnSaleStarted registers a scheduled-sale-start listener.
func (d *Dispatcher) OnSaleStarted(fn SaleStartedFunc) {
	d.saleStarted = append(d.saleStarted, fn)
}

// OnSaleEnded registers a scheduled-sale-end listener.
func (d *Dispatcher) OnSaleEnded(fn SaleEndedFunc) {
	d.saleEnded = append(d.saleEnded, fn)
}

// AddPriceHTMLFilter appends a filter to the price-HTML chain.
func (d *Dispatcher) AddPriceHTMLFilter(fn PriceHTMLFilterFunc) {
	d.priceHTML = append(d.priceHTML, fn)
}

// AddPriceFieldsFilter appends a filter to the price-fields chain.
func (d *Dispatcher) AddPriceFieldsFilter(fn PriceFieldsFilterFunc) {
	d.priceFields = append(d.priceFields, fn)
}

// ProductSaved dispatches a product-save event to all listeners.
func (d *Dispatcher) ProductSaved(ctx context.Context, e ProductSaved) {
	for _, fn := range d.productSaved {
		if err := fn(ctx, e); err != nil {
			d.logger.Warn("product-saved listener failed", "product_id", e.ID, "error", err)
		}
	}
}

// VariationsSaved dispatches a variation-batch-save event to all listeners.
func (d *Dispatcher) VariationsSaved(ctx context.Context, e VariationsSaved) {
	for _, fn := range d.variationsSaved {
		if err := fn(ctx, e); err != nil {
			d.logger.Warn("variations-saved listener failed", "parent_id", e.ParentID, "error", err)
		}
	}
}

// SaleStarted dispatches a scheduled-sale-start event to all listeners.
func (d *Dispatcher) SaleStarted(ctx context.Context, e SaleStarted) {
	for _, fn := range d.saleStarted {
		if err := fn(ctx, e); err != nil {
			d.logger.Warn("sale-started listener failed", "count", len(e.IDs), "error", err)
		}
	}
}

// SaleEnded dispatches a scheduled-sale-end event to all listeners.
func (d *Dispatcher) SaleEnded(ctx context.Context, e SaleEnded) {
	for _, fn := range d.saleEnded {
		if err := fn(ctx, e); err != nil {
			d.logger.Warn("sale-ended listener failed", "count", len(e.IDs), "error", err)
		}
	}
}

// PriceHTML folds the rendered price fragment through the filter chain.
func (d *Dispatcher) PriceHTML(ctx context.Context, html string, p *Product, rc RenderContext) string {
	for _, fn := range d.priceHTML {
		html = fn(ctx, html, p, rc)
	}
	return html
}

// PriceFields folds the base list of price metadata keys through the filter
// chain and returns the extended list.
func (d *Dispatcher) PriceFields(base []string) []string {
	fields := base
	for _, fn := range d.priceFields {
		fields = fn(fields)
	}
	return fields
}
