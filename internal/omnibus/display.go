package omnibus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chocante/omnibus/internal/catalog"
	"github.com/chocante/omnibus/internal/marker"
)

// MarkerField is the metadata key under which the lowest-price marker is
// exposed to integrations. Multi-currency plugins read PriceFields to learn
// that this key holds a convertible price.
const MarkerField = "chocante_omnibus_lowest_price"

// markerReader is the slice of the marker store the display layer needs.
type markerReader interface {
	Get(ctx context.Context, productID catalog.ProductID) (marker.Marker, error)
}

// Display appends the "lowest price prior to sale" note to rendered price
// fragments on the storefront.
type Display struct {
	markers markerReader
	catalog catalog.Catalog
	format  PriceFormatter
	logger  *slog.Logger
}

// NewDisplay creates the presentation filter.
func NewDisplay(markers markerReader, cat catalog.Catalog, format PriceFormatter, logger *slog.Logger) *Display {
	if logger == nil {
		logger = slog.Default()
	}
	return &Display{markers: markers, catalog: cat, format: format, logger: logger}
}

// FilterPriceHTML is registered on the dispatcher's price-HTML chain. It
// returns the fragment unchanged when the product is not on sale, is out of
// stock, is being rendered in an admin context other than a pure AJAX read
// (the quick-edit form re-renders prices and must not pick up the note), or
// is a variable product whose storefront price is a range over several
// visible variations.
func (d *Display) FilterPriceHTML(ctx context.Context, html string, p *catalog.Product, rc catalog.RenderContext) string {
	if p == nil {
		return html
	}
	if rc.Admin && (!rc.AJAX || rc.FormSubmission) {
		return html
	}
	if !p.OnSale || !p.InStock {
		return html
	}

	id := p.ID
	if p.Type == catalog.TypeVariable {
		visible, err := d.catalog.VisibleChildren(ctx, p.ID)
		if err != nil {
			d.logger.Warn("listing visible variations failed", "product_id", p.ID, "error", err)
			return html
		}
		// A price range over several variations has no single prior price.
		if len(visible) != 1 {
			return html
		}
		id = visible[0]
	}

	lowest, err := d.DefaultLowestPrice(ctx, id)
	if err != nil {
		d.logger.Warn("resolving lowest price failed", "product_id", id, "error", err)
		return html
	}
	if lowest == "" {
		return html
	}

	return html + fmt.Sprintf(`<span class="chocante-omnibus">Lowest price prior to sale: %s</span>`,
		d.format.Format(lowest))
}

// DefaultLowestPrice returns the marker value for a product, falling back
// to the catalog regular price when no marker was ever computed or the
// stored value is empty. Templates that read the marker key directly use
// this as the key's default.
func (d *Display) DefaultLowestPrice(ctx context.Context, id catalog.ProductID) (string, error) {
	m, err := d.markers.Get(ctx, id)
	if err != nil && !errors.Is(err, marker.ErrNotFound) {
		return "", err
	}
	if err == nil && m.LowestPrice != "" {
		return m.LowestPrice, nil
	}

	p, err := d.catalog.Product(ctx, id)
	if err != nil {
		return "", err
	}
	return p.RegularPrice, nil
}

// PriceFields is registered on the dispatcher's price-fields chain and
// declares the marker key as a price-bearing metadata field.
func (d *Display) PriceFields(fields []string) []string {
	return append(fields, MarkerField)
}
