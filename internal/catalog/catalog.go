// Package catalog models the host e-commerce platform as an external
// collaborator: product lookups, save/sale lifecycle events, and the
// render-time filter chain.
//
// The platform adapter implements Catalog and feeds events into a
// Dispatcher; omnibus components register typed listeners against it.
package catalog

import "context"

// ProductID identifies a product or a product variation. Variations are
// independent identities with their own price history and marker.
type ProductID int64

// ProductType distinguishes how a product's sale state is evaluated.
type ProductType string

const (
	// TypeSimple is a standalone product with its own price fields.
	TypeSimple ProductType = "simple"

	// TypeVariable is a parent product whose price state lives entirely in
	// its variations. A variable product never holds a marker itself.
	TypeVariable ProductType = "variable"

	// TypeVariation is a single variation of a variable product.
	TypeVariation ProductType = "variation"
)

// Product is the catalog's view of a product at lookup time.
type Product struct {
	ID           ProductID
	Type         ProductType
	RegularPrice string
	OnSale       bool
	InStock      bool
}

// Catalog is the read interface to the platform's product store.
// Implemented by the platform adapter; faked in tests.
type Catalog interface {
	// Product returns the product or variation with the given ID.
	Product(ctx context.Context, id ProductID) (*Product, error)

	// Children returns all variation IDs of a variable product.
	Children(ctx context.Context, id ProductID) ([]ProductID, error)

	// VisibleChildren returns the variation IDs currently visible and
	// purchasable on the storefront. More than one visible variation means
	// the storefront shows a price range.
	VisibleChildren(ctx context.Context, id ProductID) ([]ProductID, error)
}
