package catalog

// VariationSubmission carries the price fields submitted for one variation
// in a product or variation-batch save.
type VariationSubmission struct {
	ID           ProductID
	RegularPrice *string
	SalePrice    *string
	SaleStartsAt *string // storefront-local date, "2006-01-02"; nil when unset
}

// ProductSaved is emitted when a product is saved in the admin UI.
//
// The price fields are the values submitted with the save request, not the
// persisted ones; a nil pointer means the field was absent from the request.
// For variable products the submitted per-variation fields arrive in
// Variations and the top-level price fields are empty.
type ProductSaved struct {
	ID           ProductID
	RegularPrice *string
	SalePrice    *string
	SaleStartsAt *string

	Variations []VariationSubmission

	// Save-context flags. Autosaves, revisions and metadata-only AJAX saves
	// repeat the same field values and must not be logged twice.
	Autosave         bool
	Revision         bool
	AJAXMetadataOnly bool
}

// VariationsSaved is emitted when a variation batch is saved via the
// platform's variation editor.
type VariationsSaved struct {
	ParentID   ProductID
	Variations []VariationSubmission
}

// SaleStarted is emitted by the platform's own scheduler for products whose
// scheduled sale start date has been reached.
type SaleStarted struct {
	IDs []ProductID
}

// SaleEnded is emitted by the platform's scheduler for products whose
// scheduled sale has ended.
type SaleEnded struct {
	IDs []ProductID
}

// RenderContext describes the request in which a price fragment is being
// rendered. Used to suppress the lowest-price note in admin quick-edit.
type RenderContext struct {
	Admin          bool
	AJAX           bool
	FormSubmission bool
}
