package omnibus

import (
	"context"
	"fmt"
	"sync"

	"github.com/chocante/omnibus/internal/catalog"
	"github.com/chocante/omnibus/internal/marker"
)

func strPtr(s string) *string { return &s }

// fakeRecorder captures Record calls for the observer tests.
type fakeRecorder struct {
	mu      sync.Mutex
	records map[catalog.ProductID][]string
	err     error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{records: make(map[catalog.ProductID][]string)}
}

func (f *fakeRecorder) Record(ctx context.Context, productID catalog.ProductID, rawPrice string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records[productID] = append(f.records[productID], rawPrice)
	return nil
}

// fakeLowest serves canned Lowest results keyed by product.
type fakeLowest struct {
	lowest map[catalog.ProductID]string
	err    error
}

func (f *fakeLowest) Lowest(ctx context.Context, productID catalog.ProductID) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	price, ok := f.lowest[productID]
	return price, ok, nil
}

// fakeMarkers is an in-memory marker store recording transitions.
type fakeMarkers struct {
	markers map[catalog.ProductID]marker.Marker

	setCalls   []catalog.ProductID
	clearCalls []catalog.ProductID
}

func newFakeMarkers() *fakeMarkers {
	return &fakeMarkers{markers: make(map[catalog.ProductID]marker.Marker)}
}

func (f *fakeMarkers) Get(ctx context.Context, productID catalog.ProductID) (marker.Marker, error) {
	m, ok := f.markers[productID]
	if !ok {
		return marker.Marker{}, marker.ErrNotFound
	}
	return m, nil
}

func (f *fakeMarkers) Status(ctx context.Context, productID catalog.ProductID) (marker.SaleStatus, error) {
	m, ok := f.markers[productID]
	if !ok {
		return marker.StatusUnknown, nil
	}
	return m.Status, nil
}

func (f *fakeMarkers) SetOnSale(ctx context.Context, productID catalog.ProductID, lowestPrice string) error {
	f.setCalls = append(f.setCalls, productID)
	f.markers[productID] = marker.Marker{
		ProductID:   productID,
		LowestPrice: lowestPrice,
		Status:      marker.StatusOnSale,
	}
	return nil
}

func (f *fakeMarkers) ClearSale(ctx context.Context, productID catalog.ProductID) error {
	f.clearCalls = append(f.clearCalls, productID)
	f.markers[productID] = marker.Marker{
		ProductID: productID,
		Status:    marker.StatusNotOnSale,
	}
	return nil
}

// fakeCatalog serves products and variation listings from maps.
type fakeCatalog struct {
	products map[catalog.ProductID]*catalog.Product
	visible  map[catalog.ProductID][]catalog.ProductID
}

func (f *fakeCatalog) Product(ctx context.Context, id catalog.ProductID) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d not found", id)
	}
	return p, nil
}

func (f *fakeCatalog) Children(ctx context.Context, id catalog.ProductID) ([]catalog.ProductID, error) {
	return f.visible[id], nil
}

func (f *fakeCatalog) VisibleChildren(ctx context.Context, id catalog.ProductID) ([]catalog.ProductID, error) {
	return f.visible[id], nil
}

// fakePagePurger records purge requests.
type fakePagePurger struct {
	purged []catalog.ProductID
	err    error
}

func (f *fakePagePurger) PurgeProduct(ctx context.Context, productID catalog.ProductID) error {
	f.purged = append(f.purged, productID)
	return f.err
}
