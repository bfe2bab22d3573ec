package omnibus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chocante/omnibus/internal/catalog"
	"github.com/chocante/omnibus/internal/log"
	"github.com/chocante/omnibus/internal/marker"
)

func newTestController(low *fakeLowest, markers *fakeMarkers, cat *fakeCatalog, purger PagePurger) *Controller {
	c := NewController(low, markers, cat, purger, log.NewNop())
	c.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}
	return c
}

func TestController_SaleSubmitted(t *testing.T) {
	tests := []struct {
		name  string
		price *string
		want  bool
	}{
		{name: "no sale price", price: nil, want: false},
		{name: "empty sale price", price: strPtr(""), want: false},
		{name: "blank sale price", price: strPtr("  "), want: false},
		{name: "sale price set", price: strPtr("15.00"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := saleSubmitted(tt.price); got != tt.want {
				t.Errorf("saleSubmitted(%v) = %v, want %v", tt.price, got, tt.want)
			}
		})
	}
}

func TestController_StartsInFuture(t *testing.T) {
	c := newTestController(&fakeLowest{}, newFakeMarkers(), &fakeCatalog{}, nil)

	tests := []struct {
		name  string
		start *string
		want  bool
	}{
		{name: "no start", start: nil, want: false},
		{name: "empty start", start: strPtr(""), want: false},
		{name: "start in the past", start: strPtr("2026-08-01"), want: false},
		{name: "start today", start: strPtr("2026-08-31"), want: false},
		{name: "start in the future", start: strPtr("2026-09-15"), want: true},
		{name: "unparseable start treated as unset", start: strPtr("soon"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.startsInFuture(tt.start); got != tt.want {
				t.Errorf("startsInFuture(%v) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestController_TransitionIntoSale(t *testing.T) {
	ctx := context.Background()

	t.Run("with history uses lowest logged price", func(t *testing.T) {
		low := &fakeLowest{lowest: map[catalog.ProductID]string{100: "17.50"}}
		markers := newFakeMarkers()
		c := newTestController(low, markers, &fakeCatalog{}, nil)

		err := c.HandleProductSaved(ctx, catalog.ProductSaved{
			ID:        100,
			SalePrice: strPtr("15.00"),
		})
		if err != nil {
			t.Fatalf("HandleProductSaved() failed: %v", err)
		}

		m := markers.markers[100]
		if m.Status != marker.StatusOnSale {
			t.Errorf("status = %q, want on_sale", m.Status)
		}
		if m.LowestPrice != "17.50" {
			t.Errorf("lowest = %q, want 17.50 from the log", m.LowestPrice)
		}
	})

	t.Run("without history falls back to regular price", func(t *testing.T) {
		low := &fakeLowest{}
		markers := newFakeMarkers()
		cat := &fakeCatalog{products: map[catalog.ProductID]*catalog.Product{
			100: {ID: 100, Type: catalog.TypeSimple, RegularPrice: "19.99"},
		}}
		c := newTestController(low, markers, cat, nil)

		err := c.HandleProductSaved(ctx, catalog.ProductSaved{
			ID:        100,
			SalePrice: strPtr("15.00"),
		})
		if err != nil {
			t.Fatalf("HandleProductSaved() failed: %v", err)
		}

		if m := markers.markers[100]; m.LowestPrice != "19.99" {
			t.Errorf("lowest = %q, want regular price 19.99", m.LowestPrice)
		}
	})

	t.Run("future start date is not a transition", func(t *testing.T) {
		markers := newFakeMarkers()
		c := newTestController(&fakeLowest{}, markers, &fakeCatalog{}, nil)

		err := c.HandleProductSaved(ctx, catalog.ProductSaved{
			ID:           100,
			SalePrice:    strPtr("15.00"),
			SaleStartsAt: strPtr("2026-09-15"),
		})
		if err != nil {
			t.Fatalf("HandleProductSaved() failed: %v", err)
		}

		if len(markers.setCalls) != 0 || len(markers.clearCalls) != 0 {
			t.Errorf("set=%v clear=%v, want no marker writes for a future sale", markers.setCalls, markers.clearCalls)
		}
	})

	t.Run("future start on an active sale keeps the marker", func(t *testing.T) {
		markers := newFakeMarkers()
		markers.markers[100] = marker.Marker{ProductID: 100, LowestPrice: "17.50", Status: marker.StatusOnSale}
		c := newTestController(&fakeLowest{}, markers, &fakeCatalog{}, nil)

		// Operator reschedules the next sale while the current one runs.
		err := c.HandleProductSaved(ctx, catalog.ProductSaved{
			ID:           100,
			SalePrice:    strPtr("15.00"),
			SaleStartsAt: strPtr("2026-09-15"),
		})
		if err != nil {
			t.Fatalf("HandleProductSaved() failed: %v", err)
		}

		if len(markers.clearCalls) != 0 {
			t.Errorf("clearCalls = %v, want none for a rescheduled sale", markers.clearCalls)
		}
		if m := markers.markers[100]; m.Status != marker.StatusOnSale || m.LowestPrice != "17.50" {
			t.Errorf("marker = %+v, want untouched", m)
		}
	})

	t.Run("already on sale is a no-op", func(t *testing.T) {
		markers := newFakeMarkers()
		markers.markers[100] = marker.Marker{ProductID: 100, LowestPrice: "17.50", Status: marker.StatusOnSale}
		low := &fakeLowest{lowest: map[catalog.ProductID]string{100: "12.00"}}
		c := newTestController(low, markers, &fakeCatalog{}, nil)

		err := c.HandleProductSaved(ctx, catalog.ProductSaved{
			ID:        100,
			SalePrice: strPtr("15.00"),
		})
		if err != nil {
			t.Fatalf("HandleProductSaved() failed: %v", err)
		}

		// The marker keeps the price captured when the sale began.
		if m := markers.markers[100]; m.LowestPrice != "17.50" {
			t.Errorf("lowest = %q, want unchanged 17.50", m.LowestPrice)
		}
		if len(markers.setCalls) != 0 {
			t.Errorf("setCalls = %v, want none while sale continues", markers.setCalls)
		}
	})
}

func TestController_TransitionOutOfSale(t *testing.T) {
	ctx := context.Background()

	t.Run("sale removed clears the marker", func(t *testing.T) {
		markers := newFakeMarkers()
		markers.markers[100] = marker.Marker{ProductID: 100, LowestPrice: "17.50", Status: marker.StatusOnSale}
		c := newTestController(&fakeLowest{}, markers, &fakeCatalog{}, nil)

		err := c.HandleProductSaved(ctx, catalog.ProductSaved{ID: 100})
		if err != nil {
			t.Fatalf("HandleProductSaved() failed: %v", err)
		}

		if m := markers.markers[100]; m.Status != marker.StatusNotOnSale || m.LowestPrice != "" {
			t.Errorf("marker = %+v, want cleared", m)
		}
	})

	t.Run("never on sale stays untouched", func(t *testing.T) {
		markers := newFakeMarkers()
		c := newTestController(&fakeLowest{}, markers, &fakeCatalog{}, nil)

		if err := c.HandleProductSaved(ctx, catalog.ProductSaved{ID: 100}); err != nil {
			t.Fatalf("HandleProductSaved() failed: %v", err)
		}

		if len(markers.clearCalls) != 0 {
			t.Errorf("clearCalls = %v, want none", markers.clearCalls)
		}
	})

	t.Run("autosave never transitions", func(t *testing.T) {
		markers := newFakeMarkers()
		markers.markers[100] = marker.Marker{ProductID: 100, Status: marker.StatusOnSale}
		c := newTestController(&fakeLowest{}, markers, &fakeCatalog{}, nil)

		err := c.HandleProductSaved(ctx, catalog.ProductSaved{ID: 100, Autosave: true})
		if err != nil {
			t.Fatalf("HandleProductSaved() failed: %v", err)
		}

		if len(markers.clearCalls) != 0 {
			t.Error("autosave must not clear the marker")
		}
	})
}

func TestController_Variations(t *testing.T) {
	ctx := context.Background()

	low := &fakeLowest{lowest: map[catalog.ProductID]string{101: "9.00"}}
	markers := newFakeMarkers()
	markers.markers[102] = marker.Marker{ProductID: 102, LowestPrice: "11.00", Status: marker.StatusOnSale}
	cat := &fakeCatalog{products: map[catalog.ProductID]*catalog.Product{}}
	c := newTestController(low, markers, cat, nil)

	err := c.HandleVariationsSaved(ctx, catalog.VariationsSaved{
		ParentID: 100,
		Variations: []catalog.VariationSubmission{
			{ID: 101, SalePrice: strPtr("8.00")}, // entering sale
			{ID: 102},                            // leaving sale
		},
	})
	if err != nil {
		t.Fatalf("HandleVariationsSaved() failed: %v", err)
	}

	if m := markers.markers[101]; m.Status != marker.StatusOnSale || m.LowestPrice != "9.00" {
		t.Errorf("variation 101 marker = %+v, want on sale at 9.00", m)
	}
	if m := markers.markers[102]; m.Status != marker.StatusNotOnSale {
		t.Errorf("variation 102 marker = %+v, want cleared", m)
	}
	if _, ok := markers.markers[100]; ok {
		t.Error("parent product must never hold a marker")
	}
}

func TestController_ScheduledSaleEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("sale started applies markers and purges cache", func(t *testing.T) {
		low := &fakeLowest{lowest: map[catalog.ProductID]string{100: "17.50", 200: "40.00"}}
		markers := newFakeMarkers()
		purger := &fakePagePurger{}
		c := newTestController(low, markers, &fakeCatalog{}, purger)

		err := c.HandleSaleStarted(ctx, catalog.SaleStarted{IDs: []catalog.ProductID{100, 200}})
		if err != nil {
			t.Fatalf("HandleSaleStarted() failed: %v", err)
		}

		if len(markers.setCalls) != 2 {
			t.Errorf("setCalls = %v, want both products", markers.setCalls)
		}
		if len(purger.purged) != 2 {
			t.Errorf("purged = %v, want both products", purger.purged)
		}
	})

	t.Run("sale ended clears markers and purges cache", func(t *testing.T) {
		markers := newFakeMarkers()
		purger := &fakePagePurger{}
		c := newTestController(&fakeLowest{}, markers, &fakeCatalog{}, purger)

		err := c.HandleSaleEnded(ctx, catalog.SaleEnded{IDs: []catalog.ProductID{100}})
		if err != nil {
			t.Fatalf("HandleSaleEnded() failed: %v", err)
		}

		if len(markers.clearCalls) != 1 {
			t.Errorf("clearCalls = %v, want [100]", markers.clearCalls)
		}
		if len(purger.purged) != 1 {
			t.Errorf("purged = %v, want [100]", purger.purged)
		}
	})

	t.Run("cache purged even when the marker write fails", func(t *testing.T) {
		low := &fakeLowest{err: errors.New("connection reset")}
		markers := newFakeMarkers()
		purger := &fakePagePurger{}
		c := newTestController(low, markers, &fakeCatalog{}, purger)

		err := c.HandleSaleStarted(ctx, catalog.SaleStarted{IDs: []catalog.ProductID{100}})
		if err == nil {
			t.Error("HandleSaleStarted() error = nil, want store error")
		}

		if len(purger.purged) != 1 {
			t.Errorf("purged = %v, want [100] despite the failed marker", purger.purged)
		}
	})

	t.Run("nil purger is safe", func(t *testing.T) {
		markers := newFakeMarkers()
		c := newTestController(&fakeLowest{lowest: map[catalog.ProductID]string{100: "17.50"}}, markers, &fakeCatalog{}, nil)

		if err := c.HandleSaleStarted(ctx, catalog.SaleStarted{IDs: []catalog.ProductID{100}}); err != nil {
			t.Fatalf("HandleSaleStarted() failed: %v", err)
		}
	})
}
