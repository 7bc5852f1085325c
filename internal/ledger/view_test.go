package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/homechef-app/homechef-backend/internal/pricing"
	pkgerrors "github.com/homechef-app/homechef-backend/pkg/errors"
)

type stubTiers struct {
	tiers []pricing.Tier
	err   error
}

func (s stubTiers) Tiers(context.Context) ([]pricing.Tier, error) { return s.tiers, s.err }

type stubLocation struct {
	coords *pricing.Coords
	err    error
}

func (s stubLocation) LastKnown(context.Context) (*pricing.Coords, error) { return s.coords, s.err }

type stubStatus struct {
	vendorOpen map[string]bool
	available  map[string]bool
	stock      map[string]*int
}

func (s stubStatus) VendorOpen(id string) (bool, bool) {
	open, known := s.vendorOpen[id]
	return open, known
}

func (s stubStatus) ProductAvailability(id string) (bool, *int, bool) {
	available, known := s.available[id]
	return available, s.stock[id], known
}

func seedViewerLedger(t *testing.T) *Service {
	t.Helper()
	svc := NewService(nil, nil, nil)
	ctx := context.Background()
	item := AddItem{
		ID:         "item-1",
		Name:       "Lasagna",
		CategoryID: "cat-pasta",
		VendorID:   "vendor-a",
		VendorName: "Nonna",
		UnitPrice:  decimal.NewFromInt(20),
		VendorLat:  ptrFloat(40.0),
		VendorLon:  ptrFloat(-3.0),
	}
	if err := svc.AddLine(ctx, item, "Pasta"); err != nil {
		t.Fatalf("seed add: %v", err)
	}
	if err := svc.SetQuantity(ctx, "cat-pasta", "item-1", 2); err != nil {
		t.Fatalf("seed quantity: %v", err)
	}
	return svc
}

func ptrFloat(f float64) *float64 { return &f }

func ptrInt(i int) *int { return &i }

func TestViewComposesPricingAndStatus(t *testing.T) {
	t.Parallel()

	svc := seedViewerLedger(t)
	tiers := stubTiers{tiers: []pricing.Tier{{
		Name:          "0-50 km",
		MaxDistanceKm: 50,
		Fee:           decimal.NewFromInt(5),
		IsActive:      true,
	}}}
	location := stubLocation{coords: &pricing.Coords{Lat: 40.1, Lon: -3.0}}
	status := stubStatus{
		vendorOpen: map[string]bool{"vendor-a": false},
		available:  map[string]bool{"item-1": false},
		stock:      map[string]*int{"item-1": ptrInt(0)},
	}

	viewer := NewViewer(svc, tiers, location, status, nil)
	view, err := viewer.View(context.Background(), "cat-pasta")
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	if !view.Subtotal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected subtotal 40, got %s", view.Subtotal)
	}
	if view.Delivery.RangeName != "0-50 km" || !view.Delivery.Fee.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected delivery decision: %+v", view.Delivery)
	}
	if view.VendorIsOpen {
		t.Fatal("vendor reported closed by status source")
	}
	line := view.Lines[0]
	if line.IsAvailable == nil || *line.IsAvailable {
		t.Fatalf("expected unavailable annotation, got %+v", line)
	}
	if line.Stock == nil || *line.Stock != 0 {
		t.Fatalf("expected stock 0, got %+v", line.Stock)
	}
}

func TestViewWithoutLocationUsesSentinel(t *testing.T) {
	t.Parallel()

	svc := seedViewerLedger(t)
	viewer := NewViewer(svc, stubTiers{tiers: []pricing.Tier{{Name: "near", MaxDistanceKm: 50, IsActive: true}}}, stubLocation{}, nil, nil)

	view, err := viewer.View(context.Background(), "cat-pasta")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Delivery.RangeName != pricing.RangeLocationRequired {
		t.Fatalf("expected location-required sentinel, got %q", view.Delivery.RangeName)
	}
	if !view.VendorIsOpen {
		t.Fatal("missing status source should default vendor to open")
	}
	if view.Lines[0].IsAvailable != nil {
		t.Fatal("missing status source should leave availability unset")
	}
}

func TestViewTierFetchFailureDegrades(t *testing.T) {
	t.Parallel()

	svc := seedViewerLedger(t)
	viewer := NewViewer(svc, stubTiers{err: context.DeadlineExceeded}, stubLocation{coords: &pricing.Coords{Lat: 40.1, Lon: -3.0}}, nil, nil)

	view, err := viewer.View(context.Background(), "cat-pasta")
	if err != nil {
		t.Fatalf("view should degrade, not fail: %v", err)
	}
	if view.Delivery.RangeName != pricing.RangeNoSettings {
		t.Fatalf("expected no-settings sentinel, got %q", view.Delivery.RangeName)
	}
}

func TestViewUnknownCategory(t *testing.T) {
	t.Parallel()

	viewer := NewViewer(NewService(nil, nil, nil), nil, nil, nil, nil)
	_, err := viewer.View(context.Background(), "cat-ghost")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestViewsRendersAllCarts(t *testing.T) {
	t.Parallel()

	svc := seedViewerLedger(t)
	soup := AddItem{
		ID:         "item-7",
		Name:       "Gazpacho",
		CategoryID: "cat-soup",
		VendorID:   "vendor-b",
		VendorName: "Trattoria",
		UnitPrice:  decimal.NewFromInt(6),
	}
	if err := svc.AddLine(context.Background(), soup, "Soup"); err != nil {
		t.Fatalf("seed soup: %v", err)
	}

	viewer := NewViewer(svc, nil, nil, nil, nil)
	views := viewer.Views(context.Background())
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].CategoryID != "cat-pasta" || views[1].CategoryID != "cat-soup" {
		t.Fatalf("views out of insertion order: %+v", views)
	}
}
