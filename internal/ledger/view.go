package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/homechef-app/homechef-backend/internal/pricing"
	pkgerrors "github.com/homechef-app/homechef-backend/pkg/errors"
	"github.com/homechef-app/homechef-backend/pkg/logger"
)

// TierSource supplies the current delivery tier list.
type TierSource interface {
	Tiers(ctx context.Context) ([]pricing.Tier, error)
}

// LocationSource supplies the shopper's last known coordinates, nil when no
// usable fix exists.
type LocationSource interface {
	LastKnown(ctx context.Context) (*pricing.Coords, error)
}

// StatusSource answers live vendor/product status questions from the
// realtime snapshots. Unknown entities report known=false.
type StatusSource interface {
	VendorOpen(id string) (open, known bool)
	ProductAvailability(id string) (available bool, stock *int, known bool)
}

// LineView is a cart line annotated with live availability when known.
type LineView struct {
	Line
	IsAvailable *bool `json:"isAvailable,omitempty"`
	Stock       *int  `json:"stock,omitempty"`
}

// CartView is the full derived read model for one category cart: the raw
// lines plus subtotal, delivery decision, and live vendor status.
type CartView struct {
	CategoryCart
	Lines        []LineView       `json:"lines"`
	Subtotal     decimal.Decimal  `json:"total"`
	Delivery     pricing.Decision `json:"delivery"`
	VendorIsOpen bool             `json:"vendorIsOpen"`
}

// Viewer composes ledger state with pricing and realtime status into cart
// views. It never mutates the ledger.
type Viewer struct {
	ledger   *Service
	tiers    TierSource
	location LocationSource
	status   StatusSource
	logg     *logger.Logger
}

// NewViewer builds a viewer. The status source may be nil when the realtime
// channel is disabled; views then fall back to catalogue defaults.
func NewViewer(ledger *Service, tiers TierSource, location LocationSource, status StatusSource, logg *logger.Logger) *Viewer {
	return &Viewer{
		ledger:   ledger,
		tiers:    tiers,
		location: location,
		status:   status,
		logg:     logg,
	}
}

// Views renders every category cart. Pricing inputs that cannot be fetched
// degrade to their sentinel decisions so the response always renders.
func (v *Viewer) Views(ctx context.Context) []CartView {
	carts := v.ledger.Carts()
	tiers := v.fetchTiers(ctx)
	user := v.fetchLocation(ctx)

	views := make([]CartView, 0, len(carts))
	for _, cart := range carts {
		views = append(views, v.render(cart, user, tiers))
	}
	return views
}

// View renders a single category cart.
func (v *Viewer) View(ctx context.Context, categoryID string) (CartView, error) {
	cart, ok := v.ledger.Cart(categoryID)
	if !ok {
		return CartView{}, pkgerrors.New(pkgerrors.CodeNotFound, "category cart not found")
	}
	return v.render(cart, v.fetchLocation(ctx), v.fetchTiers(ctx)), nil
}

func (v *Viewer) render(cart CategoryCart, user *pricing.Coords, tiers []pricing.Tier) CartView {
	var vendor *pricing.Coords
	if cart.VendorLat != nil && cart.VendorLon != nil {
		vendor = &pricing.Coords{Lat: *cart.VendorLat, Lon: *cart.VendorLon}
	}
	subtotal := cart.Subtotal()

	view := CartView{
		CategoryCart: cart,
		Lines:        v.annotateLines(cart.Lines),
		Subtotal:     subtotal,
		Delivery:     pricing.Quote(user, vendor, subtotal, tiers),
		VendorIsOpen: true,
	}
	if v.status != nil {
		if open, known := v.status.VendorOpen(cart.VendorID); known {
			view.VendorIsOpen = open
		}
	}
	return view
}

func (v *Viewer) annotateLines(lines []Line) []LineView {
	out := make([]LineView, 0, len(lines))
	for _, line := range lines {
		lv := LineView{Line: line}
		if v.status != nil {
			if available, stock, known := v.status.ProductAvailability(line.ID); known {
				lv.IsAvailable = &available
				lv.Stock = stock
			}
		}
		out = append(out, lv)
	}
	return out
}

func (v *Viewer) fetchTiers(ctx context.Context) []pricing.Tier {
	if v.tiers == nil {
		return nil
	}
	tiers, err := v.tiers.Tiers(ctx)
	if err != nil {
		if v.logg != nil {
			v.logg.Warn(v.logg.WithField(ctx, "error", err.Error()), "tier fetch failed, quoting without settings")
		}
		return nil
	}
	return tiers
}

func (v *Viewer) fetchLocation(ctx context.Context) *pricing.Coords {
	if v.location == nil {
		return nil
	}
	coords, err := v.location.LastKnown(ctx)
	if err != nil {
		if v.logg != nil {
			v.logg.Warn(v.logg.WithField(ctx, "error", err.Error()), "location fetch failed, quoting without coordinates")
		}
		return nil
	}
	return coords
}
