package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Sentinel range names the quote carries when no priced tier applies. The
// client renders these verbatim, so a quote is always displayable.
const (
	RangeNoSettings       = "No delivery settings configured"
	RangeNoActiveSettings = "No active delivery settings"
	RangeOutOfZone        = "Outside delivery zone"
	RangeLocationRequired = "Location required for delivery fee"
)

const earthRadiusKm = 6371

// Tier is one admin-configured distance band with a flat fee and an
// optional free-delivery subtotal threshold.
type Tier struct {
	Name           string
	MinDistanceKm  float64
	MaxDistanceKm  float64
	Fee            decimal.Decimal
	MinOrderAmount decimal.Decimal
	IsActive       bool
}

// Coords is a latitude/longitude pair in degrees.
type Coords struct {
	Lat float64
	Lon float64
}

// Decision is the full delivery fee verdict for one cart. It is derived,
// never stored.
type Decision struct {
	DistanceKm          *float64         `json:"distance,omitempty"`
	Fee                 decimal.Decimal  `json:"deliveryFee"`
	FreeEligible        bool             `json:"freeDeliveryEligible"`
	AmountNeededForFree *decimal.Decimal `json:"amountForFreeDelivery,omitempty"`
	RangeName           string           `json:"deliveryRangeName,omitempty"`
	MinOrderAmount      *decimal.Decimal `json:"minOrderAmount,omitempty"`
}

// Deliverable reports whether checkout may proceed on this decision: a
// priced in-zone tier was matched (fee may still be zero when free).
func (d Decision) Deliverable() bool {
	switch d.RangeName {
	case RangeNoSettings, RangeNoActiveSettings, RangeOutOfZone, RangeLocationRequired:
		return false
	}
	return true
}

// Distance returns the great-circle distance between two coordinates in
// kilometers, rounded to two decimals.
func Distance(a, b Coords) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)

	d := earthRadiusKm * 2 * math.Asin(math.Sqrt(h))
	return math.Round(d*100) / 100
}

// Quote computes the delivery decision for a cart given both endpoints.
// Missing coordinates produce the location-required sentinel; Quote never
// fails.
func Quote(user, vendor *Coords, subtotal decimal.Decimal, tiers []Tier) Decision {
	if user == nil || vendor == nil {
		return Decision{RangeName: RangeLocationRequired}
	}
	distance := Distance(*user, *vendor)
	decision := QuoteAtDistance(distance, subtotal, tiers)
	decision.DistanceKm = &distance
	return decision
}

// QuoteAtDistance maps a pre-computed distance plus the cart subtotal onto
// the tier list. The first active tier whose inclusive [min,max] range
// contains the distance wins, scanned in list order; overlapping ranges are
// a data-quality issue upstream and resolve deterministically to the first
// match.
func QuoteAtDistance(distanceKm float64, subtotal decimal.Decimal, tiers []Tier) Decision {
	if len(tiers) == 0 {
		return Decision{RangeName: RangeNoSettings}
	}

	active := make([]Tier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.IsActive {
			active = append(active, tier)
		}
	}
	if len(active) == 0 {
		return Decision{RangeName: RangeNoActiveSettings}
	}

	for _, tier := range active {
		if distanceKm < tier.MinDistanceKm || distanceKm > tier.MaxDistanceKm {
			continue
		}
		return decideForTier(tier, subtotal)
	}

	return Decision{RangeName: RangeOutOfZone}
}

func decideForTier(tier Tier, subtotal decimal.Decimal) Decision {
	minOrder := tier.MinOrderAmount
	decision := Decision{
		RangeName:      tier.Name,
		MinOrderAmount: &minOrder,
	}

	freeByFee := tier.Fee.IsZero()
	freeByThreshold := minOrder.IsPositive() && subtotal.GreaterThanOrEqual(minOrder)

	if freeByFee || freeByThreshold {
		decision.FreeEligible = true
		decision.Fee = decimal.Zero
		return decision
	}

	decision.Fee = tier.Fee
	if minOrder.IsPositive() {
		needed := minOrder.Sub(subtotal)
		decision.AmountNeededForFree = &needed
	}
	return decision
}
