package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/homechef-app/homechef-backend/api/responses"
	"github.com/homechef-app/homechef-backend/api/validators"
	"github.com/homechef-app/homechef-backend/internal/pricing"
	pkgerrors "github.com/homechef-app/homechef-backend/pkg/errors"
	"github.com/homechef-app/homechef-backend/pkg/logger"
)

// TierSource supplies the current delivery tier list.
type TierSource interface {
	Tiers(ctx context.Context) ([]pricing.Tier, error)
}

type tierResponse struct {
	Name           string          `json:"name"`
	MinDistanceKm  float64         `json:"minDistanceKm"`
	MaxDistanceKm  float64         `json:"maxDistanceKm"`
	Fee            decimal.Decimal `json:"fee"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
	IsActive       bool            `json:"isActive"`
}

// DeliverySettingsList returns the configured distance tiers in evaluation
// order.
func DeliverySettingsList(tiers TierSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tiers == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery settings unavailable"))
			return
		}

		list, err := tiers.Tiers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading delivery settings"))
			return
		}

		out := make([]tierResponse, 0, len(list))
		for _, tier := range list {
			out = append(out, tierResponse{
				Name:           tier.Name,
				MinDistanceKm:  tier.MinDistanceKm,
				MaxDistanceKm:  tier.MaxDistanceKm,
				Fee:            tier.Fee,
				MinOrderAmount: tier.MinOrderAmount,
				IsActive:       tier.IsActive,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

type coordsPayload struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

type quoteRequest struct {
	User     *coordsPayload  `json:"user"`
	Vendor   *coordsPayload  `json:"vendor"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// DeliveryQuote prices a prospective delivery without touching the cart.
func DeliveryQuote(tiers TierSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tiers == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery settings unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := tiers.Tiers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading delivery settings"))
			return
		}

		var user, vendor *pricing.Coords
		if payload.User != nil {
			user = &pricing.Coords{Lat: payload.User.Lat, Lon: payload.User.Lon}
		}
		if payload.Vendor != nil {
			vendor = &pricing.Coords{Lat: payload.Vendor.Lat, Lon: payload.Vendor.Lon}
		}

		responses.WriteSuccess(w, pricing.Quote(user, vendor, payload.Subtotal, list))
	}
}
