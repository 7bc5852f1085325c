package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/homechef-app/homechef-backend/api/responses"
	"github.com/homechef-app/homechef-backend/internal/vendors"
	"github.com/homechef-app/homechef-backend/pkg/db/models"
	pkgerrors "github.com/homechef-app/homechef-backend/pkg/errors"
	"github.com/homechef-app/homechef-backend/pkg/logger"
)

// VendorLister supplies the vendor catalogue and per-vendor menus.
type VendorLister interface {
	List(ctx context.Context) ([]models.Vendor, error)
	ListStatuses(ctx context.Context) ([]vendors.Status, error)
	ListProducts(ctx context.Context, vendorID string) ([]models.Product, error)
}

type vendorResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	IsActive bool     `json:"isActive"`
}

// VendorsList returns every vendor with coordinates for delivery pricing.
func VendorsList(repo VendorLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor listing unavailable"))
			return
		}

		list, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing vendors"))
			return
		}

		out := make([]vendorResponse, 0, len(list))
		for _, vendor := range list {
			out = append(out, vendorResponse{
				ID:       vendor.ID.String(),
				Name:     vendor.Name,
				Lat:      vendor.Latitude,
				Lon:      vendor.Longitude,
				IsActive: vendor.IsActive,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

type productResponse struct {
	ID           string          `json:"id"`
	VendorID     string          `json:"vendorId"`
	CategoryID   string          `json:"categoryId"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	ImageRef     string          `json:"imageRef,omitempty"`
	OfferPercent *int            `json:"offerPercent,omitempty"`
	IsAvailable  bool            `json:"isAvailable"`
	Stock        *int            `json:"stock,omitempty"`
}

// VendorProducts returns the menu for one vendor.
func VendorProducts(repo VendorLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor listing unavailable"))
			return
		}

		vendorID := chi.URLParam(r, "vendorId")
		if vendorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendorId is required"))
			return
		}

		list, err := repo.ListProducts(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing vendor products"))
			return
		}

		out := make([]productResponse, 0, len(list))
		for _, product := range list {
			out = append(out, productResponse{
				ID:           product.ID.String(),
				VendorID:     product.VendorID.String(),
				CategoryID:   product.CategoryID,
				Name:         product.Name,
				Price:        product.Price,
				ImageRef:     product.ImageRef,
				OfferPercent: product.OfferPercent,
				IsAvailable:  product.IsAvailable,
				Stock:        product.Stock,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
