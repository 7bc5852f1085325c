package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/homechef-app/homechef-backend/api/responses"
	"github.com/homechef-app/homechef-backend/api/validators"
	"github.com/homechef-app/homechef-backend/internal/ledger"
	pkgerrors "github.com/homechef-app/homechef-backend/pkg/errors"
	"github.com/homechef-app/homechef-backend/pkg/logger"
)

// CartLedger is the mutation surface the cart endpoints drive.
type CartLedger interface {
	AddLine(ctx context.Context, item ledger.AddItem, categoryName string) error
	SetQuantity(ctx context.Context, categoryID, itemID string, qty int) error
	RemoveLine(ctx context.Context, categoryID, itemID string) error
	ClearCategory(ctx context.Context, categoryID string) error
	ClearAll(ctx context.Context) error
	CanAdd(vendorID, categoryID string) (bool, string)
	TotalItems(categoryID string) int
}

// CartViewer renders the derived cart read model.
type CartViewer interface {
	Views(ctx context.Context) []ledger.CartView
	View(ctx context.Context, categoryID string) (ledger.CartView, error)
}

type addLineRequest struct {
	ID           string          `json:"id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	CategoryID   string          `json:"categoryId" validate:"required"`
	CategoryName string          `json:"categoryName"`
	VendorID     string          `json:"vendorId" validate:"required"`
	VendorName   string          `json:"vendorName"`
	UnitPrice    decimal.Decimal `json:"unitPrice" validate:"required"`
	ImageRef     string          `json:"imageRef"`
	OfferPercent *int            `json:"offerPercent"`
	VendorLat    *float64        `json:"vendorLat" validate:"omitempty,latitude"`
	VendorLon    *float64        `json:"vendorLon" validate:"omitempty,longitude"`
}

func (r addLineRequest) toItem() ledger.AddItem {
	return ledger.AddItem{
		ID:           r.ID,
		Name:         r.Name,
		CategoryID:   r.CategoryID,
		VendorID:     r.VendorID,
		VendorName:   r.VendorName,
		UnitPrice:    r.UnitPrice,
		ImageRef:     r.ImageRef,
		OfferPercent: r.OfferPercent,
		VendorLat:    r.VendorLat,
		VendorLon:    r.VendorLon,
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CartList returns every category cart with pricing and live status applied.
func CartList(viewer CartViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if viewer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart viewer unavailable"))
			return
		}
		responses.WriteSuccess(w, viewer.Views(r.Context()))
	}
}

// CartDetail returns one category cart with pricing and live status applied.
func CartDetail(viewer CartViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if viewer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart viewer unavailable"))
			return
		}
		view, err := viewer.View(r.Context(), chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddLine adds one unit of an item to its category cart.
func CartAddLine(svc CartLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCategoryID(ctx, payload.CategoryID)
			ctx = logg.WithVendorID(ctx, payload.VendorID)
		}

		if err := svc.AddLine(ctx, payload.toItem(), payload.CategoryName); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"totalItems": svc.TotalItems(""),
		})
	}
}

// CartSetQuantity replaces one line's quantity; zero removes the line.
func CartSetQuantity(svc CartLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID := chi.URLParam(r, "categoryId")
		itemID := chi.URLParam(r, "itemId")
		if err := svc.SetQuantity(r.Context(), categoryID, itemID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"totalItems": svc.TotalItems(categoryID),
		})
	}
}

// CartRemoveLine drops one line from a category cart.
func CartRemoveLine(svc CartLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.RemoveLine(r.Context(), chi.URLParam(r, "categoryId"), chi.URLParam(r, "itemId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// CartClearCategory drops one category cart wholesale.
func CartClearCategory(svc CartLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.ClearCategory(r.Context(), chi.URLParam(r, "categoryId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

// CartClearAll empties the whole ledger.
func CartClearAll(svc CartLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.ClearAll(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

// CartCanAdd pre-checks the one-vendor-per-category rule for a prospective
// add, so clients can warn before mutating.
func CartCanAdd(svc CartLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		vendorID := r.URL.Query().Get("vendorId")
		categoryID := r.URL.Query().Get("categoryId")
		if vendorID == "" || categoryID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendorId and categoryId are required"))
			return
		}

		canAdd, conflictVendor := svc.CanAdd(vendorID, categoryID)
		responses.WriteSuccess(w, ledger.ConflictDetails{CanAdd: canAdd, ConflictVendor: conflictVendor})
	}
}
