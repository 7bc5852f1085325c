package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/homechef-app/homechef-backend/internal/ledger"
	pkgerrors "github.com/homechef-app/homechef-backend/pkg/errors"
)

type stubLedger struct {
	addErr     error
	setErr     error
	lastItem   ledger.AddItem
	lastQty    int
	total      int
	canAdd     bool
	conflictBy string
}

func (s *stubLedger) AddLine(_ context.Context, item ledger.AddItem, _ string) error {
	s.lastItem = item
	return s.addErr
}

func (s *stubLedger) SetQuantity(_ context.Context, _, _ string, qty int) error {
	s.lastQty = qty
	return s.setErr
}

func (s *stubLedger) RemoveLine(context.Context, string, string) error { return nil }
func (s *stubLedger) ClearCategory(context.Context, string) error      { return nil }
func (s *stubLedger) ClearAll(context.Context) error                   { return nil }

func (s *stubLedger) CanAdd(string, string) (bool, string) { return s.canAdd, s.conflictBy }
func (s *stubLedger) TotalItems(string) int                { return s.total }

type stubViewer struct {
	views []ledger.CartView
	err   error
}

func (s stubViewer) Views(context.Context) []ledger.CartView { return s.views }

func (s stubViewer) View(context.Context, string) (ledger.CartView, error) {
	if s.err != nil {
		return ledger.CartView{}, s.err
	}
	return s.views[0], nil
}

func TestCartAddLineSuccess(t *testing.T) {
	svc := &stubLedger{total: 3}
	handler := CartAddLine(svc, nil)

	body := `{"id":"item-1","name":"Lasagna","categoryId":"cat-pasta","categoryName":"Pasta","vendorId":"vendor-a","vendorName":"Nonna","unitPrice":12.5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastItem.ID != "item-1" || svc.lastItem.VendorID != "vendor-a" {
		t.Fatalf("unexpected item forwarded: %+v", svc.lastItem)
	}

	var envelope struct {
		Data struct {
			TotalItems int `json:"totalItems"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalItems != 3 {
		t.Fatalf("unexpected total: %d", envelope.Data.TotalItems)
	}
}

func TestCartAddLineVendorConflict(t *testing.T) {
	svc := &stubLedger{
		addErr: pkgerrors.New(pkgerrors.CodeVendorConflict, "category already holds items from another vendor").
			WithDetails(ledger.ConflictDetails{CanAdd: false, ConflictVendor: "Nonna"}),
	}
	handler := CartAddLine(svc, nil)

	body := `{"id":"item-9","name":"Ravioli","categoryId":"cat-pasta","vendorId":"vendor-b","unitPrice":9}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				ConflictVendor string `json:"conflictVendor"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeVendorConflict) {
		t.Fatalf("unexpected code: %s", envelope.Error.Code)
	}
	if envelope.Error.Details.ConflictVendor != "Nonna" {
		t.Fatalf("conflict vendor missing from details: %+v", envelope.Error)
	}
}

func TestCartAddLineRejectsBadBody(t *testing.T) {
	handler := CartAddLine(&stubLedger{}, nil)

	// missing required fields
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", strings.NewReader(`{"name":"Lasagna"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartSetQuantityRoutesParams(t *testing.T) {
	svc := &stubLedger{total: 5}
	r := chi.NewRouter()
	r.Patch("/api/v1/cart/{categoryId}/lines/{itemId}", CartSetQuantity(svc, nil))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/cat-pasta/lines/item-1", strings.NewReader(`{"quantity":5}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastQty != 5 {
		t.Fatalf("quantity not forwarded: %d", svc.lastQty)
	}
}

func TestCartCanAdd(t *testing.T) {
	svc := &stubLedger{canAdd: false, conflictBy: "Nonna"}
	handler := CartCanAdd(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/can-add?vendorId=vendor-b&categoryId=cat-pasta", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data ledger.ConflictDetails `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CanAdd || envelope.Data.ConflictVendor != "Nonna" {
		t.Fatalf("unexpected result: %+v", envelope.Data)
	}
}

func TestCartCanAddRequiresParams(t *testing.T) {
	handler := CartCanAdd(&stubLedger{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/can-add?vendorId=vendor-b", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartDetailNotFound(t *testing.T) {
	viewer := stubViewer{err: pkgerrors.New(pkgerrors.CodeNotFound, "category cart not found")}
	r := chi.NewRouter()
	r.Get("/api/v1/cart/{categoryId}", CartDetail(viewer, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/cat-ghost", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
