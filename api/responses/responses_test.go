package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/homechef-app/homechef-backend/pkg/errors"
)

func TestWriteErrorMapsCodeAndDetails(t *testing.T) {
	resp := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeVendorConflict, "category already holds items from another vendor").
		WithDetails(map[string]string{"conflictVendor": "Nonna"})

	WriteError(context.Background(), nil, resp, err)

	if resp.Code != 409 {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeVendorConflict) {
		t.Fatalf("unexpected code: %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "category already holds items from another vendor" {
		t.Fatalf("unexpected message: %s", envelope.Error.Message)
	}
	if envelope.Error.Details["conflictVendor"] != "Nonna" {
		t.Fatalf("details dropped: %+v", envelope.Error.Details)
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	resp := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("pq: connection reset"), "query failed").
		WithDetails(map[string]string{"dsn": "secret"})

	WriteError(context.Background(), nil, resp, err)

	if resp.Code != 500 {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Details any    `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal message leaked: %s", envelope.Error.Message)
	}
	if envelope.Error.Details != nil {
		t.Fatalf("internal details leaked: %+v", envelope.Error.Details)
	}
}

func TestWriteSuccessEnvelope(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteSuccess(resp, map[string]string{"status": "ok"})

	if resp.Code != 200 {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["status"] != "ok" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}
