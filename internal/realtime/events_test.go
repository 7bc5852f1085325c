package realtime

import "testing"

func TestDecodeVendorStatusEvent(t *testing.T) {
	t.Parallel()

	frame := []byte(`{"type":"vendor_status_update","data":{"id":"vendor-a","name":"Nonna","isOpen":false}}`)
	event, err := DecodeEvent(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ev, ok := event.(VendorStatusEvent)
	if !ok {
		t.Fatalf("expected VendorStatusEvent, got %T", event)
	}
	if ev.ID != "vendor-a" || ev.Name != "Nonna" || ev.IsOpen {
		t.Fatalf("unexpected payload: %+v", ev)
	}
}

func TestDecodeProductAvailabilityEvent(t *testing.T) {
	t.Parallel()

	frame := []byte(`{"type":"product_availability_update","data":{"id":"item-1","name":"Lasagna","isAvailable":true,"stock":4}}`)
	event, err := DecodeEvent(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ev, ok := event.(ProductAvailabilityEvent)
	if !ok {
		t.Fatalf("expected ProductAvailabilityEvent, got %T", event)
	}
	if !ev.IsAvailable || ev.Stock == nil || *ev.Stock != 4 {
		t.Fatalf("unexpected payload: %+v", ev)
	}
}

func TestDecodeDomainEvent(t *testing.T) {
	t.Parallel()

	frame := []byte(`{"type":"order_status_update","data":{"orderId":"o-1"}}`)
	event, err := DecodeEvent(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ev, ok := event.(DomainEvent)
	if !ok {
		t.Fatalf("expected DomainEvent, got %T", event)
	}
	if ev.Type != TypeOrderStatus || len(ev.Data) == 0 {
		t.Fatalf("unexpected payload: %+v", ev)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	t.Parallel()

	frame := []byte(`{"type":"loyalty_points_update","data":{"points":12}}`)
	event, err := DecodeEvent(frame)
	if err != nil {
		t.Fatalf("unknown types must not error: %v", err)
	}
	if _, ok := event.(UnknownEvent); !ok {
		t.Fatalf("expected UnknownEvent, got %T", event)
	}
}

func TestDecodeMalformedFrame(t *testing.T) {
	t.Parallel()

	if _, err := DecodeEvent([]byte(`{nope`)); err == nil {
		t.Fatal("expected envelope error")
	}
	if _, err := DecodeEvent([]byte(`{"type":"vendor_status_update","data":"not-an-object"}`)); err == nil {
		t.Fatal("expected payload error")
	}
}
