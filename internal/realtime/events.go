package realtime

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Wire event types the backend pushes over the socket.
const (
	TypeVendorStatus        = "vendor_status_update"
	TypeProductAvailability = "product_availability_update"
	TypeOrderStatus         = "order_status_update"
	TypeCatalogUpdate       = "catalog_update"
)

// envelope is the outer frame of every pushed message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Event is the decoded form of one pushed message. Exactly one concrete
// variant is produced per frame; frames with an unrecognized type decode to
// UnknownEvent so a client update never breaks the channel.
type Event interface {
	eventType() string
}

// VendorStatusEvent announces a vendor opening or closing.
type VendorStatusEvent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsOpen bool   `json:"isOpen"`
}

func (VendorStatusEvent) eventType() string { return TypeVendorStatus }

// ProductAvailabilityEvent announces a product going in or out of stock.
type ProductAvailabilityEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsAvailable bool   `json:"isAvailable"`
	Stock       *int   `json:"stock,omitempty"`
}

func (ProductAvailabilityEvent) eventType() string { return TypeProductAvailability }

// DomainEvent carries a recognized domain notification whose payload the
// channel does not interpret; it is forwarded to the invalidate hook.
type DomainEvent struct {
	Type string
	Data json.RawMessage
}

func (e DomainEvent) eventType() string { return e.Type }

// UnknownEvent is produced for frames with an unrecognized type.
type UnknownEvent struct {
	Type string
}

func (e UnknownEvent) eventType() string { return e.Type }

// DecodeEvent parses one wire frame into its event variant. Only malformed
// JSON is an error; unrecognized types are not.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch env.Type {
	case TypeVendorStatus:
		var ev VendorStatusEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return ev, nil
	case TypeProductAvailability:
		var ev ProductAvailabilityEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return ev, nil
	case TypeOrderStatus, TypeCatalogUpdate:
		return DomainEvent{Type: env.Type, Data: env.Data}, nil
	default:
		return UnknownEvent{Type: env.Type}, nil
	}
}
