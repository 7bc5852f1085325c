package realtime

import "sync"

// VendorStatus is the tracked live state of one vendor.
type VendorStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsOpen bool   `json:"isOpen"`
}

// ProductStatus is the tracked live state of one product.
type ProductStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsAvailable bool   `json:"isAvailable"`
	Stock       *int   `json:"stock,omitempty"`
}

// ChangeKind classifies a notify-worthy delta.
type ChangeKind string

const (
	ChangeVendorOpened       ChangeKind = "vendor_opened"
	ChangeVendorClosed       ChangeKind = "vendor_closed"
	ChangeProductAvailable   ChangeKind = "product_available"
	ChangeProductUnavailable ChangeKind = "product_unavailable"
)

// Change is a typed record of one notify-worthy status delta.
type Change struct {
	Kind     ChangeKind
	EntityID string
	Name     string
}

// Summary counts the tracked snapshot state for status endpoints.
type Summary struct {
	Vendors  int  `json:"vendors"`
	Products int  `json:"products"`
	Seeded   bool `json:"seeded"`
}

// Snapshots holds the in-memory vendor and product status maps the channel
// maintains. Applies are overwrites, so replaying an event is idempotent.
// Deltas only become notify-worthy once the initial roster seed has landed
// and the entity was already tracked; the first sighting of any id applies
// silently.
type Snapshots struct {
	mu       sync.RWMutex
	vendors  map[string]VendorStatus
	products map[string]ProductStatus
	seeded   bool
}

// NewSnapshots starts with empty, unseeded maps.
func NewSnapshots() *Snapshots {
	return &Snapshots{
		vendors:  make(map[string]VendorStatus),
		products: make(map[string]ProductStatus),
	}
}

// Seed installs the initial vendor roster and ends first-load suppression.
// Ids already tracked keep their live value; a pushed update that raced the
// roster read is fresher than the roster.
func (s *Snapshots) Seed(roster []VendorStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, vendor := range roster {
		if _, exists := s.vendors[vendor.ID]; !exists {
			s.vendors[vendor.ID] = vendor
		}
	}
	s.seeded = true
}

// Seeded reports whether the roster seed has landed.
func (s *Snapshots) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

// ApplyVendor overwrites the vendor's tracked state and reports the
// notify-worthy change, if any.
func (s *Snapshots) ApplyVendor(ev VendorStatusEvent) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, known := s.vendors[ev.ID]
	s.vendors[ev.ID] = VendorStatus{ID: ev.ID, Name: ev.Name, IsOpen: ev.IsOpen}

	if !s.seeded || !known || prev.IsOpen == ev.IsOpen {
		return Change{}, false
	}
	kind := ChangeVendorOpened
	if !ev.IsOpen {
		kind = ChangeVendorClosed
	}
	return Change{Kind: kind, EntityID: ev.ID, Name: ev.Name}, true
}

// ApplyProduct overwrites the product's tracked state and reports the
// notify-worthy change, if any.
func (s *Snapshots) ApplyProduct(ev ProductAvailabilityEvent) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, known := s.products[ev.ID]
	s.products[ev.ID] = ProductStatus{ID: ev.ID, Name: ev.Name, IsAvailable: ev.IsAvailable, Stock: ev.Stock}

	if !s.seeded || !known || prev.IsAvailable == ev.IsAvailable {
		return Change{}, false
	}
	kind := ChangeProductAvailable
	if !ev.IsAvailable {
		kind = ChangeProductUnavailable
	}
	return Change{Kind: kind, EntityID: ev.ID, Name: ev.Name}, true
}

// VendorOpen reports the tracked open state for a vendor id.
func (s *Snapshots) VendorOpen(id string) (open, known bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.vendors[id]
	return status.IsOpen, ok
}

// ProductAvailability reports the tracked availability for a product id.
func (s *Snapshots) ProductAvailability(id string) (available bool, stock *int, known bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.products[id]
	return status.IsAvailable, status.Stock, ok
}

// Summarize returns tracked entity counts for the status endpoint.
func (s *Snapshots) Summarize() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summary{Vendors: len(s.vendors), Products: len(s.products), Seeded: s.seeded}
}
