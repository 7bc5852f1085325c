package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/homechef-app/homechef-backend/pkg/errors"
	"github.com/homechef-app/homechef-backend/pkg/logger"
	"github.com/homechef-app/homechef-backend/pkg/metrics"
)

// SnapshotSchemaVersion stamps each persisted snapshot so future layout
// changes can migrate or discard historical blobs explicitly.
const SnapshotSchemaVersion = 1

// Line is one menu item inside a category cart.
type Line struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	ImageRef     string          `json:"imageRef,omitempty"`
	OfferPercent *int            `json:"offerPercent,omitempty"`
}

// CategoryCart groups the lines a shopper collected for one category. All
// lines belong to the single vendor the cart was opened with.
type CategoryCart struct {
	CategoryID   string   `json:"categoryId"`
	CategoryName string   `json:"categoryName"`
	VendorID     string   `json:"vendorId"`
	VendorName   string   `json:"vendorName"`
	VendorLat    *float64 `json:"vendorLat,omitempty"`
	VendorLon    *float64 `json:"vendorLon,omitempty"`
	Lines        []Line   `json:"lines"`
}

// Subtotal sums unit price times quantity across the cart's lines.
func (c CategoryCart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

func (c CategoryCart) clone() CategoryCart {
	out := c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	return out
}

// Snapshot is the full persisted ledger state.
type Snapshot struct {
	SchemaVersion int            `json:"schemaVersion"`
	Carts         []CategoryCart `json:"carts"`
}

// SnapshotStore persists and restores the full ledger snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, bool, error)
}

// AddItem is the payload for opening or extending a category cart.
type AddItem struct {
	ID           string
	Name         string
	CategoryID   string
	VendorID     string
	VendorName   string
	UnitPrice    decimal.Decimal
	ImageRef     string
	OfferPercent *int
	VendorLat    *float64
	VendorLon    *float64
}

// ConflictDetails is attached to vendor-conflict failures so the client can
// name the vendor already holding the category.
type ConflictDetails struct {
	CanAdd         bool   `json:"canAdd"`
	ConflictVendor string `json:"conflictVendor"`
}

// Service owns the in-session cart ledger: an ordered collection of
// category carts, at most one per category, each bound to exactly one
// vendor. Mutations are serialized and each successful one triggers a
// best-effort full-snapshot write.
type Service struct {
	mu    sync.Mutex
	carts []CategoryCart

	store   SnapshotStore
	logg    *logger.Logger
	metrics *metrics.CartMetrics

	persist   sync.WaitGroup
	pendingMu sync.Mutex
	pending   Snapshot
	seq       uint64
	writeMu   sync.Mutex
}

// NewService builds a ledger service. The store may be nil in tests; the
// ledger then runs memory-only.
func NewService(store SnapshotStore, logg *logger.Logger, cartMetrics *metrics.CartMetrics) *Service {
	return &Service{
		store:   store,
		logg:    logg,
		metrics: cartMetrics,
	}
}

// Restore loads the persisted snapshot wholesale. A missing key or a
// schema-version mismatch starts the session with an empty ledger; neither
// is an error.
func (s *Service) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snap, found, err := s.store.Load(ctx)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart snapshot unreadable, starting empty")
		}
		return nil
	}
	if !found {
		return nil
	}
	if snap.SchemaVersion != SnapshotSchemaVersion {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "schema_version", snap.SchemaVersion), "cart snapshot schema mismatch, starting empty")
		}
		return nil
	}

	s.mu.Lock()
	s.carts = snap.Carts
	s.mu.Unlock()
	return nil
}

// CanAdd reports whether an item from the given vendor may enter the given
// category cart, returning the conflicting vendor's name when not.
func (s *Service) CanAdd(vendorID, categoryID string) (bool, string) {
	if vendorID == "" || categoryID == "" {
		return true, ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cart := range s.carts {
		if cart.CategoryID != categoryID {
			continue
		}
		if cart.VendorID == vendorID {
			return true, ""
		}
		return false, cart.VendorName
	}
	return true, ""
}

// AddLine adds one unit of the item to its category cart, opening the cart
// when needed. A category already bound to a different vendor rejects the
// add without mutating anything.
func (s *Service) AddLine(ctx context.Context, item AddItem, categoryName string) error {
	if item.CategoryID == "" {
		s.metrics.IncRejected("missing_category")
		return pkgerrors.New(pkgerrors.CodeValidation, "item category id is required")
	}
	if item.ID == "" {
		s.metrics.IncRejected("missing_item")
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	s.mu.Lock()
	cartIdx := -1
	for i, cart := range s.carts {
		if cart.CategoryID == item.CategoryID {
			cartIdx = i
			break
		}
	}

	if cartIdx >= 0 && item.VendorID != "" && s.carts[cartIdx].VendorID != item.VendorID {
		conflictVendor := s.carts[cartIdx].VendorName
		s.mu.Unlock()
		s.metrics.IncRejected("vendor_conflict")
		return pkgerrors.New(pkgerrors.CodeVendorConflict, "category already holds items from another vendor").
			WithDetails(ConflictDetails{CanAdd: false, ConflictVendor: conflictVendor})
	}

	if cartIdx < 0 {
		s.carts = append(s.carts, CategoryCart{
			CategoryID:   item.CategoryID,
			CategoryName: categoryName,
			VendorID:     item.VendorID,
			VendorName:   item.VendorName,
			VendorLat:    item.VendorLat,
			VendorLon:    item.VendorLon,
			Lines:        []Line{lineFromItem(item)},
		})
	} else {
		cart := &s.carts[cartIdx]
		lineIdx := -1
		for i, line := range cart.Lines {
			if line.ID == item.ID {
				lineIdx = i
				break
			}
		}
		if lineIdx >= 0 {
			cart.Lines[lineIdx].Quantity++
		} else {
			cart.Lines = append(cart.Lines, lineFromItem(item))
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.IncMutation("add_line")
	s.persistSnapshot(snap)
	return nil
}

// SetQuantity replaces the line's quantity. Zero or negative behaves as
// RemoveLine; setting the quantity it already has is a no-op.
func (s *Service) SetQuantity(ctx context.Context, categoryID, itemID string, qty int) error {
	if qty <= 0 {
		return s.RemoveLine(ctx, categoryID, itemID)
	}

	s.mu.Lock()
	_, line := s.findLineLocked(categoryID, itemID)
	if line == nil {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if line.Quantity == qty {
		s.mu.Unlock()
		return nil
	}
	line.Quantity = qty
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.IncMutation("set_quantity")
	s.persistSnapshot(snap)
	return nil
}

// RemoveLine drops the line; a cart left with no lines is dropped wholly.
func (s *Service) RemoveLine(ctx context.Context, categoryID, itemID string) error {
	s.mu.Lock()
	cartIdx := -1
	for i, cart := range s.carts {
		if cart.CategoryID == categoryID {
			cartIdx = i
			break
		}
	}
	if cartIdx < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "category cart not found")
	}

	cart := &s.carts[cartIdx]
	lineIdx := -1
	for i, line := range cart.Lines {
		if line.ID == itemID {
			lineIdx = i
			break
		}
	}
	if lineIdx < 0 {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}

	cart.Lines = append(cart.Lines[:lineIdx], cart.Lines[lineIdx+1:]...)
	if len(cart.Lines) == 0 {
		s.carts = append(s.carts[:cartIdx], s.carts[cartIdx+1:]...)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.IncMutation("remove_line")
	s.persistSnapshot(snap)
	return nil
}

// ClearCategory drops one category cart. Clearing an absent category is a
// no-op so order placement can clear unconditionally.
func (s *Service) ClearCategory(ctx context.Context, categoryID string) error {
	s.mu.Lock()
	kept := s.carts[:0]
	removed := false
	for _, cart := range s.carts {
		if cart.CategoryID == categoryID {
			removed = true
			continue
		}
		kept = append(kept, cart)
	}
	if !removed {
		s.mu.Unlock()
		return nil
	}
	s.carts = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.IncMutation("clear_category")
	s.persistSnapshot(snap)
	return nil
}

// ClearAll drops every cart.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	if len(s.carts) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.carts = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.IncMutation("clear_all")
	s.persistSnapshot(snap)
	return nil
}

// Carts returns a deep copy of every category cart in insertion order.
func (s *Service) Carts() []CategoryCart {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CategoryCart, 0, len(s.carts))
	for _, cart := range s.carts {
		out = append(out, cart.clone())
	}
	return out
}

// Cart returns a deep copy of one category cart.
func (s *Service) Cart(categoryID string) (CategoryCart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cart := range s.carts {
		if cart.CategoryID == categoryID {
			return cart.clone(), true
		}
	}
	return CategoryCart{}, false
}

// TotalItems counts line quantities, across all carts when categoryID is
// empty.
func (s *Service) TotalItems(categoryID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, cart := range s.carts {
		if categoryID != "" && cart.CategoryID != categoryID {
			continue
		}
		for _, line := range cart.Lines {
			total += line.Quantity
		}
	}
	return total
}

// Snapshot returns a copy of the current persisted form.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Flush waits for in-flight snapshot writes; used at shutdown.
func (s *Service) Flush() {
	s.persist.Wait()
}

func (s *Service) snapshotLocked() Snapshot {
	carts := make([]CategoryCart, 0, len(s.carts))
	for _, cart := range s.carts {
		carts = append(carts, cart.clone())
	}
	return Snapshot{SchemaVersion: SnapshotSchemaVersion, Carts: carts}
}

func (s *Service) findLineLocked(categoryID, itemID string) (*CategoryCart, *Line) {
	for i := range s.carts {
		if s.carts[i].CategoryID != categoryID {
			continue
		}
		for j := range s.carts[i].Lines {
			if s.carts[i].Lines[j].ID == itemID {
				return &s.carts[i], &s.carts[i].Lines[j]
			}
		}
		return &s.carts[i], nil
	}
	return nil, nil
}

// persistSnapshot writes the snapshot in the background. The in-memory
// ledger stays authoritative for the session, so write failures are logged
// and otherwise swallowed. Writes are latest-wins: a goroutine whose
// snapshot has been superseded skips its write instead of clobbering a
// newer one.
func (s *Service) persistSnapshot(snap Snapshot) {
	if s.store == nil {
		return
	}
	s.pendingMu.Lock()
	s.pending = snap
	s.seq++
	seq := s.seq
	s.pendingMu.Unlock()

	s.persist.Add(1)
	go func() {
		defer s.persist.Done()
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		s.pendingMu.Lock()
		if seq != s.seq {
			s.pendingMu.Unlock()
			return
		}
		latest := s.pending
		s.pendingMu.Unlock()

		ctx := context.Background()
		if err := s.store.Save(ctx, latest); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart snapshot write failed")
		}
	}()
}

func lineFromItem(item AddItem) Line {
	return Line{
		ID:           item.ID,
		Name:         item.Name,
		UnitPrice:    item.UnitPrice,
		Quantity:     1,
		ImageRef:     item.ImageRef,
		OfferPercent: item.OfferPercent,
	}
}
