package composition

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/habitatline/habitat-backend/pkg/enums"
)

// SubItemRef is the composable unit a slot points at: the dimensions and unit
// price of a module or catalog item. Dimension pointers are nil when the
// catalog has no value; a nil price reads as zero.
type SubItemRef struct {
	ID        uuid.UUID
	LengthMm  *int
	DepthMm   *int
	HeightMm  *int
	UnitPrice *decimal.Decimal
}

// Slot is one entry in a kit's bill of materials. PositionUID identifies the
// placement, so one sub-item may appear in several slots.
type Slot struct {
	SubItemID     uuid.UUID
	Quantity      int
	PositionClass enums.PositionClass
	PositionUID   string
}

// Entry is a flattened, quantity-expanded placement ready for persistence.
type Entry struct {
	SubItemID     uuid.UUID
	PositionClass enums.PositionClass
	PositionUID   string
	PositionOrder int
}

// UIDSource mints placement uids for one draft session: a random prefix plus
// a monotonic counter. Each session (and each duplicate flow) gets its own
// source so uids never clash with another session's placements.
type UIDSource struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewUIDSource seeds a source with a fresh random prefix.
func NewUIDSource() *UIDSource {
	return &UIDSource{prefix: strings.SplitN(uuid.NewString(), "-", 2)[0]}
}

// Next returns a uid unique within the session.
func (s *UIDSource) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s.%d", s.prefix, s.next)
}

// AddSlot appends a new slot with quantity 1. The input slice is not mutated.
func AddSlot(slots []Slot, class enums.PositionClass, subItemID uuid.UUID, uids *UIDSource) []Slot {
	out := append([]Slot(nil), slots...)
	return append(out, Slot{
		SubItemID:     subItemID,
		Quantity:      1,
		PositionClass: class,
		PositionUID:   uids.Next(),
	})
}

// SetQuantity updates the slot identified by uid. Quantities clamp to at
// least 1; non-finite input reads as 1. The input slice is not mutated.
func SetQuantity(slots []Slot, uid string, quantity float64) []Slot {
	out := append([]Slot(nil), slots...)
	for i := range out {
		if out[i].PositionUID == uid {
			out[i].Quantity = ClampQuantity(quantity)
		}
	}
	return out
}

// RemoveSlot drops the slot identified by uid. The input slice is not mutated.
func RemoveSlot(slots []Slot, uid string) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.PositionUID != uid {
			out = append(out, slot)
		}
	}
	return out
}

// Flatten expands every slot into quantity repeated entries in persistence
// order: classes enumerate bottom, top, component (physical stacking), slots
// keep their relative order within a class, and position order is assigned
// densely across the whole result. Child uids derive from the parent uid and
// index, so flattening an unchanged slot list is idempotent and diffs cleanly
// against previously persisted state.
func Flatten(slots []Slot) []Entry {
	ordered := append([]Slot(nil), slots...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PositionClass.FlattenRank() < ordered[j].PositionClass.FlattenRank()
	})

	entries := make([]Entry, 0, len(ordered))
	order := 0
	for _, slot := range ordered {
		qty := slot.Quantity
		if qty < 1 {
			qty = 1
		}
		for k := 0; k < qty; k++ {
			uid := slot.PositionUID
			if k > 0 {
				uid = fmt.Sprintf("%s-%d", slot.PositionUID, k)
			}
			entries = append(entries, Entry{
				SubItemID:     slot.SubItemID,
				PositionClass: slot.PositionClass,
				PositionUID:   uid,
				PositionOrder: order,
			})
			order++
		}
	}
	return entries
}

// ClampQuantity coerces arbitrary numeric input to a usable slot quantity.
func ClampQuantity(quantity float64) int {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return 1
	}
	qty := int(math.Round(quantity))
	if qty < 1 {
		return 1
	}
	return qty
}
