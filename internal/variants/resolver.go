package variants

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Member is one product inside a variant family: the same design in a
// specific size/color combination.
type Member struct {
	ID         uuid.UUID
	SKU        string
	SizeKeyMm  int
	ColorKey   string
	ColorLabel string
	ThumbURL   string
}

// ColorGroup is the representative entry for one colorKey, carrying the
// thumbnail and label shown in the color switcher.
type ColorGroup struct {
	ColorKey   string
	ColorLabel string
	ThumbURL   string
	MemberID   uuid.UUID
}

// Family answers cross-navigation questions for a product's variant family.
// Matching is axis-preserving: switching size keeps the selected color when a
// sibling exists, and only then falls back to the first member on the
// requested axis. Sparse families (not every size x color exists) otherwise
// produce surprising double-axis jumps.
type Family struct {
	current Member
	members []Member
}

// ColorKeyFor derives the grouping key: both colors joined when a secondary
// is present, the primary id alone otherwise, and the human label as the
// last resort for legacy rows without color references.
func ColorKeyFor(primaryID, secondaryID *uuid.UUID, primaryLabel string) string {
	switch {
	case primaryID != nil && secondaryID != nil:
		return primaryID.String() + "||" + secondaryID.String()
	case primaryID != nil:
		return primaryID.String()
	default:
		return strings.TrimSpace(primaryLabel)
	}
}

// skuCollator is fixed to the root locale so family ordering is reproducible
// across deployments regardless of host locale.
var skuCollator = collate.New(language.Und, collate.Loose)

// ResolveFamily merges current with the candidate pool, deduplicates by id
// (first occurrence wins; current is merged first so it always survives), and
// sorts by SKU with an id fallback.
func ResolveFamily(current Member, candidates []Member) *Family {
	seen := make(map[uuid.UUID]struct{}, len(candidates)+1)
	members := make([]Member, 0, len(candidates)+1)
	for _, member := range append([]Member{current}, candidates...) {
		if _, dup := seen[member.ID]; dup {
			continue
		}
		seen[member.ID] = struct{}{}
		members = append(members, member)
	}

	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.SKU != "" && b.SKU != "" {
			if cmp := skuCollator.CompareString(a.SKU, b.SKU); cmp != 0 {
				return cmp < 0
			}
		}
		return a.ID.String() < b.ID.String()
	})

	return &Family{current: current, members: members}
}

// Members returns the deduplicated, sorted family.
func (f *Family) Members() []Member {
	return append([]Member(nil), f.members...)
}

// Sizes returns the ascending unique size keys present in the family.
func (f *Family) Sizes() []int {
	seen := map[int]struct{}{}
	sizes := make([]int, 0, len(f.members))
	for _, member := range f.members {
		if _, dup := seen[member.SizeKeyMm]; dup {
			continue
		}
		seen[member.SizeKeyMm] = struct{}{}
		sizes = append(sizes, member.SizeKeyMm)
	}
	sort.Ints(sizes)
	return sizes
}

// Colors returns one representative per colorKey, first-seen wins.
func (f *Family) Colors() []ColorGroup {
	seen := map[string]struct{}{}
	groups := make([]ColorGroup, 0, len(f.members))
	for _, member := range f.members {
		if _, dup := seen[member.ColorKey]; dup {
			continue
		}
		seen[member.ColorKey] = struct{}{}
		groups = append(groups, ColorGroup{
			ColorKey:   member.ColorKey,
			ColorLabel: member.ColorLabel,
			ThumbURL:   member.ThumbURL,
			MemberID:   member.ID,
		})
	}
	return groups
}

// MatchBySize resolves the navigation target for the requested size while
// keeping the currently selected color when possible. Requesting the current
// product's own size is a no-op.
func (f *Family) MatchBySize(sizeMm int) (Member, bool) {
	if sizeMm == f.current.SizeKeyMm {
		return f.current, true
	}
	var fallback *Member
	for i := range f.members {
		member := f.members[i]
		if member.SizeKeyMm != sizeMm {
			continue
		}
		if member.ColorKey == f.current.ColorKey {
			return member, true
		}
		if fallback == nil {
			fallback = &f.members[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Member{}, false
}

// MatchByColor is the symmetric rule: keep the current size, fall back to the
// first member carrying the requested color.
func (f *Family) MatchByColor(colorKey string) (Member, bool) {
	if colorKey == f.current.ColorKey {
		return f.current, true
	}
	var fallback *Member
	for i := range f.members {
		member := f.members[i]
		if member.ColorKey != colorKey {
			continue
		}
		if member.SizeKeyMm == f.current.SizeKeyMm {
			return member, true
		}
		if fallback == nil {
			fallback = &f.members[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Member{}, false
}
