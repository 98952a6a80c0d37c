package enums

import "fmt"

// ProductKind distinguishes composable leaves from assembled kit solutions.
type ProductKind string

const (
	ProductKindModule      ProductKind = "module"
	ProductKindCatalogItem ProductKind = "catalog_item"
	ProductKindKit         ProductKind = "kit"
)

var validProductKinds = []ProductKind{
	ProductKindModule,
	ProductKindCatalogItem,
	ProductKindKit,
}

// String implements fmt.Stringer.
func (k ProductKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ProductKind.
func (k ProductKind) IsValid() bool {
	for _, candidate := range validProductKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsComposite reports whether products of this kind own composition slots.
func (k ProductKind) IsComposite() bool {
	return k == ProductKindKit
}

// ParseProductKind converts raw input into a ProductKind.
func ParseProductKind(value string) (ProductKind, error) {
	for _, candidate := range validProductKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product kind %q", value)
}

// ProductStatus tracks the authoring lifecycle of a catalog entity.
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
)

var validProductStatuses = []ProductStatus{
	ProductStatusDraft,
	ProductStatusPublished,
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

// PositionClass is the structural role of a composition slot. Stacked kits use
// bottom/top tiers; flat kits keep everything under component.
type PositionClass string

const (
	PositionClassBottom    PositionClass = "bottom"
	PositionClassTop       PositionClass = "top"
	PositionClassComponent PositionClass = "component"
)

var validPositionClasses = []PositionClass{
	PositionClassBottom,
	PositionClassTop,
	PositionClassComponent,
}

// String implements fmt.Stringer.
func (p PositionClass) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PositionClass.
func (p PositionClass) IsValid() bool {
	for _, candidate := range validPositionClasses {
		if candidate == p {
			return true
		}
	}
	return false
}

// FlattenRank orders classes the way assemblies stack physically. Persisted
// position order always enumerates bottom before top before component.
func (p PositionClass) FlattenRank() int {
	switch p {
	case PositionClassBottom:
		return 0
	case PositionClassTop:
		return 1
	default:
		return 2
	}
}

// ParsePositionClass converts raw input into a PositionClass.
func ParsePositionClass(value string) (PositionClass, error) {
	for _, candidate := range validPositionClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid position class %q", value)
}
