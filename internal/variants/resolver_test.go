package variants

import (
	"testing"

	"github.com/google/uuid"
)

func member(sku string, sizeMm int, colorKey string) Member {
	return Member{ID: uuid.New(), SKU: sku, SizeKeyMm: sizeMm, ColorKey: colorKey, ColorLabel: colorKey}
}

func TestResolveFamilyDedupsAndSorts(t *testing.T) {
	current := member("SHKAF-1000-BEL", 1000, "white")
	sibling := member("SHKAF-0800-BEL", 800, "white")

	// The finder frequently echoes the current product back; it must not
	// appear twice.
	family := ResolveFamily(current, []Member{sibling, current, sibling})

	members := family.Members()
	if len(members) != 2 {
		t.Fatalf("expected 2 members after dedup, got %d", len(members))
	}
	if members[0].SKU != "SHKAF-0800-BEL" || members[1].SKU != "SHKAF-1000-BEL" {
		t.Fatalf("unexpected SKU order: %s, %s", members[0].SKU, members[1].SKU)
	}
}

func TestResolveFamilySortFallsBackToID(t *testing.T) {
	blank := member("", 800, "white")
	other := member("", 1000, "white")

	family := ResolveFamily(blank, []Member{other})
	members := family.Members()
	if members[0].ID.String() > members[1].ID.String() {
		t.Fatal("members without SKUs must order by id")
	}
}

func TestSizesAscendingUnique(t *testing.T) {
	current := member("A", 1000, "white")
	family := ResolveFamily(current, []Member{
		member("B", 800, "white"),
		member("C", 800, "oak"),
		member("D", 1200, "white"),
	})

	sizes := family.Sizes()
	want := []int{800, 1000, 1200}
	if len(sizes) != len(want) {
		t.Fatalf("expected %v, got %v", want, sizes)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, sizes)
		}
	}
}

func TestColorsFirstSeenRepresentative(t *testing.T) {
	current := member("A", 1000, "white")
	oakSmall := member("B", 800, "oak")
	oakLarge := member("C", 1200, "oak")

	family := ResolveFamily(current, []Member{oakLarge, oakSmall})

	groups := family.Colors()
	if len(groups) != 2 {
		t.Fatalf("expected 2 color groups, got %d", len(groups))
	}
	for _, group := range groups {
		if group.ColorKey == "oak" && group.MemberID != oakSmall.ID {
			t.Fatalf("oak representative should be the first sorted member, got %s", group.MemberID)
		}
	}
}

func TestMatchBySizePreservesColorOnSparseFamily(t *testing.T) {
	// Family: {800, A}, {1000, A}, {800, B}. Viewing {800, B} and asking
	// for size 1000 has no B sibling, so the match falls back to {1000, A}
	// instead of reporting nothing.
	smallA := member("K-0800-A", 800, "A")
	largeA := member("K-1000-A", 1000, "A")
	smallB := member("K-0800-B", 800, "B")

	family := ResolveFamily(smallB, []Member{smallA, largeA})

	got, ok := family.MatchBySize(1000)
	if !ok {
		t.Fatal("expected a fallback match")
	}
	if got.ID != largeA.ID {
		t.Fatalf("expected fallback to %s, got %s", largeA.SKU, got.SKU)
	}

	// From {800, A} the same request keeps the color axis.
	family = ResolveFamily(smallA, []Member{largeA, smallB})
	got, ok = family.MatchBySize(1000)
	if !ok || got.ID != largeA.ID {
		t.Fatalf("expected color-preserving match %s, got %s", largeA.SKU, got.SKU)
	}
}

func TestMatchBySizeSelfIsNoOp(t *testing.T) {
	current := member("K-0800-A", 800, "A")
	other := member("K-0800-B", 800, "B")

	family := ResolveFamily(current, []Member{other})
	got, ok := family.MatchBySize(800)
	if !ok || got.ID != current.ID {
		t.Fatalf("requesting the current size must return the current product, got %s", got.SKU)
	}
}

func TestMatchByColorPreservesSize(t *testing.T) {
	current := member("K-1000-A", 1000, "A")
	sameSizeB := member("K-1000-B", 1000, "B")
	otherSizeB := member("K-0800-B", 800, "B")

	family := ResolveFamily(current, []Member{otherSizeB, sameSizeB})

	got, ok := family.MatchByColor("B")
	if !ok || got.ID != sameSizeB.ID {
		t.Fatalf("expected size-preserving match %s, got %s", sameSizeB.SKU, got.SKU)
	}

	got, ok = family.MatchByColor("missing")
	if ok {
		t.Fatalf("unknown color must not match, got %s", got.SKU)
	}
}

func TestColorKeyFor(t *testing.T) {
	primary, secondary := uuid.New(), uuid.New()

	if got := ColorKeyFor(&primary, &secondary, "White"); got != primary.String()+"||"+secondary.String() {
		t.Fatalf("unexpected combined key %q", got)
	}
	if got := ColorKeyFor(&primary, nil, "White"); got != primary.String() {
		t.Fatalf("unexpected primary key %q", got)
	}
	if got := ColorKeyFor(nil, nil, "  White "); got != "White" {
		t.Fatalf("unexpected label fallback %q", got)
	}
}
