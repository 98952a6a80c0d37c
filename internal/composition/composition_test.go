package composition

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/habitatline/habitat-backend/pkg/enums"
)

func TestAddSlotDoesNotMutateInput(t *testing.T) {
	uids := NewUIDSource()
	original := []Slot{{SubItemID: uuid.New(), Quantity: 1, PositionClass: enums.PositionClassBottom, PositionUID: "keep"}}

	extended := AddSlot(original, enums.PositionClassTop, uuid.New(), uids)

	if len(original) != 1 {
		t.Fatalf("input mutated: %d slots", len(original))
	}
	if len(extended) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(extended))
	}
	if extended[1].Quantity != 1 {
		t.Fatalf("new slot quantity should default to 1, got %d", extended[1].Quantity)
	}
	if extended[1].PositionUID == "" || extended[1].PositionUID == "keep" {
		t.Fatalf("expected fresh uid, got %q", extended[1].PositionUID)
	}
}

func TestUIDSourceUniqueWithinSession(t *testing.T) {
	uids := NewUIDSource()
	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		uid := uids.Next()
		if _, dup := seen[uid]; dup {
			t.Fatalf("duplicate uid %s", uid)
		}
		seen[uid] = struct{}{}
	}
}

func TestSetQuantityClamps(t *testing.T) {
	slots := []Slot{{PositionUID: "a", Quantity: 2}}

	if got := SetQuantity(slots, "a", 5)[0].Quantity; got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := SetQuantity(slots, "a", 0)[0].Quantity; got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	if got := SetQuantity(slots, "a", -7)[0].Quantity; got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	if got := SetQuantity(slots, "a", math.NaN())[0].Quantity; got != 1 {
		t.Fatalf("expected NaN to read as 1, got %d", got)
	}
	if got := SetQuantity(slots, "a", math.Inf(1))[0].Quantity; got != 1 {
		t.Fatalf("expected Inf to read as 1, got %d", got)
	}
	if got := SetQuantity(slots, "missing", 9); got[0].Quantity != 2 {
		t.Fatalf("unknown uid must not change anything, got %d", got[0].Quantity)
	}
}

func TestRemoveSlot(t *testing.T) {
	slots := []Slot{{PositionUID: "a"}, {PositionUID: "b"}, {PositionUID: "c"}}
	out := RemoveSlot(slots, "b")
	if len(out) != 2 || out[0].PositionUID != "a" || out[1].PositionUID != "c" {
		t.Fatalf("unexpected result: %+v", out)
	}
	if len(slots) != 3 {
		t.Fatal("input mutated")
	}
}

func TestFlattenExpandsQuantityWithDerivedUIDs(t *testing.T) {
	item := uuid.New()
	slots := []Slot{{SubItemID: item, Quantity: 3, PositionClass: enums.PositionClassBottom, PositionUID: "base"}}

	entries := Flatten(slots)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantUIDs := []string{"base", "base-1", "base-2"}
	for i, entry := range entries {
		if entry.PositionUID != wantUIDs[i] {
			t.Fatalf("entry %d: expected uid %s got %s", i, wantUIDs[i], entry.PositionUID)
		}
		if entry.PositionOrder != i {
			t.Fatalf("entry %d: expected dense order %d got %d", i, i, entry.PositionOrder)
		}
	}

	// Idempotent on an unchanged slot list.
	again := Flatten(slots)
	for i := range entries {
		if entries[i] != again[i] {
			t.Fatalf("flatten not stable at %d: %+v vs %+v", i, entries[i], again[i])
		}
	}
}

func TestFlattenOrdersClassesBottomTopComponent(t *testing.T) {
	slots := []Slot{
		{SubItemID: uuid.New(), Quantity: 1, PositionClass: enums.PositionClassComponent, PositionUID: "c1"},
		{SubItemID: uuid.New(), Quantity: 1, PositionClass: enums.PositionClassTop, PositionUID: "t1"},
		{SubItemID: uuid.New(), Quantity: 1, PositionClass: enums.PositionClassBottom, PositionUID: "b1"},
		{SubItemID: uuid.New(), Quantity: 1, PositionClass: enums.PositionClassTop, PositionUID: "t2"},
	}

	entries := Flatten(slots)
	gotUIDs := make([]string, len(entries))
	for i, e := range entries {
		gotUIDs[i] = e.PositionUID
	}
	want := []string{"b1", "t1", "t2", "c1"}
	if fmt.Sprint(gotUIDs) != fmt.Sprint(want) {
		t.Fatalf("expected order %v, got %v", want, gotUIDs)
	}
}

func TestFlattenTreatsZeroQuantityAsOne(t *testing.T) {
	slots := []Slot{{SubItemID: uuid.New(), Quantity: 0, PositionClass: enums.PositionClassComponent, PositionUID: "x"}}
	entries := Flatten(slots)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}
