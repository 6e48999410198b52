package diag

import (
	"testing"

	"palladium/internal/source"
)

func TestBagCap(t *testing.T) {
	bag := NewBag(2)
	for i := 0; i < 5; i++ {
		bag.Add(Errorf(TypeMismatch, source.Span{}, "e%d", i))
	}
	if bag.Len() != 2 {
		t.Fatalf("cap not enforced: len=%d", bag.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	bag := NewBag(8)
	bag.Add(Warnf(MatchUnreachableArm, source.Span{}, "w"))
	if bag.HasErrors() {
		t.Fatalf("warning counted as error")
	}
	bag.Add(Errorf(OwnUseAfterMove, source.Span{}, "e"))
	if !bag.HasErrors() {
		t.Fatalf("error not detected")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	bag := NewBag(8)
	bag.Add(Errorf(TypeMismatch, source.Span{File: 1, Start: 40, End: 41}, "late"))
	bag.Add(Warnf(MatchUnreachableArm, source.Span{File: 1, Start: 10, End: 12}, "warn"))
	bag.Add(Errorf(OwnUseAfterMove, source.Span{File: 1, Start: 10, End: 12}, "err"))
	bag.Sort()

	items := bag.Items()
	if items[0].Severity != SevError || items[0].Code != OwnUseAfterMove {
		t.Fatalf("errors must sort before warnings at the same span, got %v", items[0].Code)
	}
	if items[2].Message != "late" {
		t.Fatalf("span ordering broken: %q", items[2].Message)
	}
}

func TestBagErrorPastCapStillFails(t *testing.T) {
	bag := NewBag(2)
	bag.Add(Warnf(MatchUnreachableArm, source.Span{}, "w1"))
	bag.Add(Warnf(MatchUnreachableArm, source.Span{}, "w2"))
	if ok := bag.Add(Errorf(TypeMismatch, source.Span{}, "late error")); ok {
		t.Fatalf("cap must drop the stored item")
	}
	if bag.Len() != 2 {
		t.Fatalf("len = %d, want 2", bag.Len())
	}
	if bag.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", bag.Dropped())
	}
	if !bag.HasErrors() {
		t.Fatalf("error dropped at the cap must still fail the compile")
	}
}

func TestBagLargeCapKeepsEverything(t *testing.T) {
	bag := NewBag(65536)
	bag.Add(Errorf(TypeMismatch, source.Span{}, "e"))
	if bag.Len() != 1 || !bag.HasErrors() {
		t.Fatalf("len = %d hasErrors = %v", bag.Len(), bag.HasErrors())
	}
}

func TestBagNonPositiveCapClamped(t *testing.T) {
	bag := NewBag(0)
	bag.Add(Errorf(TypeMismatch, source.Span{}, "e"))
	if bag.Len() != 1 {
		t.Fatalf("len = %d, want 1", bag.Len())
	}
}

func TestBagDedup(t *testing.T) {
	span := source.Span{File: 1, Start: 10, End: 12}
	bag := NewBag(8)
	bag.Add(Errorf(TypeMismatch, span, "first"))
	bag.Add(Errorf(TypeMismatch, span, "repeat"))
	bag.Add(Errorf(OwnUseAfterMove, span, "other code survives"))
	bag.Dedup()

	if bag.Len() != 2 {
		t.Fatalf("len = %d, want 2", bag.Len())
	}
	if bag.Items()[0].Message != "first" {
		t.Fatalf("first occurrence must win, got %q", bag.Items()[0].Message)
	}
}

func TestCodeStage(t *testing.T) {
	cases := map[Code]string{
		ResDuplicateSymbol:   "resolve",
		TypeMismatch:         "typecheck",
		OwnBorrowConflict:    "ownership",
		MatchMissingVariants: "exhaustiveness",
		InternalCodegen:      "internal",
	}
	for code, want := range cases {
		if got := code.Stage(); got != want {
			t.Fatalf("%v stage = %q, want %q", code, got, want)
		}
	}
}
