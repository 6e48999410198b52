package sema_test

import (
	"testing"

	"palladium/internal/diag"
)

func TestOwnUseAfterMove(t *testing.T) {
	_, bag := checkSource(t, `
fn consume(s: String) {}
fn main() {
    let s = "hello";
    consume(s);
    print(s);
}
`)
	if !hasCode(bag, diag.OwnUseAfterMove) {
		t.Fatalf("want use-after-move, got %v", codesOf(bag))
	}
}

func TestOwnCopyTypesNeverMove(t *testing.T) {
	_, bag := checkSource(t, `
fn take(n: i64) {}
fn main() {
    let n = 5;
    take(n);
    take(n);
    print_int(n);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestOwnReferencesCopy(t *testing.T) {
	_, bag := checkSource(t, `
fn peek(s: &String) -> i64 {
    return 0;
}
fn main() {
    let s = "hi";
    let r = &s;
    let a = peek(r);
    let b = peek(r);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestOwnMoveInOneBranchPoisonsAfter(t *testing.T) {
	_, bag := checkSource(t, `
fn consume(s: String) {}
fn main() {
    let s = "x";
    let cond = true;
    if cond {
        consume(s);
    }
    print(s);
}
`)
	if !hasCode(bag, diag.OwnUseAfterMove) {
		t.Fatalf("want use-after-move after branch, got %v", codesOf(bag))
	}
}

func TestOwnMoveInBothBranchesOnceEach(t *testing.T) {
	_, bag := checkSource(t, `
fn consume(s: String) {}
fn main() {
    let s = "x";
    let cond = true;
    if cond {
        consume(s);
    } else {
        consume(s);
    }
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestOwnReassignmentReinitializes(t *testing.T) {
	_, bag := checkSource(t, `
fn consume(s: String) {}
fn main() {
    let mut s = "a";
    consume(s);
    s = "b";
    consume(s);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestOwnSharedBorrowsCoexist(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let s = "x";
    let a = &s;
    let b = &s;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestOwnMutBorrowExcludesShared(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let mut s = "x";
    let a = &s;
    let b = &mut s;
}
`)
	if !hasCode(bag, diag.OwnBorrowConflict) {
		t.Fatalf("want borrow conflict, got %v", codesOf(bag))
	}
}

func TestOwnTwoMutBorrowsConflict(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let mut s = "x";
    let a = &mut s;
    let b = &mut s;
}
`)
	if !hasCode(bag, diag.OwnBorrowConflict) {
		t.Fatalf("want borrow conflict, got %v", codesOf(bag))
	}
}

func TestOwnMutBorrowOfImmutable(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let s = "x";
    let r = &mut s;
}
`)
	if !hasCode(bag, diag.OwnMutBorrowImmutable) {
		t.Fatalf("want immutable mut-borrow error, got %v", codesOf(bag))
	}
}

func TestOwnMoveWhileBorrowed(t *testing.T) {
	_, bag := checkSource(t, `
fn consume(s: String) {}
fn main() {
    let s = "x";
    let r = &s;
    consume(s);
}
`)
	if !hasCode(bag, diag.OwnMoveWhileBorrowed) {
		t.Fatalf("want move-while-borrowed, got %v", codesOf(bag))
	}
}

func TestOwnAssignWhileBorrowed(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let mut s = "x";
    let r = &s;
    s = "y";
}
`)
	if !hasCode(bag, diag.OwnAssignWhileBorrowed) {
		t.Fatalf("want assign-while-borrowed, got %v", codesOf(bag))
	}
}

func TestOwnBorrowReleasedAtBlockEnd(t *testing.T) {
	_, bag := checkSource(t, `
fn consume(s: String) {}
fn main() {
    let s = "x";
    let cond = true;
    if cond {
        let r = &s;
    }
    consume(s);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestOwnFieldAccessDoesNotMove(t *testing.T) {
	_, bag := checkSource(t, `
struct Named {
    name: String,
    id: i64,
}
fn main() {
    let n = Named { name: "a", id: 1 };
    let x = n.id;
    let y = n.id;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestOwnMatchArmsMoveIndependently(t *testing.T) {
	_, bag := checkSource(t, `
enum Option<T> {
    Some(T),
    None,
}
fn consume(s: String) {}
fn main() {
    let s = "x";
    let o: Option<i64> = Some(1);
    match o {
        Some(v) => consume(s),
        None => consume(s),
    }
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestOwnMoveInMatchArmPoisonsAfter(t *testing.T) {
	_, bag := checkSource(t, `
enum Flag { On, Off }
fn consume(s: String) {}
fn main() {
    let s = "x";
    let f = Flag::On;
    match f {
        On => consume(s),
        Off => {},
    }
    print(s);
}
`)
	if !hasCode(bag, diag.OwnUseAfterMove) {
		t.Fatalf("want use-after-move after match, got %v", codesOf(bag))
	}
}

func TestOwnMoveInLoopBodyPoisonsNextIteration(t *testing.T) {
	_, bag := checkSource(t, `
fn consume(s: String) {}
fn main() {
    let s = "hello";
    let mut go = true;
    while go {
        consume(s);
        go = false;
    }
}
`)
	if !hasCode(bag, diag.OwnUseAfterMove) {
		t.Fatalf("want use-after-move on the next iteration, got %v", codesOf(bag))
	}
}

func TestOwnLoopReassignmentEachIteration(t *testing.T) {
	_, bag := checkSource(t, `
fn consume(s: String) {}
fn main() {
    let mut s = "first";
    let mut go = true;
    while go {
        consume(s);
        s = "again";
        go = false;
    }
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestOwnForBindingFreshEachIteration(t *testing.T) {
	_, bag := checkSource(t, `
fn consume(s: String) {}
fn main() {
    let items = ["a", "b"];
    for s in items {
        consume(s);
    }
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}
