package diag

import (
	"fmt"
	"sort"
)

// Bag is the session-wide, append-only diagnostics list. Storage is
// capped so a hopeless file does not bury the user in output, but
// severity counts keep accumulating past the cap: a dropped Error still
// fails the compile.
type Bag struct {
	items   []Diagnostic
	max     int
	errors  int
	dropped int
}

func NewBag(max int) *Bag {
	if max < 1 {
		max = 1
	}
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   max,
	}
}

// Add records a diagnostic. Past the cap the item itself is dropped and
// Add returns false, but error accounting still happens.
func (b *Bag) Add(d Diagnostic) bool {
	if d.Severity >= SevError {
		b.errors++
	}
	if len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Dropped reports how many diagnostics were discarded at the cap.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors reports whether any Error-severity diagnostic was added,
// counting ones dropped at the cap.
func (b *Bag) HasErrors() bool {
	return b.errors > 0
}

// Items returns the internal slice. Callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders diagnostics by file, start, end, severity (desc), code so
// that output is deterministic across runs.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops diagnostics that repeat an earlier one's code and primary
// span. Re-checked bodies can report the same fault twice; the first
// report wins.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s", d.Code, d.Primary)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, d)
	}
	b.items = kept
}
