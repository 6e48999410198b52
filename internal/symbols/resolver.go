package symbols

import (
	"fmt"

	"palladium/internal/diag"
	"palladium/internal/source"
)

// Resolver drives scope management and declaration/lookup routines.
type Resolver struct {
	table    *Table
	reporter diag.Reporter
	stack    []ScopeID
}

// NewResolver wires a resolver to a root scope and installs the prelude
// when the root is the module scope and still empty.
func NewResolver(table *Table, root ScopeID, reporter diag.Reporter) *Resolver {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	r := &Resolver{
		table:    table,
		reporter: reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
		if scope := table.Scopes.Get(root); scope != nil && scope.Kind == ScopeModule && len(scope.Symbols) == 0 {
			r.installPrelude(root)
		}
	}
	return r
}

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, owner ScopeOwner, span source.Span) ScopeID {
	parent := r.CurrentScope()
	scope := r.table.Scopes.New(kind, parent, owner, span)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope. The expected ID guards against unbalanced
// walkers; a mismatch is a walker bug, not a user error.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	if expected.IsValid() && top != expected {
		panic(fmt.Sprintf("symbols: scope stack mismatch, closing #%d while expecting #%d", top, expected))
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs a symbol into the current scope. A name collision in
// the module scope is an error; in inner scopes a new binding shadows
// the old one.
func (r *Resolver) Declare(sym Symbol) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, false
	}
	if scope.Kind == ScopeModule {
		for _, prevID := range scope.NameIndex[sym.Name] {
			prev := r.table.Symbols.Get(prevID)
			if prev == nil {
				continue
			}
			// Variants of different enums may share a spelling.
			if prev.Kind == SymbolVariant && sym.Kind == SymbolVariant && prev.Enum != sym.Enum {
				continue
			}
			r.reportDuplicate(sym.Name, sym.Span, prev)
			return NoSymbolID, false
		}
	}
	sym.Scope = scopeID
	id := r.table.Symbols.New(&sym)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[sym.Name] = append(scope.NameIndex[sym.Name], id)
	return id, true
}

// Lookup walks the scope chain for the newest visible symbol with the
// given name, considering only kinds accepted by the filter.
func (r *Resolver) Lookup(name source.StringID, accept func(SymbolKind) bool) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	for scopeID.IsValid() {
		scope := r.table.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		ids := scope.NameIndex[name]
		for i := len(ids) - 1; i >= 0; i-- {
			sym := r.table.Symbols.Get(ids[i])
			if sym != nil && (accept == nil || accept(sym.Kind)) {
				return ids[i], true
			}
		}
		scopeID = scope.Parent
	}
	return NoSymbolID, false
}

// LookupAll collects every visible symbol with the name, innermost and
// newest first.
func (r *Resolver) LookupAll(name source.StringID, accept func(SymbolKind) bool) []SymbolID {
	var result []SymbolID
	scopeID := r.CurrentScope()
	for scopeID.IsValid() {
		scope := r.table.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		ids := scope.NameIndex[name]
		for i := len(ids) - 1; i >= 0; i-- {
			sym := r.table.Symbols.Get(ids[i])
			if sym != nil && (accept == nil || accept(sym.Kind)) {
				result = append(result, ids[i])
			}
		}
		scopeID = scope.Parent
	}
	return result
}

func (r *Resolver) installPrelude(scopeID ScopeID) {
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return
	}
	for _, entry := range preludeEntries() {
		nameID := r.table.Strings.Intern(entry.Name)
		sym := Symbol{
			Name:    nameID,
			Kind:    entry.Kind,
			Scope:   scopeID,
			Flags:   SymbolFlagBuiltin | SymbolFlagPublic,
			Builtin: entry.Builtin,
		}
		id := r.table.Symbols.New(&sym)
		scope.Symbols = append(scope.Symbols, id)
		scope.NameIndex[nameID] = append(scope.NameIndex[nameID], id)
	}
}

func (r *Resolver) reportDuplicate(name source.StringID, span source.Span, prev *Symbol) {
	nameStr := r.table.Strings.MustLookup(name)
	if prev.Flags&SymbolFlagBuiltin != 0 {
		r.reporter.Report(diag.Errorf(diag.ResDuplicateSymbol, span,
			"'%s' conflicts with a built-in declaration", nameStr))
		return
	}
	d := diag.Errorf(diag.ResDuplicateSymbol, span, "duplicate declaration of '%s'", nameStr)
	if prev.Span != (source.Span{}) {
		d = d.WithNote(prev.Span, "previous declaration here")
	}
	r.reporter.Report(d)
}
