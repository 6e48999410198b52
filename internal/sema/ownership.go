package sema

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

// useMode distinguishes uses that take the value from uses that only
// look at it. Field and index projections inspect their base, so no
// partial moves ever occur.
type useMode uint8

const (
	useConsume useMode = iota
	useInspect
)

// ownState tracks one binding between its declaration and the end of
// the function.
type ownState struct {
	moved   bool
	movedAt source.Span
	shared  int
	mutably bool
}

// borrowRec remembers a borrow so the frame that created it can release
// it. Borrows are lexical, they end with the enclosing block.
type borrowRec struct {
	sym     symbols.SymbolID
	mutable bool
}

type ownChecker struct {
	*checker
	states map[symbols.SymbolID]*ownState
	frames [][]borrowRec
}

func (c *checker) checkOwnership(itemID ast.ItemID, fn *ast.ItemFnData) {
	oc := &ownChecker{
		checker: c,
		states:  make(map[symbols.SymbolID]*ownState),
	}
	for _, psym := range c.syms.ParamSyms[itemID] {
		if psym.IsValid() {
			oc.states[psym] = &ownState{}
		}
	}
	oc.block(fn.Body)
}

func (oc *ownChecker) state(sym symbols.SymbolID) *ownState {
	st, ok := oc.states[sym]
	if !ok {
		st = &ownState{}
		oc.states[sym] = st
	}
	return st
}

// isCopy reports whether values of the type duplicate on use. Both
// reference flavors copy; the pointee stays where it is.
func (oc *ownChecker) isCopy(t types.TypeID) bool {
	desc, ok := oc.in.Lookup(t)
	if !ok {
		return true
	}
	return desc.Kind.IsPrimitive() || desc.Kind == types.KindRef
}

func (oc *ownChecker) block(stmts []ast.StmtID) {
	oc.frames = append(oc.frames, nil)
	for _, id := range stmts {
		oc.stmt(id)
	}
	frame := oc.frames[len(oc.frames)-1]
	oc.frames = oc.frames[:len(oc.frames)-1]
	for _, b := range frame {
		st := oc.state(b.sym)
		if b.mutable {
			st.mutably = false
		} else {
			st.shared--
		}
	}
}

func (oc *ownChecker) stmt(stmtID ast.StmtID) {
	stmts := oc.builder.Stmts
	switch stmts.Get(stmtID).Kind {
	case ast.StmtExpr:
		data, _ := stmts.Expr(stmtID)
		oc.use(data.Expr, useConsume)

	case ast.StmtLet:
		data, _ := stmts.Let(stmtID)
		oc.use(data.Value, useConsume)
		if sym, ok := oc.syms.LetSyms[stmtID]; ok {
			oc.states[sym] = &ownState{}
		}

	case ast.StmtAssign:
		data, _ := stmts.Assign(stmtID)
		oc.use(data.Value, useConsume)
		oc.assign(data.Target)

	case ast.StmtReturn:
		data, _ := stmts.Return(stmtID)
		if data.Value.IsValid() {
			oc.use(data.Value, useConsume)
		}

	case ast.StmtIf:
		data, _ := stmts.If(stmtID)
		oc.use(data.Cond, useConsume)
		before := oc.snapshot()
		oc.block(data.Then)
		thenMoves := oc.snapshot()
		oc.restore(before)
		if data.HasElse {
			oc.block(data.Else)
		}
		oc.merge(thenMoves)

	case ast.StmtWhile:
		// Walked twice: a move on one iteration is only visible to the
		// reads of the next.
		data, _ := stmts.While(stmtID)
		for pass := 0; pass < 2; pass++ {
			oc.use(data.Cond, useConsume)
			oc.block(data.Body)
		}

	case ast.StmtFor:
		data, _ := stmts.For(stmtID)
		oc.use(data.Iter, useConsume)
		sym, hasSym := oc.syms.ForSyms[stmtID]
		for pass := 0; pass < 2; pass++ {
			// The loop binding holds a fresh element every iteration.
			if hasSym {
				oc.states[sym] = &ownState{}
			}
			oc.block(data.Body)
		}

	case ast.StmtMatch:
		data, _ := stmts.Match(stmtID)
		oc.use(data.Scrutinee, useConsume)
		before := oc.snapshot()
		merged := before
		for _, arm := range data.Arms {
			oc.restore(before)
			oc.resetPatternBinds(arm.Pattern)
			oc.block(arm.Body)
			after := oc.snapshot()
			merged = unionMoves(merged, after)
		}
		oc.restore(merged)

	case ast.StmtBreak, ast.StmtContinue:
	}
}

// resetPatternBinds gives every name the arm pattern introduces a fresh
// state.
func (oc *ownChecker) resetPatternBinds(patID ast.PatID) {
	pats := oc.builder.Pats
	if sym, ok := oc.syms.PatBinds[patID]; ok {
		oc.states[sym] = &ownState{}
	}
	if data, ok := pats.Enum(patID); ok {
		for _, sub := range data.Sub {
			oc.resetPatternBinds(sub)
		}
		for _, field := range data.Fields {
			oc.resetPatternBinds(field.Pat)
		}
	}
}

// assign validates and reinitializes the assignment target. Writing the
// whole binding clears a previous move; writing through a projection
// needs the base intact.
func (oc *ownChecker) assign(target ast.ExprID) {
	exprs := oc.builder.Exprs
	expr := exprs.Get(target)
	switch expr.Kind {
	case ast.ExprIdent:
		sym, ok := oc.syms.ExprSyms[target]
		if !ok {
			return
		}
		st := oc.state(sym)
		if st.shared > 0 || st.mutably {
			oc.report(diag.Errorf(diag.OwnAssignWhileBorrowed, expr.Span,
				"cannot assign to '%s' while it is borrowed", oc.symName(sym)))
		}
		st.moved = false

	case ast.ExprField:
		data, _ := exprs.Field(target)
		oc.use(data.Object, useInspect)
		oc.assignBorrowCheck(data.Object, expr.Span)
	case ast.ExprIndex:
		data, _ := exprs.Index(target)
		oc.use(data.Index, useConsume)
		oc.use(data.Array, useInspect)
		oc.assignBorrowCheck(data.Array, expr.Span)
	case ast.ExprUnary:
		data, _ := exprs.Unary(target)
		if data.Op == ast.UnaryDeref {
			oc.use(data.Operand, useInspect)
		}
	}
}

// assignBorrowCheck rejects writes into a projection of a binding that
// is currently shared. A shared borrow promises the whole value stays
// untouched.
func (oc *ownChecker) assignBorrowCheck(base ast.ExprID, span source.Span) {
	sym, ok := oc.rootBinding(base)
	if !ok {
		return
	}
	st := oc.state(sym)
	if st.shared > 0 {
		oc.report(diag.Errorf(diag.OwnAssignWhileBorrowed, span,
			"cannot assign into '%s' while it is borrowed", oc.symName(sym)))
	}
}

func (oc *ownChecker) use(id ast.ExprID, mode useMode) {
	if !id.IsValid() {
		return
	}
	exprs := oc.builder.Exprs
	expr := exprs.Get(id)
	switch expr.Kind {
	case ast.ExprIntLit, ast.ExprStringLit, ast.ExprBoolLit:

	case ast.ExprIdent:
		oc.useIdent(id, mode, expr.Span)

	case ast.ExprUnary:
		data, _ := exprs.Unary(id)
		if data.Op == ast.UnaryDeref {
			oc.use(data.Operand, useInspect)
		} else {
			oc.use(data.Operand, useConsume)
		}

	case ast.ExprBinary:
		data, _ := exprs.Binary(id)
		oc.use(data.Left, useConsume)
		oc.use(data.Right, useConsume)

	case ast.ExprCall:
		data, _ := exprs.Call(id)
		for _, arg := range data.Args {
			oc.use(arg, useConsume)
		}

	case ast.ExprIndex:
		data, _ := exprs.Index(id)
		oc.use(data.Index, useConsume)
		oc.use(data.Array, useInspect)

	case ast.ExprField:
		data, _ := exprs.Field(id)
		oc.use(data.Object, useInspect)

	case ast.ExprStructLit:
		data, _ := exprs.StructLit(id)
		for _, field := range data.Fields {
			oc.use(field.Value, useConsume)
		}

	case ast.ExprEnumCtor:
		data, _ := exprs.EnumCtor(id)
		for _, arg := range data.Args {
			oc.use(arg, useConsume)
		}
		for _, field := range data.Fields {
			oc.use(field.Value, useConsume)
		}

	case ast.ExprArrayLit:
		data, _ := exprs.ArrayLit(id)
		for _, elem := range data.Elems {
			oc.use(elem, useConsume)
		}

	case ast.ExprArrayRepeat:
		data, _ := exprs.ArrayRepeat(id)
		oc.use(data.Value, useConsume)
		oc.use(data.Count, useConsume)

	case ast.ExprRange:
		data, _ := exprs.Range(id)
		oc.use(data.Start, useConsume)
		oc.use(data.End, useConsume)

	case ast.ExprBorrow:
		oc.borrow(id)
	}
}

func (oc *ownChecker) useIdent(id ast.ExprID, mode useMode, span source.Span) {
	sym, ok := oc.syms.ExprSyms[id]
	if !ok {
		return
	}
	s := oc.syms.Symbol(sym)
	if s == nil || (s.Kind != symbols.SymbolLet && s.Kind != symbols.SymbolParam) {
		return
	}
	st := oc.state(sym)
	if st.moved {
		oc.report(diag.Errorf(diag.OwnUseAfterMove, span,
			"use of moved value '%s'", oc.symName(sym)).
			WithNote(st.movedAt, "value moved here"))
		return
	}
	if mode != useConsume {
		return
	}
	if oc.isCopy(oc.res.ExprTypes[id]) {
		return
	}
	if st.shared > 0 || st.mutably {
		oc.report(diag.Errorf(diag.OwnMoveWhileBorrowed, span,
			"cannot move '%s' while it is borrowed", oc.symName(sym)))
		return
	}
	st.moved = true
	st.movedAt = span
}

func (oc *ownChecker) borrow(id ast.ExprID) {
	exprs := oc.builder.Exprs
	data, _ := exprs.Borrow(id)
	span := exprs.Get(id).Span
	oc.use(data.Operand, useInspect)
	sym, ok := oc.rootBinding(data.Operand)
	if !ok {
		return
	}
	s := oc.syms.Symbol(sym)
	st := oc.state(sym)
	if data.Mutable {
		if s != nil && s.Flags&symbols.SymbolFlagMutable == 0 {
			oc.report(diag.Errorf(diag.OwnMutBorrowImmutable, span,
				"cannot borrow '%s' mutably, it is not declared 'mut'", oc.symName(sym)).
				WithNote(s.Span, "declared here"))
			return
		}
		if st.mutably || st.shared > 0 {
			oc.report(diag.Errorf(diag.OwnBorrowConflict, span,
				"'%s' is already borrowed", oc.symName(sym)))
			return
		}
		st.mutably = true
	} else {
		if st.mutably {
			oc.report(diag.Errorf(diag.OwnBorrowConflict, span,
				"'%s' is already mutably borrowed", oc.symName(sym)))
			return
		}
		st.shared++
	}
	top := len(oc.frames) - 1
	if top >= 0 {
		oc.frames[top] = append(oc.frames[top], borrowRec{sym: sym, mutable: data.Mutable})
	}
}

// rootBinding follows a place expression down to the binding that owns
// the storage. Borrows reached through a dereference alias an existing
// reference and need no fresh tracking.
func (oc *ownChecker) rootBinding(id ast.ExprID) (symbols.SymbolID, bool) {
	exprs := oc.builder.Exprs
	expr := exprs.Get(id)
	switch expr.Kind {
	case ast.ExprIdent:
		sym, ok := oc.syms.ExprSyms[id]
		if !ok {
			return symbols.NoSymbolID, false
		}
		s := oc.syms.Symbol(sym)
		if s == nil || (s.Kind != symbols.SymbolLet && s.Kind != symbols.SymbolParam) {
			return symbols.NoSymbolID, false
		}
		return sym, true
	case ast.ExprField:
		data, _ := exprs.Field(id)
		return oc.rootBinding(data.Object)
	case ast.ExprIndex:
		data, _ := exprs.Index(id)
		return oc.rootBinding(data.Array)
	}
	return symbols.NoSymbolID, false
}

func (oc *ownChecker) symName(sym symbols.SymbolID) string {
	s := oc.syms.Symbol(sym)
	if s == nil {
		return "?"
	}
	return oc.name(s.Name)
}

// moveSnap captures the move flags of every known binding. Borrow
// counters stay live across branches because borrows are lexical and
// a branch block releases its own before merging.
type moveSnap map[symbols.SymbolID]moveMark

type moveMark struct {
	moved   bool
	movedAt source.Span
}

func (oc *ownChecker) snapshot() moveSnap {
	snap := make(moveSnap, len(oc.states))
	for sym, st := range oc.states {
		snap[sym] = moveMark{moved: st.moved, movedAt: st.movedAt}
	}
	return snap
}

func (oc *ownChecker) restore(snap moveSnap) {
	for sym, mark := range snap {
		st := oc.state(sym)
		st.moved = mark.moved
		st.movedAt = mark.movedAt
	}
}

// merge folds the moves of a completed branch into the current state.
// A value moved on either path is moved afterwards.
func (oc *ownChecker) merge(other moveSnap) {
	for sym, mark := range other {
		if !mark.moved {
			continue
		}
		st := oc.state(sym)
		if !st.moved {
			st.moved = true
			st.movedAt = mark.movedAt
		}
	}
}

func unionMoves(a, b moveSnap) moveSnap {
	out := make(moveSnap, len(a))
	for sym, mark := range a {
		out[sym] = mark
	}
	for sym, mark := range b {
		if mark.moved {
			if cur, ok := out[sym]; !ok || !cur.moved {
				out[sym] = mark
			}
		}
	}
	return out
}
