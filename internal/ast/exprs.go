package ast

import (
	"palladium/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena        *Arena[Expr]
	Ints         *Arena[ExprIntData]
	Strings      *Arena[ExprStringData]
	Bools        *Arena[ExprBoolData]
	Idents       *Arena[ExprIdentData]
	Unaries      *Arena[ExprUnaryData]
	Binaries     *Arena[ExprBinaryData]
	Calls        *Arena[ExprCallData]
	Indices      *Arena[ExprIndexData]
	Fields       *Arena[ExprFieldData]
	StructLits   *Arena[ExprStructLitData]
	EnumCtors    *Arena[ExprEnumCtorData]
	ArrayLits    *Arena[ExprArrayLitData]
	ArrayRepeats *Arena[ExprArrayRepeatData]
	Ranges       *Arena[ExprRangeData]
	Borrows      *Arena[ExprBorrowData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:        NewArena[Expr](capHint),
		Ints:         NewArena[ExprIntData](capHint),
		Strings:      NewArena[ExprStringData](capHint),
		Bools:        NewArena[ExprBoolData](capHint),
		Idents:       NewArena[ExprIdentData](capHint),
		Unaries:      NewArena[ExprUnaryData](capHint),
		Binaries:     NewArena[ExprBinaryData](capHint),
		Calls:        NewArena[ExprCallData](capHint),
		Indices:      NewArena[ExprIndexData](capHint),
		Fields:       NewArena[ExprFieldData](capHint),
		StructLits:   NewArena[ExprStructLitData](capHint),
		EnumCtors:    NewArena[ExprEnumCtorData](capHint),
		ArrayLits:    NewArena[ExprArrayLitData](capHint),
		ArrayRepeats: NewArena[ExprArrayRepeatData](capHint),
		Ranges:       NewArena[ExprRangeData](capHint),
		Borrows:      NewArena[ExprBorrowData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the expression header for the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) NewInt(span source.Span, value int64) ExprID {
	payload := e.Ints.Allocate(ExprIntData{Value: value})
	return e.new(ExprIntLit, span, PayloadID(payload))
}

func (e *Exprs) Int(id ExprID) (*ExprIntData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIntLit {
		return nil, false
	}
	return e.Ints.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewString(span source.Span, value source.StringID) ExprID {
	payload := e.Strings.Allocate(ExprStringData{Value: value})
	return e.new(ExprStringLit, span, PayloadID(payload))
}

func (e *Exprs) String(id ExprID) (*ExprStringData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprStringLit {
		return nil, false
	}
	return e.Strings.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewBool(span source.Span, value bool) ExprID {
	payload := e.Bools.Allocate(ExprBoolData{Value: value})
	return e.new(ExprBoolLit, span, PayloadID(payload))
}

func (e *Exprs) Bool(id ExprID) (*ExprBoolData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBoolLit {
		return nil, false
	}
	return e.Bools.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewIdent(span source.Span, name source.StringID) ExprID {
	payload := e.Idents.Allocate(ExprIdentData{Name: name})
	return e.new(ExprIdent, span, PayloadID(payload))
}

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, PayloadID(payload))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(payload))
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewCall(span source.Span, callee ExprID, args []ExprID) ExprID {
	payload := e.Calls.Allocate(ExprCallData{Callee: callee, Args: args})
	return e.new(ExprCall, span, PayloadID(payload))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewIndex(span source.Span, array, index ExprID) ExprID {
	payload := e.Indices.Allocate(ExprIndexData{Array: array, Index: index})
	return e.new(ExprIndex, span, PayloadID(payload))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIndex {
		return nil, false
	}
	return e.Indices.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewField(span source.Span, object ExprID, name source.StringID) ExprID {
	payload := e.Fields.Allocate(ExprFieldData{Object: object, Name: name})
	return e.new(ExprField, span, PayloadID(payload))
}

func (e *Exprs) Field(id ExprID) (*ExprFieldData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprField {
		return nil, false
	}
	return e.Fields.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewStructLit(span source.Span, typ TypeID, fields []FieldInit) ExprID {
	payload := e.StructLits.Allocate(ExprStructLitData{Type: typ, Fields: fields})
	return e.new(ExprStructLit, span, PayloadID(payload))
}

func (e *Exprs) StructLit(id ExprID) (*ExprStructLitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprStructLit {
		return nil, false
	}
	return e.StructLits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewEnumCtor(span source.Span, data ExprEnumCtorData) ExprID {
	payload := e.EnumCtors.Allocate(data)
	return e.new(ExprEnumCtor, span, PayloadID(payload))
}

func (e *Exprs) EnumCtor(id ExprID) (*ExprEnumCtorData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprEnumCtor {
		return nil, false
	}
	return e.EnumCtors.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewArrayLit(span source.Span, elems []ExprID) ExprID {
	payload := e.ArrayLits.Allocate(ExprArrayLitData{Elems: elems})
	return e.new(ExprArrayLit, span, PayloadID(payload))
}

func (e *Exprs) ArrayLit(id ExprID) (*ExprArrayLitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprArrayLit {
		return nil, false
	}
	return e.ArrayLits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewArrayRepeat(span source.Span, value, count ExprID) ExprID {
	payload := e.ArrayRepeats.Allocate(ExprArrayRepeatData{Value: value, Count: count})
	return e.new(ExprArrayRepeat, span, PayloadID(payload))
}

func (e *Exprs) ArrayRepeat(id ExprID) (*ExprArrayRepeatData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprArrayRepeat {
		return nil, false
	}
	return e.ArrayRepeats.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewRange(span source.Span, start, end ExprID) ExprID {
	payload := e.Ranges.Allocate(ExprRangeData{Start: start, End: end})
	return e.new(ExprRange, span, PayloadID(payload))
}

func (e *Exprs) Range(id ExprID) (*ExprRangeData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprRange {
		return nil, false
	}
	return e.Ranges.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewBorrow(span source.Span, mutable bool, operand ExprID) ExprID {
	payload := e.Borrows.Allocate(ExprBorrowData{Mutable: mutable, Operand: operand})
	return e.new(ExprBorrow, span, PayloadID(payload))
}

func (e *Exprs) Borrow(id ExprID) (*ExprBorrowData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBorrow {
		return nil, false
	}
	return e.Borrows.Get(uint32(expr.Payload)), true
}
