package ast

import (
	"palladium/internal/source"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIntLit
	ExprStringLit
	ExprBoolLit
	ExprIdent
	ExprUnary
	ExprBinary
	ExprCall
	ExprIndex
	ExprField
	ExprStructLit
	ExprEnumCtor
	ExprArrayLit
	ExprArrayRepeat
	ExprRange
	ExprBorrow
)

// Expr is the arena header of an expression node. The kind-specific
// fields live in a payload arena owned by Exprs.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type UnaryOp uint8

const (
	UnaryInvalid UnaryOp = iota
	UnaryNeg
	UnaryNot
	UnaryDeref
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	case UnaryDeref:
		return "*"
	}
	return "?"
}

type BinaryOp uint8

const (
	BinaryInvalid BinaryOp = iota
	BinaryAdd
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryEq
	BinaryNe
	BinaryLt
	BinaryGt
	BinaryLe
	BinaryGe
	BinaryAnd
	BinaryOr
)

func (op BinaryOp) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryMod:
		return "%"
	case BinaryEq:
		return "=="
	case BinaryNe:
		return "!="
	case BinaryLt:
		return "<"
	case BinaryGt:
		return ">"
	case BinaryLe:
		return "<="
	case BinaryGe:
		return ">="
	case BinaryAnd:
		return "&&"
	case BinaryOr:
		return "||"
	}
	return "?"
}

type ExprIntData struct {
	Value int64
}

type ExprStringData struct {
	Value source.StringID
}

type ExprBoolData struct {
	Value bool
}

type ExprIdentData struct {
	Name source.StringID
}

type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

type ExprBinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type ExprCallData struct {
	Callee ExprID
	Args   []ExprID
}

type ExprIndexData struct {
	Array ExprID
	Index ExprID
}

type ExprFieldData struct {
	Object ExprID
	Name   source.StringID
}

// FieldInit is one `name: value` entry of a struct literal or a struct
// form enum constructor.
type FieldInit struct {
	Name  source.StringID
	Span  source.Span
	Value ExprID
}

type ExprStructLitData struct {
	Type   TypeID
	Fields []FieldInit
}

// CtorForm distinguishes the three payload shapes of an enum variant.
type CtorForm uint8

const (
	CtorUnit CtorForm = iota
	CtorTuple
	CtorStruct
)

type ExprEnumCtorData struct {
	EnumName source.StringID
	Variant  source.StringID
	Form     CtorForm
	Args     []ExprID
	Fields   []FieldInit
	// TypeArgs carries explicit instantiation arguments written at the
	// constructor, e.g. Option<i64>::None. NoTypeID entries never occur.
	TypeArgs []TypeID
}

type ExprArrayLitData struct {
	Elems []ExprID
}

type ExprArrayRepeatData struct {
	Value ExprID
	Count ExprID
}

type ExprRangeData struct {
	Start ExprID
	End   ExprID
}

type ExprBorrowData struct {
	Mutable bool
	Operand ExprID
}
