package ast

import (
	"palladium/internal/source"
)

// TypeSynKind classifies syntactic type expressions. Semantic types live
// in internal/types; these are just what the source spelled out.
type TypeSynKind uint8

const (
	TypeSynInvalid TypeSynKind = iota
	TypeSynPath
	TypeSynArray
	TypeSynRef
	TypeSynUnit
)

type TypeSyn struct {
	Kind    TypeSynKind
	Span    source.Span
	Payload PayloadID
}

type TypePathData struct {
	Name source.StringID
	Args []TypeID
}

type TypeArrayData struct {
	Elem TypeID
	Size int64
}

type TypeRefData struct {
	Inner   TypeID
	Mutable bool
}

// Types manages allocation of syntactic type expressions.
type Types struct {
	Arena  *Arena[TypeSyn]
	Paths  *Arena[TypePathData]
	Arrays *Arena[TypeArrayData]
	Refs   *Arena[TypeRefData]
}

func NewTypes(capHint uint) *Types {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Types{
		Arena:  NewArena[TypeSyn](capHint),
		Paths:  NewArena[TypePathData](capHint),
		Arrays: NewArena[TypeArrayData](capHint),
		Refs:   NewArena[TypeRefData](capHint),
	}
}

func (t *Types) new(kind TypeSynKind, span source.Span, payload PayloadID) TypeID {
	return TypeID(t.Arena.Allocate(TypeSyn{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (t *Types) Get(id TypeID) *TypeSyn {
	return t.Arena.Get(uint32(id))
}

func (t *Types) NewPath(span source.Span, name source.StringID, args []TypeID) TypeID {
	payload := t.Paths.Allocate(TypePathData{Name: name, Args: args})
	return t.new(TypeSynPath, span, PayloadID(payload))
}

func (t *Types) Path(id TypeID) (*TypePathData, bool) {
	typ := t.Get(id)
	if typ == nil || typ.Kind != TypeSynPath {
		return nil, false
	}
	return t.Paths.Get(uint32(typ.Payload)), true
}

func (t *Types) NewArray(span source.Span, elem TypeID, size int64) TypeID {
	payload := t.Arrays.Allocate(TypeArrayData{Elem: elem, Size: size})
	return t.new(TypeSynArray, span, PayloadID(payload))
}

func (t *Types) Array(id TypeID) (*TypeArrayData, bool) {
	typ := t.Get(id)
	if typ == nil || typ.Kind != TypeSynArray {
		return nil, false
	}
	return t.Arrays.Get(uint32(typ.Payload)), true
}

func (t *Types) NewRef(span source.Span, inner TypeID, mutable bool) TypeID {
	payload := t.Refs.Allocate(TypeRefData{Inner: inner, Mutable: mutable})
	return t.new(TypeSynRef, span, PayloadID(payload))
}

func (t *Types) Ref(id TypeID) (*TypeRefData, bool) {
	typ := t.Get(id)
	if typ == nil || typ.Kind != TypeSynRef {
		return nil, false
	}
	return t.Refs.Get(uint32(typ.Payload)), true
}

func (t *Types) NewUnit(span source.Span) TypeID {
	return t.new(TypeSynUnit, span, NoPayloadID)
}
