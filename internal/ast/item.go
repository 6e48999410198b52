package ast

import (
	"palladium/internal/source"
)

type ItemKind uint8

const (
	ItemInvalid ItemKind = iota
	ItemFn
	ItemStruct
	ItemEnum
	ItemImport
)

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// TypeParam is one declared generic parameter, e.g. the T of fn id<T>.
type TypeParam struct {
	Name source.StringID
	Span source.Span
}

type FnParam struct {
	Name    source.StringID
	Span    source.Span
	Type    TypeID
	Mutable bool
}

type ItemFnData struct {
	Name       source.StringID
	NameSpan   source.Span
	Public     bool
	TypeParams []TypeParam
	Params     []FnParam
	Result     TypeID // NoTypeID means unit
	Body       []StmtID
}

type StructField struct {
	Name source.StringID
	Span source.Span
	Type TypeID
}

type ItemStructData struct {
	Name       source.StringID
	NameSpan   source.Span
	Public     bool
	TypeParams []TypeParam
	Fields     []StructField
}

type EnumVariant struct {
	Name source.StringID
	Span source.Span
	Form CtorForm
	// Elems holds tuple-form payload types, Fields struct-form ones.
	Elems  []TypeID
	Fields []StructField
}

type ItemEnumData struct {
	Name       source.StringID
	NameSpan   source.Span
	Public     bool
	TypeParams []TypeParam
	Variants   []EnumVariant
}

type ItemImportData struct {
	Path []source.StringID
}

// Items manages allocation of top-level items.
type Items struct {
	Arena   *Arena[Item]
	Fns     *Arena[ItemFnData]
	Structs *Arena[ItemStructData]
	Enums   *Arena[ItemEnumData]
	Imports *Arena[ItemImportData]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 5
	}
	return &Items{
		Arena:   NewArena[Item](capHint),
		Fns:     NewArena[ItemFnData](capHint),
		Structs: NewArena[ItemStructData](capHint),
		Enums:   NewArena[ItemEnumData](capHint),
		Imports: NewArena[ItemImportData](capHint),
	}
}

func (it *Items) new(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(it.Arena.Allocate(Item{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (it *Items) Get(id ItemID) *Item {
	return it.Arena.Get(uint32(id))
}

func (it *Items) NewFn(span source.Span, data ItemFnData) ItemID {
	payload := it.Fns.Allocate(data)
	return it.new(ItemFn, span, PayloadID(payload))
}

func (it *Items) Fn(id ItemID) (*ItemFnData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return it.Fns.Get(uint32(item.Payload)), true
}

func (it *Items) NewStruct(span source.Span, data ItemStructData) ItemID {
	payload := it.Structs.Allocate(data)
	return it.new(ItemStruct, span, PayloadID(payload))
}

func (it *Items) Struct(id ItemID) (*ItemStructData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemStruct {
		return nil, false
	}
	return it.Structs.Get(uint32(item.Payload)), true
}

func (it *Items) NewEnum(span source.Span, data ItemEnumData) ItemID {
	payload := it.Enums.Allocate(data)
	return it.new(ItemEnum, span, PayloadID(payload))
}

func (it *Items) Enum(id ItemID) (*ItemEnumData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemEnum {
		return nil, false
	}
	return it.Enums.Get(uint32(item.Payload)), true
}

func (it *Items) NewImport(span source.Span, path []source.StringID) ItemID {
	payload := it.Imports.Allocate(ItemImportData{Path: path})
	return it.new(ItemImport, span, PayloadID(payload))
}

func (it *Items) Import(id ItemID) (*ItemImportData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemImport {
		return nil, false
	}
	return it.Imports.Get(uint32(item.Payload)), true
}
