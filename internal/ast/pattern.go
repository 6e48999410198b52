package ast

import (
	"palladium/internal/source"
)

type PatKind uint8

const (
	PatInvalid PatKind = iota
	// PatWildcard matches anything and binds nothing.
	PatWildcard
	// PatBinding matches anything and binds it to a fresh name.
	PatBinding
	// PatEnum matches one constructor of an enum.
	PatEnum
)

type Pat struct {
	Kind    PatKind
	Span    source.Span
	Payload PayloadID
}

type PatBindingData struct {
	Name source.StringID
}

// PatField is one `name: pattern` entry of a struct-form constructor
// pattern.
type PatField struct {
	Name source.StringID
	Span source.Span
	Pat  PatID
}

type PatEnumData struct {
	EnumName source.StringID
	Variant  source.StringID
	Form     CtorForm
	Sub      []PatID
	Fields   []PatField
}

// Pats manages allocation of patterns.
type Pats struct {
	Arena    *Arena[Pat]
	Bindings *Arena[PatBindingData]
	Enums    *Arena[PatEnumData]
}

func NewPats(capHint uint) *Pats {
	if capHint == 0 {
		capHint = 1 << 5
	}
	return &Pats{
		Arena:    NewArena[Pat](capHint),
		Bindings: NewArena[PatBindingData](capHint),
		Enums:    NewArena[PatEnumData](capHint),
	}
}

func (p *Pats) new(kind PatKind, span source.Span, payload PayloadID) PatID {
	return PatID(p.Arena.Allocate(Pat{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (p *Pats) Get(id PatID) *Pat {
	return p.Arena.Get(uint32(id))
}

func (p *Pats) NewWildcard(span source.Span) PatID {
	return p.new(PatWildcard, span, NoPayloadID)
}

func (p *Pats) NewBinding(span source.Span, name source.StringID) PatID {
	payload := p.Bindings.Allocate(PatBindingData{Name: name})
	return p.new(PatBinding, span, PayloadID(payload))
}

func (p *Pats) Binding(id PatID) (*PatBindingData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatBinding {
		return nil, false
	}
	return p.Bindings.Get(uint32(pat.Payload)), true
}

func (p *Pats) NewEnum(span source.Span, data PatEnumData) PatID {
	payload := p.Enums.Allocate(data)
	return p.new(PatEnum, span, PayloadID(payload))
}

func (p *Pats) Enum(id PatID) (*PatEnumData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatEnum {
		return nil, false
	}
	return p.Enums.Get(uint32(pat.Payload)), true
}

// IsCatchAll reports whether the pattern matches every value of any type.
func (p *Pats) IsCatchAll(id PatID) bool {
	pat := p.Get(id)
	if pat == nil {
		return false
	}
	return pat.Kind == PatWildcard || pat.Kind == PatBinding
}
