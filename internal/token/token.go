package token

import (
	"palladium/internal/source"
)

// Kind classifies a lexical token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF

	Ident
	IntLit
	StringLit

	// Keywords.
	KwFn
	KwLet
	KwMut
	KwPub
	KwStruct
	KwEnum
	KwIf
	KwElse
	KwWhile
	KwFor
	KwIn
	KwMatch
	KwReturn
	KwBreak
	KwContinue
	KwImport
	KwTrue
	KwFalse

	// Punctuation and operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Assign
	EqEq
	Bang
	BangEq
	Lt
	LtEq
	Gt
	GtEq
	AndAnd
	OrOr
	Amp
	Arrow
	FatArrow
	Colon
	ColonColon
	Semicolon
	Comma
	Dot
	DotDot
	Underscore
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
)

// Token is a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

func (t Token) IsKeyword() bool {
	return t.Kind >= KwFn && t.Kind <= KwFalse
}

var keywords = map[string]Kind{
	"fn":       KwFn,
	"let":      KwLet,
	"mut":      KwMut,
	"pub":      KwPub,
	"struct":   KwStruct,
	"enum":     KwEnum,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"in":       KwIn,
	"match":    KwMatch,
	"return":   KwReturn,
	"break":    KwBreak,
	"continue": KwContinue,
	"import":   KwImport,
	"true":     KwTrue,
	"false":    KwFalse,
}

// LookupKeyword maps an identifier spelling to its keyword kind, or
// Ident when it is a plain name.
func LookupKeyword(text string) Kind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return Ident
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "identifier"
	case IntLit:
		return "integer literal"
	case StringLit:
		return "string literal"
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case Slash:
		return "/"
	case Percent:
		return "%"
	case Assign:
		return "="
	case EqEq:
		return "=="
	case Bang:
		return "!"
	case BangEq:
		return "!="
	case Lt:
		return "<"
	case LtEq:
		return "<="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	case AndAnd:
		return "&&"
	case OrOr:
		return "||"
	case Amp:
		return "&"
	case Arrow:
		return "->"
	case FatArrow:
		return "=>"
	case Colon:
		return ":"
	case ColonColon:
		return "::"
	case Semicolon:
		return ";"
	case Comma:
		return ","
	case Dot:
		return "."
	case DotDot:
		return ".."
	case Underscore:
		return "_"
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	}
	for text, kind := range keywords {
		if kind == k {
			return text
		}
	}
	return "invalid"
}
