package symbols

// Builtin identifies a runtime-provided function. The type checker owns
// the signatures; the backend lowers each to a fixed C symbol.
type Builtin uint8

const (
	BuiltinNone Builtin = iota
	BuiltinPrint
	BuiltinPrintInt
	BuiltinStringLen
	BuiltinStringConcat
	BuiltinStringEq
	BuiltinStringCharAt
	BuiltinStringSubstring
	BuiltinStringFromChar
	BuiltinStringToInt
	BuiltinIntToString
	BuiltinCharIsDigit
	BuiltinCharIsAlpha
	BuiltinCharIsWhitespace
	BuiltinFileOpen
	BuiltinFileReadLine
	BuiltinFileReadAll
	BuiltinFileWrite
	BuiltinFileClose
	BuiltinPanic
)

func (b Builtin) String() string {
	if int(b) < len(builtinNames) {
		return builtinNames[b]
	}
	return "<unknown builtin>"
}

var builtinNames = [...]string{
	BuiltinNone:             "<none>",
	BuiltinPrint:            "print",
	BuiltinPrintInt:         "print_int",
	BuiltinStringLen:        "string_len",
	BuiltinStringConcat:     "string_concat",
	BuiltinStringEq:         "string_eq",
	BuiltinStringCharAt:     "string_char_at",
	BuiltinStringSubstring:  "string_substring",
	BuiltinStringFromChar:   "string_from_char",
	BuiltinStringToInt:      "string_to_int",
	BuiltinIntToString:      "int_to_string",
	BuiltinCharIsDigit:      "char_is_digit",
	BuiltinCharIsAlpha:      "char_is_alpha",
	BuiltinCharIsWhitespace: "char_is_whitespace",
	BuiltinFileOpen:         "file_open",
	BuiltinFileReadLine:     "file_read_line",
	BuiltinFileReadAll:      "file_read_all",
	BuiltinFileWrite:        "file_write",
	BuiltinFileClose:        "file_close",
	BuiltinPanic:            "panic",
}

// PreludeEntry describes a symbol injected before source traversal.
type PreludeEntry struct {
	Name    string
	Kind    SymbolKind
	Builtin Builtin
}

// BuiltinFunctions lists every runtime function visible without import.
func BuiltinFunctions() []Builtin {
	out := make([]Builtin, 0, int(BuiltinPanic))
	for b := BuiltinPrint; b <= BuiltinPanic; b++ {
		out = append(out, b)
	}
	return out
}

func preludeEntries() []PreludeEntry {
	entries := []PreludeEntry{
		{Name: "i32", Kind: SymbolBuiltinType},
		{Name: "i64", Kind: SymbolBuiltinType},
		{Name: "u32", Kind: SymbolBuiltinType},
		{Name: "u64", Kind: SymbolBuiltinType},
		{Name: "bool", Kind: SymbolBuiltinType},
		{Name: "String", Kind: SymbolBuiltinType},
	}
	for _, b := range BuiltinFunctions() {
		entries = append(entries, PreludeEntry{
			Name:    b.String(),
			Kind:    SymbolFunction,
			Builtin: b,
		})
	}
	return entries
}
