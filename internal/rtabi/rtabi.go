// Package rtabi pins the ABI between generated C and the native
// runtime: the __pd_* symbol per builtin, the matching C declarations,
// and the runtime source itself.
package rtabi

import (
	_ "embed"

	"palladium/internal/symbols"
)

//go:embed native/runtime.c
var runtimeSource []byte

// RuntimeSource returns the C source of the native runtime, emitted
// next to (or prepended to) the generated program.
func RuntimeSource() []byte {
	return runtimeSource
}

var builtinSymbols = [...]string{
	symbols.BuiltinNone:             "",
	symbols.BuiltinPrint:            "__pd_print",
	symbols.BuiltinPrintInt:         "__pd_print_int",
	symbols.BuiltinStringLen:        "__pd_string_len",
	symbols.BuiltinStringConcat:     "__pd_string_concat",
	symbols.BuiltinStringEq:         "__pd_string_eq",
	symbols.BuiltinStringCharAt:     "__pd_string_char_at",
	symbols.BuiltinStringSubstring:  "__pd_string_substring",
	symbols.BuiltinStringFromChar:   "__pd_string_from_char",
	symbols.BuiltinStringToInt:      "__pd_string_to_int",
	symbols.BuiltinIntToString:      "__pd_int_to_string",
	symbols.BuiltinCharIsDigit:      "__pd_char_is_digit",
	symbols.BuiltinCharIsAlpha:      "__pd_char_is_alpha",
	symbols.BuiltinCharIsWhitespace: "__pd_char_is_whitespace",
	symbols.BuiltinFileOpen:         "__pd_file_open",
	symbols.BuiltinFileReadLine:     "__pd_file_read_line",
	symbols.BuiltinFileReadAll:      "__pd_file_read_all",
	symbols.BuiltinFileWrite:        "__pd_file_write",
	symbols.BuiltinFileClose:        "__pd_file_close",
	symbols.BuiltinPanic:            "__pd_panic",
}

// Symbol returns the linker name of a builtin, empty for BuiltinNone.
func Symbol(b symbols.Builtin) string {
	if int(b) < len(builtinSymbols) {
		return builtinSymbols[b]
	}
	return ""
}

// Declarations returns the extern prototypes the generated program
// includes before its own definitions. Must stay in sync with
// native/runtime.c.
func Declarations() string {
	return `void __pd_print(const char* str);
void __pd_print_int(long long value);
void __pd_panic(const char* msg);
long long __pd_string_len(const char* str);
const char* __pd_string_concat(const char* s1, const char* s2);
int __pd_string_eq(const char* s1, const char* s2);
long long __pd_string_char_at(const char* str, long long index);
const char* __pd_string_substring(const char* str, long long start, long long end);
const char* __pd_string_from_char(long long c);
int __pd_char_is_digit(long long c);
int __pd_char_is_alpha(long long c);
int __pd_char_is_whitespace(long long c);
long long __pd_string_to_int(const char* str);
const char* __pd_int_to_string(long long n);
long long __pd_file_open(const char* path);
const char* __pd_file_read_all(long long handle);
const char* __pd_file_read_line(long long handle);
int __pd_file_write(long long handle, const char* content);
int __pd_file_close(long long handle);
`
}
