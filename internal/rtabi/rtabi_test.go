package rtabi_test

import (
	"strings"
	"testing"

	"palladium/internal/rtabi"
	"palladium/internal/symbols"
)

func TestEveryBuiltinHasSymbol(t *testing.T) {
	for _, b := range symbols.BuiltinFunctions() {
		sym := rtabi.Symbol(b)
		if sym == "" {
			t.Fatalf("builtin %s has no runtime symbol", b)
		}
		if !strings.HasPrefix(sym, "__pd_") {
			t.Fatalf("symbol %s lacks the __pd_ prefix", sym)
		}
	}
}

func TestDeclarationsCoverRuntime(t *testing.T) {
	decls := rtabi.Declarations()
	src := string(rtabi.RuntimeSource())
	for _, b := range symbols.BuiltinFunctions() {
		sym := rtabi.Symbol(b)
		if !strings.Contains(decls, sym+"(") {
			t.Fatalf("declaration for %s missing", sym)
		}
		if !strings.Contains(src, sym+"(") {
			t.Fatalf("runtime definition for %s missing", sym)
		}
	}
}
