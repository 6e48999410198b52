// Package codegen renders a monomorphized program as one C translation
// unit. Failures here are internal errors returned as Go errors, never
// user diagnostics; the checked program is supposed to be emittable.
package codegen

import (
	"fmt"
	"strings"

	"palladium/internal/ast"
	"palladium/internal/mono"
	"palladium/internal/rtabi"
	"palladium/internal/sema"
	"palladium/internal/types"
)

// Emit renders the program. The byte output is deterministic for a
// given program: instances arrive sorted and every walk follows
// declaration order.
func Emit(astb *ast.Builder, res *sema.Result, prog *mono.Program) ([]byte, error) {
	e := &emitter{
		astb:      astb,
		res:       res,
		prog:      prog,
		in:        res.Types,
		typeNames: make(map[types.TypeID]string),
		arrays:    make(map[types.TypeID]*arrayDef),
		structs:   make(map[types.TypeID]*mono.StructInst),
		enums:     make(map[types.TypeID]*mono.EnumInst),
	}
	for _, st := range prog.Structs {
		e.typeNames[st.Type] = st.Name
		e.structs[st.Type] = st
	}
	for _, en := range prog.Enums {
		e.typeNames[en.Type] = en.Name
		e.enums[en.Type] = en
	}

	// Bodies render into their own buffers first so every array
	// wrapper they mention is registered before type definitions are
	// laid out.
	fns := make([]*fnEmitter, 0, len(prog.Fns))
	hasMain := false
	for _, inst := range prog.Fns {
		fe, err := e.prepareFn(inst)
		if err != nil {
			return nil, err
		}
		if err := fe.emitBody(); err != nil {
			return nil, err
		}
		if fe.name == "pd_main" {
			hasMain = true
		}
		fns = append(fns, fe)
	}

	e.line("#include <stdint.h>")
	e.line("#include <stddef.h>")
	e.line("")
	e.buf.WriteString(rtabi.Declarations())
	e.line("")

	if err := e.emitTypeDefs(); err != nil {
		return nil, err
	}
	if err := e.emitCtors(); err != nil {
		return nil, err
	}
	for _, fe := range fns {
		e.line("%s;", fe.signature)
	}
	e.line("")
	for _, fe := range fns {
		e.buf.WriteString(fe.body.String())
	}
	if hasMain {
		e.emitMainWrapper()
	}
	return []byte(e.buf.String()), nil
}

type emitter struct {
	astb *ast.Builder
	res  *sema.Result
	prog *mono.Program
	in   *types.Interner
	buf  strings.Builder

	typeNames map[types.TypeID]string
	arrays    map[types.TypeID]*arrayDef
	structs   map[types.TypeID]*mono.StructInst
	enums     map[types.TypeID]*mono.EnumInst
}

// arrayDef is a value wrapper for a fixed-size array, so arrays assign
// and return like any other value.
type arrayDef struct {
	name string
	elem types.TypeID
	size int64
}

func (e *emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

func (e *emitter) emitMainWrapper() {
	mainInfo := e.mainInstance()
	e.line("int main(void) {")
	if mainInfo != nil && e.in.Kind(mainInfo.Result) != types.KindUnit {
		e.line("    return (int)pd_main();")
	} else {
		e.line("    pd_main();")
		e.line("    return 0;")
	}
	e.line("}")
}

func (e *emitter) mainInstance() *mono.FnInst {
	for _, inst := range e.prog.Fns {
		if inst.Name == "main" {
			return inst
		}
	}
	return nil
}

// emitName is the symbol a function instance gets in C. The source
// entry point moves aside for the int main wrapper, and names that
// collide with C keywords get a prefix.
func emitName(name string) string {
	if name == "main" {
		return "pd_main"
	}
	if cReserved[name] {
		return "pd_" + name
	}
	return name
}
