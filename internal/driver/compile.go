package driver

import (
	"fmt"
	"path/filepath"

	"palladium/internal/codegen"
	"palladium/internal/diag"
	"palladium/internal/mono"
	"palladium/internal/rtabi"
	"palladium/internal/sema"
	"palladium/internal/symbols"
)

// Options configures one Compile or Check run.
type Options struct {
	// MaxDiagnostics caps the bag; 0 applies the default of 100.
	MaxDiagnostics int
	// MonoDepth overrides the instantiation depth guard; 0 keeps the
	// default.
	MonoDepth int
	// EmitMeta additionally builds the msgpack metadata artifact.
	EmitMeta bool
}

// Result is what a pipeline run produced. CSource and Runtime are nil
// when diagnostics stopped the run before code generation.
type Result struct {
	Session *Session
	Bag     *diag.Bag
	Program *mono.Program
	CSource []byte
	Runtime []byte
	Meta    []byte
}

// HasErrors reports whether the run produced error diagnostics.
func (r *Result) HasErrors() bool {
	return r.Bag.HasErrors()
}

// Check runs the pipeline through exhaustiveness checking and stops.
// Parse and resolution errors halt early; type, ownership and match
// problems are batched so one run reports them all.
func Check(path string, opts Options) (*Result, error) {
	res, _, err := analyze(path, opts)
	return res, err
}

// Compile runs the full pipeline. Monomorphization and code generation
// only run on a clean bag; their own failures are internal errors, not
// diagnostics.
func Compile(path string, opts Options) (*Result, error) {
	res, checked, err := analyze(path, opts)
	if err != nil || res.HasErrors() {
		return res, err
	}

	prog, err := mono.Monomorphize(res.Session.Builder, checked, mono.Options{
		MaxDepth: opts.MonoDepth,
	})
	if err != nil {
		return res, fmt.Errorf("internal: %w", err)
	}
	res.Program = prog

	out, err := codegen.Emit(res.Session.Builder, checked, prog)
	if err != nil {
		return res, fmt.Errorf("internal: %w", err)
	}
	res.CSource = out
	res.Runtime = rtabi.RuntimeSource()

	if opts.EmitMeta {
		meta, err := buildMeta(res.Session, checked, prog)
		if err != nil {
			return res, fmt.Errorf("internal: %w", err)
		}
		res.Meta = meta
	}
	return res, nil
}

func analyze(path string, opts Options) (*Result, *sema.Result, error) {
	s := NewSession(opts.MaxDiagnostics)
	res := &Result{Session: s, Bag: s.Bag}

	if err := s.loadFile(path, filepath.Dir(path)); err != nil {
		return res, nil, err
	}
	if s.Bag.HasErrors() {
		return res, nil, nil
	}

	syms := symbols.Resolve(s.Builder, s.Files, symbols.Options{Reporter: s.Reporter})
	if s.Bag.HasErrors() {
		return res, nil, nil
	}

	checked := sema.Check(s.Builder, s.Files, sema.Options{
		Reporter: s.Reporter,
		Symbols:  syms,
		Types:    s.Types,
	})
	return res, checked, nil
}
