package diag

import (
	"fmt"

	"palladium/internal/source"
)

// Reporter is the minimal contract for phases to emit diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter stores everything into a Bag.
type BagReporter struct {
	Bag *Bag
}

func (r *BagReporter) Report(d Diagnostic) {
	r.Bag.Add(d)
}

// NopReporter discards all diagnostics. Useful for probing checks.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// Errorf builds an Error diagnostic with a formatted message.
func Errorf(code Code, primary source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Primary:  primary,
	}
}

// Warnf builds a Warning diagnostic with a formatted message.
func Warnf(code Code, primary source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SevWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Primary:  primary,
	}
}
