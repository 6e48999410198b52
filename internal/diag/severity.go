package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning never blocks compilation.
	SevWarning Severity = iota
	// SevError blocks code generation once present.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
