package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning is for problems that do not fail a check.
	SevWarning Severity = iota + 1
	// SevError fails the check.
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

// Label is the lower-case form used in human-readable output.
func (s Severity) Label() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}
