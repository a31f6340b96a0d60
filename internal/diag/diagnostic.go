package diag

// Kind tags a per-file failure.
type Kind uint8

const (
	// KindSyntax is a grammar conformance fault, the main product of a check.
	KindSyntax Kind = iota
	// KindIO means the file could not be read.
	KindIO
	// KindTimeout means evaluation exceeded the per-file budget.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindIO:
		return "io"
	case KindTimeout:
		return "timeout"
	}
	return "unknown"
}

// Diagnostic describes the first failure found in one file.
type Diagnostic struct {
	Severity Severity
	Code     Code
	// Path is the file as given to the check; SourcePath is the same file and is
	// kept separate for outputs that trace generated code back to its origin.
	Path       string
	SourcePath string
	Line       int // 1-based, 0 when unknown
	Column     int // 0-based UTF-16 units
	Excerpt    string
	Message    string
}

// Kind derives the failure kind from the code.
func (d *Diagnostic) Kind() Kind {
	return d.Code.Kind()
}

// NewSyntax builds the diagnostic for a non-conformant file.
func NewSyntax(path string, code Code, line, column int, excerpt, msg string) *Diagnostic {
	return &Diagnostic{
		Severity:   SevError,
		Code:       code,
		Path:       path,
		SourcePath: path,
		Line:       line,
		Column:     column,
		Excerpt:    excerpt,
		Message:    msg,
	}
}

// NewIO builds the diagnostic for a file that could not be loaded.
func NewIO(path string, err error) *Diagnostic {
	return &Diagnostic{
		Severity:   SevError,
		Code:       IOLoadFileError,
		Path:       path,
		SourcePath: path,
		Message:    "failed to load file: " + err.Error(),
	}
}

// NewTimeout builds the diagnostic for a file whose evaluation ran out of time.
func NewTimeout(path string, err error) *Diagnostic {
	return &Diagnostic{
		Severity:   SevError,
		Code:       IOEvalTimeout,
		Path:       path,
		SourcePath: path,
		Message:    "evaluation timed out: " + err.Error(),
	}
}
