package diagfmt

import (
	"fmt"
	"io"

	"escheck/internal/diag"
)

// Short prints one line per diagnostic:
// <path>:<line>:<col>: <CODE> <message>
// Files that were never evaluated have no position and print as <path>: <CODE> <message>.
func Short(w io.Writer, report diag.Report, mode PathMode, base string) error {
	for i := range report.Diagnostics {
		d := &report.Diagnostics[i]
		path := formatPath(d.Path, mode, base)
		var err error
		if d.Line > 0 {
			_, err = fmt.Fprintf(w, "%s:%d:%d: %s %s\n", path, d.Line, d.Column, d.Code.ID(), d.Message)
		} else {
			_, err = fmt.Fprintf(w, "%s: %s %s\n", path, d.Code.ID(), d.Message)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
