package diag

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Report is the outcome of one check run. It is built once by Aggregate and
// owned by the caller afterwards.
type Report struct {
	Diagnostics  []Diagnostic
	FilesChecked int
	Passed       bool
}

// Aggregate folds per-file results into a Report. perFile is indexed by input
// position; nil entries are conformant files. Order is kept and nothing is
// deduplicated: two files with the same fault are two diagnostics.
func Aggregate(filesChecked int, perFile []*Diagnostic) Report {
	items := make([]Diagnostic, 0, len(perFile))
	for _, d := range perFile {
		if d == nil {
			continue
		}
		items = append(items, *d)
	}
	return Report{
		Diagnostics:  items,
		FilesChecked: filesChecked,
		Passed:       len(items) == 0,
	}
}

// Count returns how many diagnostics have the given kind.
func (r Report) Count(kind Kind) int {
	n := 0
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Kind() == kind {
			n++
		}
	}
	return n
}

// IOErrors joins the messages of files that could not be read or timed out.
// It returns nil when every file was evaluated.
func (r Report) IOErrors() error {
	var result *multierror.Error
	for i := range r.Diagnostics {
		d := &r.Diagnostics[i]
		if d.Kind() == KindSyntax {
			continue
		}
		result = multierror.Append(result, fmt.Errorf("%s: %s", d.Path, d.Message))
	}
	return result.ErrorOrNil()
}
