package diagfmt

import (
	"fmt"

	"escheck/internal/diag"
)

// Values of Result.ErrNo.
const (
	ErrNoOK         = 0 // every file evaluated; Data lists the failures, if any
	ErrNoNoFiles    = 1
	ErrNoUnexpected = 2
)

const (
	successMessage = "ES-Check: there were no ES version matching errors!  🎉"
	failureMessage = "ES-Check: there were %d ES version matching errors."
)

// Location is the position of a fault: line 1-based, column 0-based UTF-16 units.
type Location struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Entry is one failing file in the result contract.
type Entry struct {
	ErrorFile  string   `json:"errorFile" yaml:"errorFile"`
	SourceFile string   `json:"sourceFile" yaml:"sourceFile"`
	Location   Location `json:"location" yaml:"location"`
	Code       string   `json:"code" yaml:"code"`
	Stack      string   `json:"stack" yaml:"stack"`
	Kind       string   `json:"kind" yaml:"kind"`
}

// Result is the stable machine-readable outcome of a check.
type Result struct {
	ErrNo  int     `json:"errNo" yaml:"errNo"`
	ErrMsg string  `json:"errMsg" yaml:"errMsg"`
	Data   []Entry `json:"data" yaml:"data"`
}

// BuildResult converts a report into the result contract.
func BuildResult(report diag.Report, mode PathMode, base string) Result {
	res := Result{ErrNo: ErrNoOK, Data: make([]Entry, 0, len(report.Diagnostics))}
	for i := range report.Diagnostics {
		d := &report.Diagnostics[i]
		res.Data = append(res.Data, Entry{
			ErrorFile:  formatPath(d.Path, mode, base),
			SourceFile: formatPath(d.SourcePath, mode, base),
			Location:   Location{Line: d.Line, Column: d.Column},
			Code:       d.Excerpt,
			Stack:      d.Message,
			Kind:       d.Kind().String(),
		})
	}
	if len(res.Data) == 0 {
		res.ErrMsg = successMessage
	} else {
		res.ErrMsg = fmt.Sprintf(failureMessage, len(res.Data))
	}
	return res
}

// ErrorResult builds the result of a run that could not produce a report.
func ErrorResult(errNo int, err error) Result {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Result{ErrNo: errNo, ErrMsg: msg, Data: []Entry{}}
}

// ExitCode maps the result onto the process exit status.
func (r Result) ExitCode() int {
	switch {
	case r.ErrNo == ErrNoUnexpected:
		return 2
	case r.ErrNo == ErrNoNoFiles:
		return 1
	case len(r.Data) > 0:
		return 1
	}
	return 0
}
