package diagfmt

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"escheck/internal/diag"
	"escheck/internal/source"
)

// LineSource returns the text of a 1-based line of a file.
type LineSource func(path string, line int) (string, bool)

// DiskLines reads files from disk on first use and keeps them for later lookups.
func DiskLines() LineSource {
	var mu sync.Mutex
	files := make(map[string]*source.File)
	return func(path string, line int) (string, bool) {
		if line <= 0 || strings.Contains(path, "://") {
			return "", false
		}
		mu.Lock()
		defer mu.Unlock()
		f, ok := files[path]
		if !ok {
			content, err := os.ReadFile(path)
			if err != nil {
				files[path] = nil
				return "", false
			}
			f = source.NewFile(path, content, 0)
			files[path] = f
		}
		if f == nil || line > f.LineCount() {
			return "", false
		}
		return f.GetLine(uint32(line)), true
	}
}

type palette struct {
	path, code, msg, gutter, caret, ok, fail *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:   color.New(color.Bold),
		code:   color.New(color.FgRed, color.Bold),
		msg:    color.New(color.Reset),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		ok:     color.New(color.FgGreen, color.Bold),
		fail:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.path, p.code, p.msg, p.gutter, p.caret, p.ok, p.fail} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует отчёт в человекочитаемый вид.
// Для каждой диагностики печатает
// <path>:<line>:<col>: <severity> <CODE> <message>
// затем строку исходника и каретку под колонкой, в конце итоговую строку.
func Pretty(w io.Writer, report diag.Report, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	var b strings.Builder
	for i := range report.Diagnostics {
		d := &report.Diagnostics[i]
		path := formatPath(d.Path, opts.PathMode, opts.BaseDir)
		if d.Line > 0 {
			b.WriteString(pal.path.Sprintf("%s:%d:%d:", path, d.Line, d.Column))
		} else {
			b.WriteString(pal.path.Sprintf("%s:", path))
		}
		b.WriteString(" ")
		b.WriteString(pal.code.Sprintf("%s %s", d.Severity.Label(), d.Code.ID()))
		b.WriteString(" ")
		b.WriteString(pal.msg.Sprint(d.Message))
		b.WriteString("\n")
		writeContext(&b, pal, d, opts.Lines)
	}
	if len(report.Diagnostics) == 0 {
		b.WriteString(pal.ok.Sprint(successMessage))
	} else {
		b.WriteString(pal.fail.Sprintf(failureMessage, len(report.Diagnostics)))
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeContext(b *strings.Builder, pal palette, d *diag.Diagnostic, lines LineSource) {
	if d.Line <= 0 {
		return
	}
	text, ok := "", false
	if lines != nil {
		text, ok = lines(d.Path, d.Line)
	}
	if !ok {
		if d.Excerpt == "" {
			return
		}
		// без исходника показываем хотя бы фрагмент
		fmt.Fprintf(b, "  %s %s\n", pal.gutter.Sprint("|"), d.Excerpt)
		return
	}
	text = strings.ReplaceAll(text, "\t", " ")
	num := fmt.Sprintf("%d", d.Line)
	pad := strings.Repeat(" ", len(num))
	fmt.Fprintf(b, " %s %s %s\n", pal.gutter.Sprint(num), pal.gutter.Sprint("|"), text)

	width := runewidth.StringWidth(prefixUTF16(text, d.Column))
	mark := "^"
	if n := runewidth.StringWidth(d.Excerpt); n > 1 {
		mark += strings.Repeat("~", n-1)
	}
	fmt.Fprintf(b, " %s %s %s%s\n", pad, pal.gutter.Sprint("|"), strings.Repeat(" ", width), pal.caret.Sprint(mark))
}

// prefixUTF16 returns the part of line that precedes the given UTF-16 column.
func prefixUTF16(line string, col int) string {
	units := 0
	for i, r := range line {
		if units >= col {
			return line[:i]
		}
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
	}
	return line
}
