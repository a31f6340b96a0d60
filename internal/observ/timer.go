package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Step is one timed stage of a check run: resolving configuration,
// expanding globs or evaluating files.
type Step struct {
	Name  string
	Took  time.Duration
	Files int    // files the stage produced or handled
	Note  string // free-form detail, e.g. config sources
}

// Rate returns files per second, 0 when the stage handled no files.
func (s Step) Rate() float64 {
	if s.Files == 0 || s.Took <= 0 {
		return 0
	}
	return float64(s.Files) / s.Took.Seconds()
}

// Timer collects the steps of one run for --timings.
// A nil *Timer runs the stages untimed.
type Timer struct {
	mu    sync.Mutex
	now   func() time.Time
	steps []Step
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer { return &Timer{now: time.Now} }

// Track runs fn as the stage name. fn reports how many files the stage
// handled and an optional note.
func (t *Timer) Track(name string, fn func() (files int, note string)) {
	if t == nil {
		fn()
		return
	}
	start := t.now()
	files, note := fn()
	took := t.now().Sub(start)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, Step{Name: name, Took: took, Files: files, Note: note})
}

// Steps returns a copy of the recorded stages in the order they ran.
func (t *Timer) Steps() []Step {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Step(nil), t.steps...)
}

// Total is the sum of all stage durations.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, s := range t.Steps() {
		total += s.Took
	}
	return total
}

// Summary renders the stages as an aligned table for stderr.
func (t *Timer) Summary() string {
	steps := t.Steps()
	if len(steps) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, s := range steps {
		fmt.Fprintf(&b, "  %-8s %9.2f ms", s.Name, millis(s.Took))
		if s.Files > 0 {
			fmt.Fprintf(&b, "  %5d files", s.Files)
			if r := s.Rate(); r > 0 {
				fmt.Fprintf(&b, "  %8.0f files/s", r)
			}
		}
		if s.Note != "" {
			b.WriteString("  (" + s.Note + ")")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-8s %9.2f ms\n", "total", millis(t.Total()))
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
