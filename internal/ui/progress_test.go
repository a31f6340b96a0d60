package ui

import (
	"fmt"
	"strings"
	"testing"

	"escheck/internal/driver"
)

func TestProgressModelTracksEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("es5", []string{"a.js", "b.js", "c.js"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "a.js", Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.js", Status: driver.StatusFault})
	m.applyEvent(driver.Event{File: "c.js", Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "unknown.js", Status: driver.StatusDone})

	finished, faults := m.counts()
	if finished != 2 || faults != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", finished, faults)
	}
	view := m.View()
	for _, want := range []string{"es5 [2/3] 1 failing", "a.js", "b.js", "fault", "working"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestProgressModelQuitsWhenEventsClose(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("es5", []string{"a.js"}, events).(*progressModel)
	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("expected doneMsg, got %T", msg)
	}
	m.Update(msg)
	if !m.done || !strings.HasPrefix(stripANSI(m.View()), "done: ") {
		t.Fatalf("model should be done:\n%s", m.View())
	}
}

func TestVisibleRowsPreferFaults(t *testing.T) {
	files := make([]string, 40)
	for i := range files {
		files[i] = fmt.Sprintf("f%02d.js", i)
	}
	m := NewProgressModel("es5", files, make(chan driver.Event)).(*progressModel)
	m.applyEvent(driver.Event{File: "f39.js", Status: driver.StatusFault})
	m.applyEvent(driver.Event{File: "f01.js", Status: driver.StatusWorking})
	rows := m.visible()
	if len(rows) != 2 || rows[0].path != "f39.js" || rows[1].path != "f01.js" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	skip := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			skip = true
		case skip && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			skip = false
		case !skip:
			b.WriteRune(r)
		}
	}
	return b.String()
}
