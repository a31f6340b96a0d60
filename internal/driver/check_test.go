package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/viant/afs"

	"escheck/internal/cache"
	"escheck/internal/diag"
	"escheck/internal/diagfmt"
	"escheck/internal/ecma"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func resolve(t *testing.T, id string, module, hashbang bool) ecma.Profile {
	t.Helper()
	p, err := ecma.Resolve(id, module, hashbang)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return p
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) final() map[string]Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Event)
	for _, evt := range r.events {
		if evt.Status == StatusQueued || evt.Status == StatusWorking {
			continue
		}
		out[evt.File] = evt
	}
	return out
}

func TestRunKeepsInputOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "var a = 1;\n",
		"b.js": "var b = () => 2;\n",
		"d.js": "var d = `x`;\n",
	})
	files := []string{
		filepath.Join(dir, "a.js"),
		filepath.Join(dir, "b.js"),
		filepath.Join(dir, "c.js"), // отсутствует
		filepath.Join(dir, "d.js"),
	}
	rec := &recorder{}
	report, err := Run(context.Background(),
		Config{Profile: resolve(t, "es5", false, false), Files: files},
		Options{Jobs: 4, Sink: rec})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Passed {
		t.Fatalf("expected failures")
	}
	if report.FilesChecked != 4 {
		t.Fatalf("FilesChecked = %d, want 4", report.FilesChecked)
	}
	if len(report.Diagnostics) != 3 {
		t.Fatalf("got %d diagnostics, want 3", len(report.Diagnostics))
	}
	wantPaths := []string{files[1], files[2], files[3]}
	wantKinds := []diag.Kind{diag.KindSyntax, diag.KindIO, diag.KindSyntax}
	for i, d := range report.Diagnostics {
		if d.Path != wantPaths[i] {
			t.Errorf("diagnostic %d path = %s, want %s", i, d.Path, wantPaths[i])
		}
		if d.Kind() != wantKinds[i] {
			t.Errorf("diagnostic %d kind = %s, want %s", i, d.Kind(), wantKinds[i])
		}
	}
	arrow := report.Diagnostics[0]
	if arrow.Line != 1 || arrow.Column != 8 {
		t.Errorf("arrow position = %d:%d, want 1:8", arrow.Line, arrow.Column)
	}
	if !strings.HasSuffix(arrow.Message, "(1:8)") {
		t.Errorf("message %q lacks position suffix", arrow.Message)
	}
	if report.IOErrors() == nil {
		t.Errorf("expected folded IO error")
	}

	final := rec.final()
	if len(final) != 4 {
		t.Fatalf("expected a terminal event per file, got %d", len(final))
	}
	if final[files[0]].Status != StatusDone || final[files[1]].Status != StatusFault {
		t.Errorf("unexpected statuses: %+v", final)
	}
}

func TestRunPassing(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "let a = 1;\n",
		"b.js": "const b = async () => a ** 2;\n",
	})
	report, err := Run(context.Background(),
		Config{Profile: resolve(t, "es2017", false, false), Files: []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "b.js")}},
		Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Passed || len(report.Diagnostics) != 0 || report.FilesChecked != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRunNoFiles(t *testing.T) {
	p := resolve(t, "es5", false, false)
	if _, err := Run(context.Background(), Config{Profile: p}, Options{}); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
	cfg := Config{Profile: p, Files: []string{"node_modules/a.js"}, Skip: []string{"node_modules"}}
	if _, err := Run(context.Background(), cfg, Options{}); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles after skip, got %v", err)
	}
}

func TestRunRejectsEmptyPath(t *testing.T) {
	cfg := Config{Profile: resolve(t, "es5", false, false), Files: []string{"a.js", ""}}
	_, err := Run(context.Background(), cfg, Options{})
	if err == nil || errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected unexpected error, got %v", err)
	}
}

func TestRunRejectsUnresolvedProfile(t *testing.T) {
	if _, err := Run(context.Background(), Config{Files: []string{"a.js"}}, Options{}); err == nil {
		t.Fatalf("expected error for zero profile")
	}
}

func TestRunHashbang(t *testing.T) {
	dir := writeFiles(t, map[string]string{"cli.js": "#!/usr/bin/env node\nvar a = 1;\n"})
	files := []string{filepath.Join(dir, "cli.js")}

	report, err := Run(context.Background(), Config{Profile: resolve(t, "es5", false, false), Files: files}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Passed || report.Diagnostics[0].Code != diag.SynHashbang {
		t.Fatalf("expected hashbang fault, got %+v", report)
	}

	report, err = Run(context.Background(), Config{Profile: resolve(t, "es5", false, true), Files: files}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Passed {
		t.Fatalf("hashbang should be accepted: %+v", report.Diagnostics)
	}
}

func TestRunFailFast(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "let a = 1;\n",
		"b.js": "let b = 2;\n",
		"c.js": "var c = 3;\n",
	})
	files := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "b.js"), filepath.Join(dir, "c.js")}
	rec := &recorder{}
	report, err := Run(context.Background(),
		Config{Profile: resolve(t, "es5", false, false), Files: files},
		Options{Jobs: 1, FailFast: true, Sink: rec})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Diagnostics) != 1 || report.FilesChecked != 1 {
		t.Fatalf("fail-fast should stop after the first file: %+v", report)
	}
	final := rec.final()
	if final[files[1]].Status != StatusSkipped || final[files[2]].Status != StatusSkipped {
		t.Fatalf("remaining files should be skipped: %+v", final)
	}
}

func TestRunWithoutFailFastChecksEverything(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "let a = 1;\n",
		"b.js": "let b = 2;\n",
	})
	files := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "b.js")}
	report, err := Run(context.Background(), Config{Profile: resolve(t, "es5", false, false), Files: files}, Options{Jobs: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Diagnostics) != 2 {
		t.Fatalf("expected both files reported, got %d", len(report.Diagnostics))
	}
}

func TestRunCanceled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "var a;\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Config{Profile: resolve(t, "es5", false, false), Files: []string{filepath.Join(dir, "a.js")}}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunMemoryStorage(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	url := "mem://localhost/escheck/app.js"
	if err := fs.Upload(ctx, url, 0o644, strings.NewReader("var f = () => 1;\n")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	report, err := Run(ctx, Config{Profile: resolve(t, "es5", false, false), Files: []string{url}}, Options{FS: fs})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Diagnostics) != 1 || report.Diagnostics[0].Path != url {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRunUsesCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "var a = 1;\n",
		"b.js": "var b = 2 ** 3;\n",
	})
	files := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "b.js")}
	store, err := cache.OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	cfg := Config{Profile: resolve(t, "es2015", false, false), Files: files}

	first, err := Run(context.Background(), cfg, Options{Cache: store})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	rec := &recorder{}
	second, err := Run(context.Background(), cfg, Options{Cache: store, Sink: rec})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for path, evt := range rec.final() {
		if !evt.Cached {
			t.Errorf("%s was evaluated again", path)
		}
	}
	if len(first.Diagnostics) != 1 || len(second.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic per run: %+v / %+v", first, second)
	}
	if first.Diagnostics[0] != second.Diagnostics[0] {
		t.Fatalf("cached verdict differs:\n%+v\n%+v", first.Diagnostics[0], second.Diagnostics[0])
	}

	cfg.Profile = resolve(t, "es2016", false, false)
	third, err := Run(context.Background(), cfg, Options{Cache: store})
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if !third.Passed {
		t.Fatalf("a different profile must not reuse the verdict")
	}
}

func TestRunTimeoutIsPerFileDiagnostic(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "var a = 1;\n",
		"b.js": "var b = 2;\n",
	})
	files := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "b.js")}
	rec := &recorder{}
	report, err := Run(context.Background(),
		Config{Profile: resolve(t, "es5", false, false), Files: files},
		Options{Jobs: 2, Timeout: time.Nanosecond, Sink: rec})
	if err != nil {
		t.Fatalf("a per-file timeout must not abort the run: %v", err)
	}
	if report.FilesChecked != 2 || len(report.Diagnostics) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for i, d := range report.Diagnostics {
		if d.Path != files[i] {
			t.Errorf("diagnostic %d path = %s, want %s", i, d.Path, files[i])
		}
		if d.Kind() != diag.KindTimeout || d.Code != diag.IOEvalTimeout {
			t.Errorf("diagnostic %d kind = %s code = %s, want timeout", i, d.Kind(), d.Code.ID())
		}
	}
	if report.Count(diag.KindTimeout) != 2 {
		t.Errorf("Count(KindTimeout) = %d, want 2", report.Count(diag.KindTimeout))
	}
	if report.IOErrors() == nil {
		t.Errorf("timeouts should fold into the IO error")
	}
	for path, evt := range rec.final() {
		if evt.Status != StatusFault {
			t.Errorf("%s: status %s, want fault", path, evt.Status)
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "var a = 1;\n",
		"b.js": "var b = () => 2;\n",
		"c.js": "let c; let c;\n",
		"d.js": "var d = `x`;\n",
		"e.js": "var = ;\n",
	})
	files := []string{
		filepath.Join(dir, "a.js"),
		filepath.Join(dir, "b.js"),
		filepath.Join(dir, "c.js"),
		filepath.Join(dir, "missing.js"),
		filepath.Join(dir, "d.js"),
		filepath.Join(dir, "e.js"),
	}
	cfg := Config{Profile: resolve(t, "es5", false, false), Files: files}
	render := func() []byte {
		t.Helper()
		report, err := Run(context.Background(), cfg, Options{Jobs: 4})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		var buf bytes.Buffer
		res := diagfmt.BuildResult(report, diagfmt.PathModeAsGiven, "")
		if err := diagfmt.JSON(&buf, res, diagfmt.JSONOpts{}); err != nil {
			t.Fatalf("JSON: %v", err)
		}
		return buf.Bytes()
	}
	first := render()
	for i := 0; i < 3; i++ {
		if again := render(); !bytes.Equal(first, again) {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i+2, first, again)
		}
	}
}
