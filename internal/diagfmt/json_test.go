package diagfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"escheck/internal/diag"
)

func sampleReport() diag.Report {
	return diag.Aggregate(3, []*diag.Diagnostic{
		nil,
		diag.NewSyntax("dist/b.js", diag.SynFeatureLevel, 1, 8, "() => 2", "arrow function requires es2015 or later (1:8)"),
		diag.NewIO("dist/c.js", errors.New("open dist/c.js: no such file or directory")),
	})
}

// TestJSONContract проверяет имена и порядок полей результата
func TestJSONContract(t *testing.T) {
	var buf bytes.Buffer
	res := BuildResult(sampleReport(), PathModeAsGiven, "")
	if err := JSON(&buf, res, JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	out := buf.String()

	wantOrder := []string{`"errNo"`, `"errMsg"`, `"data"`, `"errorFile"`, `"sourceFile"`, `"location"`, `"line"`, `"column"`, `"code"`, `"stack"`, `"kind"`}
	last := -1
	for _, key := range wantOrder {
		idx := strings.Index(out, key)
		if idx < 0 {
			t.Fatalf("missing key %s in:\n%s", key, out)
		}
		if idx < last {
			t.Fatalf("key %s out of order in:\n%s", key, out)
		}
		last = idx
	}
	if !strings.Contains(out, "\n  \"errMsg\"") {
		t.Fatalf("expected two-space indentation:\n%s", out)
	}

	var decoded struct {
		ErrNo  int    `json:"errNo"`
		ErrMsg string `json:"errMsg"`
		Data   []struct {
			ErrorFile string `json:"errorFile"`
			Location  struct {
				Line   int `json:"line"`
				Column int `json:"column"`
			} `json:"location"`
			Code  string `json:"code"`
			Stack string `json:"stack"`
			Kind  string `json:"kind"`
		} `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ErrNo != 0 || decoded.ErrMsg != "ES-Check: there were 2 ES version matching errors." {
		t.Fatalf("unexpected header: %d %q", decoded.ErrNo, decoded.ErrMsg)
	}
	if len(decoded.Data) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(decoded.Data))
	}
	first := decoded.Data[0]
	if first.ErrorFile != "dist/b.js" || first.Location.Line != 1 || first.Location.Column != 8 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if first.Code != "() => 2" || first.Kind != "syntax" {
		t.Fatalf("code must be the literal excerpt: %+v", first)
	}
	if decoded.Data[1].Kind != "io" || decoded.Data[1].Location.Line != 0 {
		t.Fatalf("unexpected io entry: %+v", decoded.Data[1])
	}
}

func TestJSONSuccessHasEmptyData(t *testing.T) {
	var buf bytes.Buffer
	res := BuildResult(diag.Aggregate(2, []*diag.Diagnostic{nil, nil}), PathModeAsGiven, "")
	if err := JSON(&buf, res, JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"data": []`) {
		t.Fatalf("data must be an empty array:\n%s", buf.String())
	}
	if res.ErrMsg != successMessage || res.ExitCode() != 0 {
		t.Fatalf("unexpected success result: %+v", res)
	}
}

func TestJSONColor(t *testing.T) {
	var buf bytes.Buffer
	res := BuildResult(sampleReport(), PathModeAsGiven, "")
	if err := JSON(&buf, res, JSONOpts{Color: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(buf.String(), "errorFile") {
		t.Fatalf("colored output lost keys:\n%s", buf.String())
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want int
	}{
		{"pass", BuildResult(diag.Report{Passed: true}, PathModeAsGiven, ""), 0},
		{"diagnostics", BuildResult(sampleReport(), PathModeAsGiven, ""), 1},
		{"no files", ErrorResult(ErrNoNoFiles, errors.New("no files")), 1},
		{"unexpected", ErrorResult(ErrNoUnexpected, errors.New("boom")), 2},
	}
	for _, tt := range tests {
		if got := tt.res.ExitCode(); got != tt.want {
			t.Errorf("%s: exit code %d, want %d", tt.name, got, tt.want)
		}
	}
	res := ErrorResult(ErrNoNoFiles, errors.New("no files"))
	if res.Data == nil || len(res.Data) != 0 || res.ErrMsg != "no files" {
		t.Fatalf("unexpected error result: %+v", res)
	}
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	if got := formatPath("/home/user/project/src/a.js", PathModeRelative, "/home/user/project"); got != "src/a.js" {
		t.Errorf("relative: %s", got)
	}
	if got := formatPath("/home/user/project/src/a.js", PathModeBasename, ""); got != "a.js" {
		t.Errorf("basename: %s", got)
	}
	if got := formatPath("src/a.js", PathModeAsGiven, ""); got != "src/a.js" {
		t.Errorf("as given: %s", got)
	}
	if got := formatPath("mem://localhost/a.js", PathModeAbsolute, ""); got != "mem://localhost/a.js" {
		t.Errorf("urls are left alone: %s", got)
	}
}
