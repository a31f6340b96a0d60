package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestInfo_OptionalFields(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit, BuildDate = "", ""
	info := Info(false)
	if !strings.HasPrefix(info, "escheck "+Version+"\n") {
		t.Errorf("unexpected header: %q", info)
	}
	if strings.Contains(info, "commit:") || strings.Contains(info, "built:") {
		t.Errorf("empty fields must be omitted: %q", info)
	}

	GitCommit, BuildDate = "abc123def456", "2024-01-15T10:30:00Z"
	info = Info(false)
	if !strings.Contains(info, "commit: abc123def456") || !strings.Contains(info, "built:  2024-01-15T10:30:00Z") {
		t.Errorf("overrides not rendered: %q", info)
	}
}

func TestColored(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	tests := map[string]string{
		"1.2.3":           "1.2.3",
		"0.1.0-dev":       "0.1.0-dev",
		"1.2.3-rc.1+b.12": "1.2.3-rc.1+b.12",
		"dev":             "dev",
	}
	for in, want := range tests {
		Version = in
		if got := Colored(); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}
