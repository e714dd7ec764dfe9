package progress

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_PicksReporterForEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := New().(*barReporter); !ok {
		t.Error("expected a bar reporter outside CI")
	}

	t.Setenv("CI", "true")
	if _, ok := New().(*lineReporter); !ok {
		t.Error("expected a line reporter under CI")
	}
}

func TestLineReporter_StepOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating output file: %v", err)
	}
	defer f.Close()

	r := &lineReporter{out: f}
	r.Begin([]string{"Table collections", "Documentation"})
	r.Step("Table collections rebuilt")
	r.Step("Documentation indexed")
	r.Done()

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	out := string(buf)
	for _, want := range []string{
		"Rebuilding cache (2 steps)",
		"[1/2] Table collections rebuilt",
		"[2/2] Documentation indexed",
		"Cache rebuild finished",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
