package monitoring

import (
	"fmt"
	"testing"
)

// capture installs a recording logger and restores the original afterwards.
func capture(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	t.Cleanup(func() { Logf = original })

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := capture(t)

	Logf("loaded %d segments", 26)
	if len(*lines) != 1 || (*lines)[0] != "loaded 26 segments" {
		t.Errorf("unexpected log output: %v", *lines)
	}
}

func TestSetLoggerNilIsNoOp(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	SetLogger(nil)
	// Must not panic and must not write anywhere.
	Logf("dropped")
	Stepf("aadt", "dropped")
}

func TestStepfAndWarnfPrefixes(t *testing.T) {
	lines := capture(t)

	Stepf("peak", "computed flows for %d segments", 3)
	Warnf("validate", "%d values out of range", 2)

	if len(*lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(*lines))
	}
	if (*lines)[0] != "[peak] computed flows for 3 segments" {
		t.Errorf("unexpected step line: %q", (*lines)[0])
	}
	if (*lines)[1] != "[validate] WARNING: 2 values out of range" {
		t.Errorf("unexpected warning line: %q", (*lines)[1])
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
}
