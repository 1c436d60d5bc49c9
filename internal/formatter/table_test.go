package formatter

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableRendersHeaderAndRows(t *testing.T) {
	var out bytes.Buffer
	table := NewTable(&out, "NAME", "PATH")
	table.AddRow("msvc2022", "/opt/toolchains/msvc2022")
	table.AddRow("clang17", "/opt/toolchains/clang17")
	if err := table.Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("rendered %d lines, want 4 (header, separator, 2 rows)", len(lines))
	}
	if !strings.Contains(lines[0], "NAME") || !strings.Contains(lines[0], "PATH") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "----") {
		t.Errorf("separator line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "msvc2022") {
		t.Errorf("first row = %q", lines[2])
	}
}

func TestTablePadsMissingValues(t *testing.T) {
	var out bytes.Buffer
	table := NewTable(&out, "A", "B", "C")
	table.AddRow("only")
	if err := table.Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out.String(), "only") {
		t.Errorf("output = %q, want the provided cell", out.String())
	}
}
