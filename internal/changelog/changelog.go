// Package changelog extracts per-version sections from a markdown changelog.
package changelog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSectionNotFound is returned when the changelog has no header for the
// requested version.
var ErrSectionNotFound = errors.New("changelog section not found")

// ExtractSection returns the body of the section headed by "## <version>",
// up to the next "## " header or end of input. The header line itself is not
// included; body lines keep their trailing newlines.
func ExtractSection(doc, version string) (string, error) {
	header := "## " + version
	lines := strings.Split(doc, "\n")
	// A trailing newline in the document is line framing, not an empty line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	start := -1
	for i, line := range lines {
		if line == header || strings.HasPrefix(line, header+" ") {
			start = i + 1
			break
		}
	}
	if start == -1 {
		return "", fmt.Errorf("%w: %s", ErrSectionNotFound, version)
	}

	var b strings.Builder
	for _, line := range lines[start:] {
		if strings.HasPrefix(line, "## ") {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}
