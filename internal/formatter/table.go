// Package formatter provides columnar output for listing commands.
package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table formats columnar output using tabwriter.
type Table struct {
	w             *tabwriter.Writer
	headers       []string
	headerWritten bool
}

// NewTable creates a table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		w:       tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

// AddRow appends a data row. Missing values are filled with empty strings;
// extra values beyond the header count are ignored.
func (t *Table) AddRow(values ...string) {
	if !t.headerWritten {
		t.headerWritten = true
		t.writeHeader()
	}

	cells := make([]string, len(t.headers))
	for i := range cells {
		if i < len(values) {
			cells[i] = values[i]
		}
	}
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

// Render flushes the underlying tabwriter. Must be called after all AddRow
// calls.
func (t *Table) Render() error {
	return t.w.Flush()
}

func (t *Table) writeHeader() {
	fmt.Fprintln(t.w, strings.Join(t.headers, "\t"))

	separators := make([]string, len(t.headers))
	for i, h := range t.headers {
		separators[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(t.w, strings.Join(separators, "\t"))
}
