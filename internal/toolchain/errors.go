package toolchain

import (
	"errors"
	"fmt"
)

// ErrNoToolchain is returned when discovery finds no installed toolchain.
var ErrNoToolchain = errors.New("no toolchain installation found")

// SelectionError reports an interactive choice outside [1, Count] or input
// that does not parse as an integer.
type SelectionError struct {
	Input string
	Count int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid selection %q: expected an integer in [1, %d]", e.Input, e.Count)
}
