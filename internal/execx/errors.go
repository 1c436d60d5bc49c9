package execx

import "fmt"

// CommandError reports a non-zero exit from an external program. Callers
// match it with errors.As to learn which program failed.
type CommandError struct {
	Program string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Program, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// MissingToolError is returned when a required external program cannot be
// resolved on the executable search path.
type MissingToolError struct {
	Tool string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("required tool %q not found on PATH", e.Tool)
}
