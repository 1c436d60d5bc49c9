// Package execx runs external programs on behalf of the release pipelines.
// Every external invocation in the tool goes through the Runner interface so
// pipelines can be exercised against a recording fake instead of spawning
// real processes.
package execx

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// maskToken replaces every argument of a masked invocation in log output.
// Key passwords and signing parameters must never reach a log line.
const maskToken = "***"

// Invocation describes one external-process call.
type Invocation struct {
	// Program is the executable name or path.
	Program string

	// Args is the argument list, excluding the program itself.
	Args []string

	// Dir is the working directory for the child process. Empty means
	// inherit the current directory.
	Dir string

	// Env holds extra environment variables overlaid on the parent
	// environment for the child process.
	Env map[string]string

	// MaskArgs suppresses the argument list in the echoed invocation line.
	MaskArgs bool

	// Quiet discards child stdout/stderr. Exit status is still checked.
	Quiet bool
}

// Runner executes external programs. Implementations report non-zero exits
// as *CommandError.
type Runner interface {
	// Run executes the invocation, streaming output unless Quiet.
	Run(ctx context.Context, inv Invocation) error

	// Output executes the invocation and returns trimmed stdout.
	Output(ctx context.Context, inv Invocation) (string, error)

	// LookPath resolves a program name to an executable path.
	LookPath(program string) (string, error)
}

// ProcessRunner spawns real processes. Each invocation is echoed to Stdout
// before it runs, with arguments replaced by a mask token when the
// invocation is marked sensitive, and a blank line is appended after each
// successful run to keep sequential logs readable.
type ProcessRunner struct {
	// Stdout and Stderr receive the echoed invocation line and the child
	// process output. Nil writers default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	// PathPrefix, when set, is a directory consulted before PATH when
	// resolving program names.
	PathPrefix string
}

// NewProcessRunner returns a runner writing to the process streams.
func NewProcessRunner(pathPrefix string) *ProcessRunner {
	return &ProcessRunner{Stdout: os.Stdout, Stderr: os.Stderr, PathPrefix: pathPrefix}
}

func (r *ProcessRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *ProcessRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// echo prints the invocation line. Masked invocations never include the raw
// argument strings.
func (r *ProcessRunner) echo(inv Invocation) {
	if inv.MaskArgs {
		fmt.Fprintf(r.stdout(), "> %s %s\n", inv.Program, maskToken)
		return
	}
	if len(inv.Args) == 0 {
		fmt.Fprintf(r.stdout(), "> %s\n", inv.Program)
		return
	}
	fmt.Fprintf(r.stdout(), "> %s %s\n", inv.Program, strings.Join(inv.Args, " "))
}

// Run executes the invocation and returns *CommandError on non-zero exit.
func (r *ProcessRunner) Run(ctx context.Context, inv Invocation) error {
	program, err := r.LookPath(inv.Program)
	if err != nil {
		return &MissingToolError{Tool: inv.Program}
	}

	r.echo(inv)

	cmd := exec.CommandContext(ctx, program, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = childEnv(inv)
	if inv.Quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	} else {
		cmd.Stdout = r.stdout()
		cmd.Stderr = r.stderr()
	}
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		return &CommandError{Program: inv.Program, Err: err}
	}
	fmt.Fprintln(r.stdout())
	return nil
}

// Output executes the invocation and captures trimmed stdout. The invocation
// is not echoed; Output serves queries (current branch, tool versions), not
// pipeline steps.
func (r *ProcessRunner) Output(ctx context.Context, inv Invocation) (string, error) {
	program, err := r.LookPath(inv.Program)
	if err != nil {
		return "", &MissingToolError{Tool: inv.Program}
	}

	cmd := exec.CommandContext(ctx, program, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = childEnv(inv)
	out, err := cmd.Output()
	if err != nil {
		return "", &CommandError{Program: inv.Program, Err: err}
	}
	return strings.TrimSpace(string(out)), nil
}

// childEnv builds the child environment: the parent environment plus the
// invocation's extra variables. A nil result keeps exec's inherit default.
func childEnv(inv Invocation) []string {
	if len(inv.Env) == 0 {
		return nil
	}
	env := os.Environ()
	for k, v := range inv.Env {
		env = append(env, k+"="+v)
	}
	return env
}

// LookPath resolves a program name, consulting PathPrefix before PATH.
func (r *ProcessRunner) LookPath(program string) (string, error) {
	if r.PathPrefix != "" {
		candidate := filepath.Join(r.PathPrefix, program)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		if runtimeExt := executableExt(); runtimeExt != "" {
			candidate += runtimeExt
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	path, err := exec.LookPath(program)
	if err != nil {
		return "", &MissingToolError{Tool: program}
	}
	return path, nil
}
