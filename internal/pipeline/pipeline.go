// Package pipeline sequences the release modes. Each mode is an ordered list
// of steps over a shared step contract; any failing step aborts the rest of
// the pipeline and the recovery guard puts the repository branch and the
// working directory back where they started.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/execx"
	"github.com/relkit/relkit/internal/signing"
	"github.com/relkit/relkit/internal/toolchain"
)

// Env carries the collaborators a pipeline needs. The shell-script globals
// of a release run (current directory, current branch) stay explicit: the
// git client is bound to a repository directory and the guard owns the
// restore point.
type Env struct {
	// Runner executes external programs.
	Runner execx.Runner

	// Cfg is the resolved configuration.
	Cfg *config.Config

	// Out receives progress output.
	Out io.Writer

	// Selector resolves ambiguous toolchain choices.
	Selector toolchain.SelectionSource

	// Password supplies the signing-key password.
	Password signing.PasswordReader

	// Verbose enables step-by-step progress lines.
	Verbose bool
}

func (e *Env) verbosef(format string, args ...any) {
	if e.Verbose {
		fmt.Fprintf(e.Out, format, args...)
	}
}

// step is one unit of pipeline work.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps executes steps in order, fail-fast: the first failure aborts the
// remaining steps.
func (e *Env) runSteps(ctx context.Context, steps []step) error {
	for _, s := range steps {
		e.verbosef("==> %s\n", s.name)
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// resolveToolchain discovers candidates, selects one and loads its
// descriptor. A descriptor that fails to load is fatal in every mode.
func (e *Env) resolveToolchain(explicitName string) (toolchain.Candidate, *toolchain.Descriptor, error) {
	candidates := toolchain.Discover(e.Cfg.Toolchains.SearchPaths)
	tc, err := toolchain.Select(candidates, explicitName, e.Selector, e.Out)
	if err != nil {
		return toolchain.Candidate{}, nil, err
	}
	desc, err := toolchain.LoadDescriptor(tc.Path)
	if err != nil {
		return toolchain.Candidate{}, nil, err
	}
	return tc, desc, nil
}
