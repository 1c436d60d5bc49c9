// Package guard restores the repository branch and the working directory
// after a failed pipeline run. The restore point is captured before any
// mutating step; restoration happens at most once and never masks the
// failure that triggered it.
package guard

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/relkit/relkit/internal/gitx"
)

// RestorePoint is the pre-run repository state. Read-only after capture.
type RestorePoint struct {
	// Branch is the branch checked out when the guard opened.
	Branch string

	// Dir is the process working directory when the guard opened.
	Dir string
}

// Guard restores a RestorePoint exactly once.
type Guard struct {
	git      *gitx.Client
	out      io.Writer
	point    RestorePoint
	restored bool
}

// Open captures the current branch and working directory. It must run before
// the first mutating step of a pipeline.
func Open(ctx context.Context, git *gitx.Client, out io.Writer) (*Guard, error) {
	branch, err := git.CurrentBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("record current branch: %w", err)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("record working directory: %w", err)
	}
	return &Guard{git: git, out: out, point: RestorePoint{Branch: branch, Dir: dir}}, nil
}

// Point returns the captured restore point.
func (g *Guard) Point() RestorePoint { return g.point }

// Restore switches back to the recorded branch, then changes back to the
// recorded directory. It is idempotent: nested failure paths may call it
// freely and only the first call acts. Restoration failures are reported on
// the guard's writer but never returned, so they cannot mask the original
// pipeline error.
func (g *Guard) Restore(ctx context.Context) {
	if g.restored {
		return
	}
	g.restored = true

	fmt.Fprintf(g.out, "Restoring branch %s and directory %s\n", g.point.Branch, g.point.Dir)
	if err := g.git.Checkout(ctx, g.point.Branch); err != nil {
		fmt.Fprintf(g.out, "Warning: could not restore branch %s: %v\n", g.point.Branch, err)
	}
	if err := os.Chdir(g.point.Dir); err != nil {
		fmt.Fprintf(g.out, "Warning: could not restore directory %s: %v\n", g.point.Dir, err)
	}
}

// RestoreOnError restores only when *errp carries a failure. Meant for
// deferred use with a named return error, so the guard wraps the whole
// pipeline rather than individual steps.
func (g *Guard) RestoreOnError(ctx context.Context, errp *error) {
	if errp != nil && *errp != nil {
		g.Restore(ctx)
	}
}
