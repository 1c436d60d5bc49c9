// Package gitx wraps the version-control operations the release pipelines
// depend on. All calls go through an execx.Runner so pipelines can run
// against a recording fake.
package gitx

import (
	"context"
	"errors"

	"github.com/relkit/relkit/internal/execx"
)

// ErrDirtyTree is returned when the working tree has uncommitted changes.
var ErrDirtyTree = errors.New("working tree has uncommitted changes: commit or stash before releasing")

// Client issues git commands in a fixed repository directory.
type Client struct {
	r   execx.Runner
	dir string
}

// New creates a client for the repository at dir.
func New(r execx.Runner, dir string) *Client {
	return &Client{r: r, dir: dir}
}

// Dir returns the repository directory the client operates in.
func (c *Client) Dir() string { return c.dir }

func (c *Client) run(ctx context.Context, args ...string) error {
	return c.r.Run(ctx, execx.Invocation{Program: "git", Args: args, Dir: c.dir})
}

func (c *Client) quiet(ctx context.Context, args ...string) error {
	return c.r.Run(ctx, execx.Invocation{Program: "git", Args: args, Dir: c.dir, Quiet: true})
}

// CurrentBranch returns the checked-out branch name.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	return c.r.Output(ctx, execx.Invocation{
		Program: "git",
		Args:    []string{"rev-parse", "--abbrev-ref", "HEAD"},
		Dir:     c.dir,
	})
}

// VerifyClean fails with ErrDirtyTree when the tree differs from HEAD.
func (c *Client) VerifyClean(ctx context.Context) error {
	if err := c.quiet(ctx, "diff-index", "--quiet", "HEAD", "--"); err != nil {
		return ErrDirtyTree
	}
	return nil
}

// HasChanges reports whether the working tree differs from HEAD. Used to
// gate commits so the pipelines never create empty commits.
func (c *Client) HasChanges(ctx context.Context) bool {
	return c.quiet(ctx, "diff-index", "--quiet", "HEAD", "--") != nil
}

// Checkout switches to the given ref.
func (c *Client) Checkout(ctx context.Context, ref string) error {
	return c.run(ctx, "checkout", ref)
}

// Add stages the given paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	return c.run(ctx, append([]string{"add"}, paths...)...)
}

// Commit creates a signed commit with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	return c.run(ctx, "commit", "-S", "-m", message)
}

// Merge merges branch into the current branch with a signed, non-fast-forward
// merge commit carrying the given message.
func (c *Client) Merge(ctx context.Context, branch, message string) error {
	return c.run(ctx, "merge", "--no-ff", "-S", "-m", message, branch)
}

// Tag creates a signed annotated tag with the given message.
func (c *Client) Tag(ctx context.Context, name, message string) error {
	return c.run(ctx, "tag", "-s", "-a", name, "-m", message)
}
