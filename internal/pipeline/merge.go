package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/relkit/relkit/internal/changelog"
	"github.com/relkit/relkit/internal/execx"
	"github.com/relkit/relkit/internal/gitx"
	"github.com/relkit/relkit/internal/guard"
	"github.com/relkit/relkit/internal/release"
)

// ErrNotReleaseBranch is returned when the merge source is neither a
// release/* branch nor develop.
var ErrNotReleaseBranch = fmt.Errorf("merge source must be a release/* branch or develop")

// MergeParams configures the merge mode. Immutable once built.
type MergeParams struct {
	// Version is the validated release version.
	Version release.Version

	// RepoDir is the repository to operate in.
	RepoDir string

	// SourceBranch is the branch to merge. Empty means the current branch.
	SourceBranch string

	// TargetBranch overrides the configured merge target.
	TargetBranch string
}

// Merge runs the merge pipeline: validate version markers, refresh and
// commit translations, then merge the release branch into the target with a
// signed merge commit and signed annotated tag carrying the changelog
// section for this version. On any failure the starting branch and directory
// are restored.
func Merge(ctx context.Context, env *Env, p MergeParams) (err error) {
	// The first step changes into the repository, so every later path must
	// already be absolute or it would resolve against the new directory.
	repoDir, err := filepath.Abs(p.RepoDir)
	if err != nil {
		return err
	}
	git := gitx.New(env.Runner, repoDir)

	requiredTools := []string{
		"git",
		env.Cfg.Translations.ExtractCommand,
		env.Cfg.Translations.PullCommand,
	}
	if err := release.VerifyTools(env.Runner, requiredTools); err != nil {
		return err
	}

	g, err := guard.Open(ctx, git, env.Out)
	if err != nil {
		return err
	}
	defer g.RestoreOnError(ctx, &err)

	target := p.TargetBranch
	if target == "" {
		target = env.Cfg.Git.TargetBranch
	}

	var (
		source      string
		releaseNote string
	)

	steps := []step{
		{"change to repository directory", func(context.Context) error {
			return os.Chdir(repoDir)
		}},
		{"verify version markers", func(context.Context) error {
			return release.CheckMarkers(repoDir, env.Cfg.Markers, p.Version)
		}},
		{"verify clean working tree", git.VerifyClean},
		{"resolve source branch", func(ctx context.Context) error {
			source = p.SourceBranch
			if source == "" {
				source = g.Point().Branch
			}
			if !release.IsReleaseBranch(source) {
				return fmt.Errorf("%w: %q", ErrNotReleaseBranch, source)
			}
			return nil
		}},
		{"regenerate translation source", func(ctx context.Context) error {
			return env.Runner.Run(ctx, execx.Invocation{
				Program: env.Cfg.Translations.ExtractCommand,
				Args:    env.Cfg.Translations.ExtractArgs,
				Dir:     repoDir,
			})
		}},
		{"pull translations", func(ctx context.Context) error {
			return env.Runner.Run(ctx, execx.Invocation{
				Program: env.Cfg.Translations.PullCommand,
				Args:    env.Cfg.Translations.PullArgs,
				Dir:     repoDir,
			})
		}},
		{"commit translation changes", func(ctx context.Context) error {
			// Diff-gated: the sync often changes nothing, and an empty
			// commit would fail the run.
			if !git.HasChanges(ctx) {
				env.verbosef("translations unchanged, skipping commit\n")
				return nil
			}
			if err := git.Add(ctx, "."); err != nil {
				return err
			}
			return git.Commit(ctx, "Update translations")
		}},
		{"extract changelog section", func(context.Context) error {
			data, err := os.ReadFile(filepath.Join(repoDir, env.Cfg.Markers.Changelog))
			if err != nil {
				return err
			}
			body, err := changelog.ExtractSection(string(data), p.Version.String())
			if err != nil {
				return err
			}
			releaseNote = fmt.Sprintf("Release %s\n\n%s", p.Version, body)
			return nil
		}},
		{"checkout target branch", func(ctx context.Context) error {
			return git.Checkout(ctx, target)
		}},
		{"merge release branch", func(ctx context.Context) error {
			return git.Merge(ctx, source, releaseNote)
		}},
		{"create release tag", func(ctx context.Context) error {
			return git.Tag(ctx, p.Version.String(), releaseNote)
		}},
	}

	return env.runSteps(ctx, steps)
}
