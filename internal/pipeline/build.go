package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/relkit/relkit/internal/execx"
	"github.com/relkit/relkit/internal/gitx"
	"github.com/relkit/relkit/internal/guard"
	"github.com/relkit/relkit/internal/release"
	"github.com/relkit/relkit/internal/signing"
	"github.com/relkit/relkit/internal/toolchain"
)

// BuildParams configures the build mode. Immutable once built.
type BuildParams struct {
	// Version is the validated release version.
	Version release.Version

	// RepoDir is the repository to build from.
	RepoDir string

	// Tag overrides the checked-out release tag. Empty means the version
	// string.
	Tag string

	// Snapshot builds the current HEAD under a -snapshot release name,
	// skipping the clean check and the tag checkout.
	Snapshot bool

	// ToolchainName selects a discovered toolchain by name.
	ToolchainName string

	// ToolchainFile is an explicit toolchain file passed at configure time.
	ToolchainFile string

	// Generator overrides the configured build-system generator.
	Generator string

	// OutputDir overrides the configured package output directory.
	OutputDir string

	// Options are extra configure options appended to the configured base.
	Options []string

	// PackageFormats overrides the configured package generators.
	PackageFormats []string

	// Sign enables binary signing of built binaries and produced packages.
	Sign bool

	// KeyPath overrides the configured binary-signing key.
	KeyPath string

	// GPGKey overrides the configured detached-signature key.
	GPGKey string

	// TimestampURL overrides the configured timestamp server.
	TimestampURL string
}

// Build runs the build pipeline: checkout the release tag (or stay on HEAD
// for snapshots), configure, compile, package, collect and sign artifacts.
// The starting branch and directory are restored unconditionally, success or
// failure.
func Build(ctx context.Context, env *Env, p BuildParams) error {
	// The configure invocation passes the repository as a source-dir argument
	// while also running inside it, so the path must be absolute.
	repoDir, err := filepath.Abs(p.RepoDir)
	if err != nil {
		return err
	}
	git := gitx.New(env.Runner, repoDir)

	tc, desc, err := env.resolveToolchain(p.ToolchainName)
	if err != nil {
		return err
	}
	env.verbosef("using toolchain %s (%s)\n", tc.Name, tc.Path)

	requiredTools := []string{"git", "cmake", "cpack"}
	if p.Sign {
		requiredTools = append(requiredTools, "gpg", signingTool(desc, tc))
	}
	if err := release.VerifyTools(env.Runner, requiredTools); err != nil {
		return err
	}

	g, err := guard.Open(ctx, git, env.Out)
	if err != nil {
		return err
	}
	// The build leaves the repository on the release tag and the process in
	// the build tree; put both back no matter how the pipeline ends.
	defer g.Restore(ctx)

	generator := p.Generator
	if generator == "" {
		generator = env.Cfg.Build.Generator
	}
	outputDir := p.OutputDir
	if outputDir == "" {
		outputDir = env.Cfg.Build.OutputDir
	}
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(repoDir, outputDir)
	}
	buildDir := filepath.Join(repoDir, env.Cfg.Build.BuildDir)
	formats := p.PackageFormats
	if len(formats) == 0 {
		formats = env.Cfg.Build.PackageFormats
	}

	releaseName := p.Version.String()
	var packages []string

	var steps []step

	if p.Snapshot {
		releaseName = p.Version.SnapshotName()
	} else {
		steps = append(steps,
			step{"verify clean working tree", git.VerifyClean},
			step{"clear output directory", func(context.Context) error {
				return os.RemoveAll(outputDir)
			}},
			step{"checkout release tag", func(ctx context.Context) error {
				tag := p.Tag
				if tag == "" {
					tag = p.Version.String()
				}
				return git.Checkout(ctx, tag)
			}},
		)
	}

	steps = append(steps,
		step{"create build directories", func(context.Context) error {
			if err := os.MkdirAll(buildDir, 0o755); err != nil {
				return err
			}
			return os.MkdirAll(outputDir, 0o755)
		}},
		step{"configure", func(ctx context.Context) error {
			args := []string{"-S", repoDir, "-B", buildDir, "-G", generator}
			if p.ToolchainFile != "" {
				args = append(args, "-DCMAKE_TOOLCHAIN_FILE="+p.ToolchainFile)
			}
			for _, opt := range env.Cfg.Build.Options {
				args = append(args, "-D"+opt)
			}
			for _, opt := range p.Options {
				args = append(args, "-D"+opt)
			}
			args = append(args,
				"-DCMAKE_BUILD_TYPE="+string(p.Version.ReleaseType()),
				"-DRELEASE_NAME="+releaseName,
			)
			return env.Runner.Run(ctx, execx.Invocation{Program: "cmake", Args: args, Dir: repoDir, Env: desc.Env})
		}},
		step{"compile", func(ctx context.Context) error {
			return env.Runner.Run(ctx, execx.Invocation{
				Program: "cmake",
				Args:    []string{"--build", buildDir},
				Dir:     repoDir,
				Env:     desc.Env,
			})
		}},
	)

	if p.Sign {
		steps = append(steps, step{"sign built binaries", func(ctx context.Context) error {
			binaries, err := findBinaries(buildDir)
			if err != nil {
				return err
			}
			return signing.BinarySign(ctx, env.Runner, env.Password, p.signOptions(env, desc, tc), binaries)
		}})
	}

	steps = append(steps,
		step{"package", func(ctx context.Context) error {
			for _, format := range formats {
				inv := execx.Invocation{Program: "cpack", Args: []string{"-G", format}, Dir: buildDir, Env: desc.Env}
				if err := env.Runner.Run(ctx, inv); err != nil {
					return err
				}
			}
			return nil
		}},
		step{"collect packages", func(context.Context) error {
			packages, err = collectPackages(buildDir, outputDir)
			return err
		}},
	)

	if p.Sign {
		steps = append(steps, step{"sign packages", func(ctx context.Context) error {
			installers, archives := signing.Classify(packages)
			if err := signing.BinarySign(ctx, env.Runner, env.Password, p.signOptions(env, desc, tc), installers); err != nil {
				return err
			}
			gpgKey := p.GPGKey
			if gpgKey == "" {
				gpgKey = env.Cfg.Signing.GPGKey
			}
			return signing.DetachedSign(ctx, env.Runner, gpgKey, archives)
		}})
	}

	if err := env.runSteps(ctx, steps); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Release %s built into %s\n", releaseName, outputDir)
	return nil
}

// signOptions merges flag, config, and toolchain-descriptor signing settings.
func (p BuildParams) signOptions(env *Env, desc *toolchain.Descriptor, tc toolchain.Candidate) signing.BinarySignOptions {
	opts := signing.BinarySignOptions{
		Tool:         signingTool(desc, tc),
		KeyPath:      p.KeyPath,
		TimestampURL: p.TimestampURL,
		Description:  env.Cfg.Signing.Description,
		Env:          desc.Env,
	}
	if opts.KeyPath == "" {
		opts.KeyPath = env.Cfg.Signing.Key
	}
	if opts.TimestampURL == "" {
		opts.TimestampURL = env.Cfg.Signing.TimestampURL
	}
	return opts
}

// signingTool resolves the signing program from the toolchain descriptor,
// falling back to a bare signtool on PATH.
func signingTool(desc *toolchain.Descriptor, tc toolchain.Candidate) string {
	if desc != nil {
		if rel, ok := desc.Tools["signtool"]; ok {
			return filepath.Join(tc.Path, rel)
		}
	}
	return "signtool"
}

// findBinaries lists signable executables and libraries under the build tree.
func findBinaries(buildDir string) ([]string, error) {
	var binaries []string
	err := filepath.WalkDir(buildDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".exe", ".dll":
			binaries = append(binaries, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return binaries, nil
}

// collectPackages moves produced packages from the build tree into the
// output directory and returns their new paths.
func collectPackages(buildDir, outputDir string) ([]string, error) {
	entries, err := os.ReadDir(buildDir)
	if err != nil {
		return nil, err
	}
	var moved []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isPackage(e.Name()) {
			continue
		}
		src := filepath.Join(buildDir, e.Name())
		dst := filepath.Join(outputDir, e.Name())
		if err := os.Rename(src, dst); err != nil {
			return nil, err
		}
		moved = append(moved, dst)
	}
	return moved, nil
}

// isPackage reports whether a filename looks like a produced package.
func isPackage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".msi", ".zip", ".dmg", ".xz", ".appimage":
		return true
	}
	return false
}
