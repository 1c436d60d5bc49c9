package pipeline

import (
	"context"
	"os"

	"github.com/relkit/relkit/internal/release"
	"github.com/relkit/relkit/internal/signing"
)

// SignParams configures the sign mode. Immutable once built.
type SignParams struct {
	// Version is the validated release version.
	Version release.Version

	// ToolchainName selects a discovered toolchain by name.
	ToolchainName string

	// KeyPath overrides the configured binary-signing key.
	KeyPath string

	// GPGKey overrides the configured detached-signature key.
	GPGKey string

	// TimestampURL overrides the configured timestamp server.
	TimestampURL string

	// Patterns are file paths or globs naming the artifacts to sign.
	Patterns []string
}

// Sign runs the sign pipeline: expand the given patterns, partition the
// files by extension, binary-sign the executables and installers, then
// detached-sign and hash the installers and archives.
func Sign(ctx context.Context, env *Env, p SignParams) error {
	keyPath := p.KeyPath
	if keyPath == "" {
		keyPath = env.Cfg.Signing.Key
	}

	// The signing tool ships with the toolchain, so resolve one only when a
	// key is present and binary signing can actually happen. When it is in
	// play, the tool must resolve before any artifact is touched.
	tool := "signtool"
	var toolEnv map[string]string
	requiredTools := []string{"gpg"}
	if info, err := os.Stat(keyPath); err == nil && !info.IsDir() {
		tc, desc, err := env.resolveToolchain(p.ToolchainName)
		if err != nil {
			return err
		}
		tool = signingTool(desc, tc)
		toolEnv = desc.Env
		requiredTools = append(requiredTools, tool)
	}

	if err := release.VerifyTools(env.Runner, requiredTools); err != nil {
		return err
	}

	var (
		binaries []string
		archives []string
	)

	steps := []step{
		{"expand file patterns", func(context.Context) error {
			files, err := signing.ExpandPatterns(p.Patterns)
			if err != nil {
				return err
			}
			binaries, archives = signing.Classify(files)
			return nil
		}},
		{"sign binaries", func(ctx context.Context) error {
			opts := signing.BinarySignOptions{
				Tool:         tool,
				KeyPath:      keyPath,
				TimestampURL: p.TimestampURL,
				Description:  env.Cfg.Signing.Description,
				Env:          toolEnv,
			}
			if opts.TimestampURL == "" {
				opts.TimestampURL = env.Cfg.Signing.TimestampURL
			}
			return signing.BinarySign(ctx, env.Runner, env.Password, opts, binaries)
		}},
		{"detached-sign archives", func(ctx context.Context) error {
			gpgKey := p.GPGKey
			if gpgKey == "" {
				gpgKey = env.Cfg.Signing.GPGKey
			}
			return signing.DetachedSign(ctx, env.Runner, gpgKey, archives)
		}},
	}

	return env.runSteps(ctx, steps)
}
