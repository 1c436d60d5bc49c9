// Package signing signs release artifacts. Binaries and installers get an
// embedded signature from the platform signing tool; installers, archives and
// disk images additionally get a detached armored signature and a digest
// file consumed by downstream verification tooling.
package signing

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/relkit/relkit/internal/execx"
)

// binaryExts are extensions that receive an embedded signature.
var binaryExts = map[string]bool{
	".exe": true,
	".dll": true,
	".msi": true,
}

// detachedExts are extensions that receive a detached signature and digest.
// .msi appears in both sets: installers get both signature types.
var detachedExts = map[string]bool{
	".msi":      true,
	".zip":      true,
	".dmg":      true,
	".appimage": true,
	".xz":       true,
}

// Classify partitions files by extension into the binary-signable and the
// detachable-signable sets. A file may land in both.
func Classify(paths []string) (binary, detached []string) {
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		if binaryExts[ext] {
			binary = append(binary, p)
		}
		if detachedExts[ext] {
			detached = append(detached, p)
		}
	}
	return binary, detached
}

// ExpandPatterns resolves file paths and glob patterns into a concrete,
// de-duplicated, order-stable file list.
func ExpandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	return files, nil
}

// PasswordReader supplies the signing-key password. The interactive
// implementation prompts once without echoing; tests supply a fixed value.
type PasswordReader interface {
	ReadPassword(prompt string) (string, error)
}

// BinarySignOptions configures embedded signing.
type BinarySignOptions struct {
	// Tool is the signing program (signtool-compatible interface).
	Tool string

	// KeyPath is the signing key file. It must exist.
	KeyPath string

	// TimestampURL is the timestamp server embedded in signatures.
	TimestampURL string

	// Description is the label embedded in signatures.
	Description string

	// Env holds extra environment variables for each signing invocation,
	// typically from the toolchain descriptor.
	Env map[string]string
}

// BinarySign embeds signatures into the given files. It is a no-op on an
// empty list. The key password is requested exactly once and every signing
// invocation runs with masked arguments so the password never reaches a log.
func BinarySign(ctx context.Context, r execx.Runner, pw PasswordReader, opts BinarySignOptions, files []string) error {
	if len(files) == 0 {
		return nil
	}
	if info, err := os.Stat(opts.KeyPath); err != nil || info.IsDir() {
		return &KeyError{Path: opts.KeyPath}
	}

	password, err := pw.ReadPassword("Signing key password: ")
	if err != nil {
		return err
	}

	for _, file := range files {
		inv := execx.Invocation{
			Program: opts.Tool,
			Args: []string{
				"sign",
				"/f", opts.KeyPath,
				"/p", password,
				"/fd", "sha256",
				"/td", "sha256",
				"/d", opts.Description,
				"/tr", opts.TimestampURL,
				file,
			},
			Env:      opts.Env,
			MaskArgs: true,
		}
		if err := r.Run(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}

// DetachedSign writes an armored detached signature and a digest file for
// each input. It is a no-op on an empty list. Stale signature files are
// removed first so repeated runs never trip the signature tool's overwrite
// prompt.
func DetachedSign(ctx context.Context, r execx.Runner, gpgKey string, files []string) error {
	if len(files) == 0 {
		return nil
	}

	for _, file := range files {
		sigPath := file + ".sig"
		if err := os.Remove(sigPath); err != nil && !os.IsNotExist(err) {
			return err
		}

		args := []string{"--armor", "--detach-sig", "--output", sigPath}
		if gpgKey != "" {
			args = append([]string{"--local-user", gpgKey}, args...)
		}
		args = append(args, file)

		if err := r.Run(ctx, execx.Invocation{Program: "gpg", Args: args}); err != nil {
			return err
		}
		if err := WriteDigest(file); err != nil {
			return err
		}
	}
	return nil
}
