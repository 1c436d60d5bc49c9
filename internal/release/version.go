// Package release holds the release metadata checks run before any
// side-effecting pipeline step: version parsing, project version markers,
// and required-tool verification.
package release

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidVersion is returned for version strings whose core is not three
// numeric components (an optional -beta<N> suffix is the only extension).
var ErrInvalidVersion = errors.New("version must match MAJOR.MINOR.PATCH with an optional -betaN suffix")

var versionPattern = regexp.MustCompile(`^(\d+\.\d+\.\d+)(-beta\d+)?$`)

// Type classifies a version for the build system.
type Type string

const (
	// TypeRelease is a final release.
	TypeRelease Type = "Release"

	// TypePreRelease is a beta release.
	TypePreRelease Type = "PreRelease"
)

// Version is a validated release version. Immutable once parsed.
type Version struct {
	raw  string
	core string
	beta bool
}

// Parse validates and wraps a version string.
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return Version{raw: s, core: m[1], beta: m[2] != ""}, nil
}

// String returns the full version string, including any beta suffix.
func (v Version) String() string { return v.raw }

// Core returns the three-component numeric part.
func (v Version) Core() string { return v.core }

// IsPreRelease reports whether the version carries a -beta<N> suffix.
func (v Version) IsPreRelease() bool { return v.beta }

// ReleaseType returns the build-system release type for this version.
func (v Version) ReleaseType() Type {
	if v.beta {
		return TypePreRelease
	}
	return TypeRelease
}

// SnapshotName returns the release name used for snapshot builds.
func (v Version) SnapshotName() string {
	return v.raw + "-snapshot"
}

// IsReleaseBranch reports whether a branch may act as merge source:
// release/* or develop.
func IsReleaseBranch(branch string) bool {
	return branch == "develop" || strings.HasPrefix(branch, "release/")
}
