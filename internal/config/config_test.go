package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Git.TargetBranch != "master" {
		t.Errorf("Default Git.TargetBranch = %q, want %q", cfg.Git.TargetBranch, "master")
	}
	if cfg.Build.Generator != "Ninja" {
		t.Errorf("Default Build.Generator = %q, want %q", cfg.Build.Generator, "Ninja")
	}
	if cfg.Build.OutputDir != "release" {
		t.Errorf("Default Build.OutputDir = %q, want %q", cfg.Build.OutputDir, "release")
	}
	if len(cfg.Build.PackageFormats) != 2 {
		t.Errorf("Default Build.PackageFormats = %v, want 2 formats", cfg.Build.PackageFormats)
	}
	if cfg.Signing.TimestampURL != "http://timestamp.sectigo.com" {
		t.Errorf("Default Signing.TimestampURL = %q", cfg.Signing.TimestampURL)
	}
	if cfg.Markers.Changelog != "CHANGELOG.md" {
		t.Errorf("Default Markers.Changelog = %q", cfg.Markers.Changelog)
	}
	if cfg.Verbose {
		t.Error("Default Verbose = true, want false")
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{}
	src.Build.Generator = "Unix Makefiles"
	src.Signing.Key = "/keys/release.pfx"

	result := merge(dst, src)

	if result.Build.Generator != "Unix Makefiles" {
		t.Errorf("merge Generator = %q, want %q", result.Build.Generator, "Unix Makefiles")
	}
	if result.Signing.Key != "/keys/release.pfx" {
		t.Errorf("merge Signing.Key = %q, want %q", result.Signing.Key, "/keys/release.pfx")
	}
	// Defaults should be preserved when not overridden
	if result.Git.TargetBranch != "master" {
		t.Errorf("merge preserved TargetBranch = %q, want %q", result.Git.TargetBranch, "master")
	}
	if result.Build.OutputDir != "release" {
		t.Errorf("merge preserved OutputDir = %q, want %q", result.Build.OutputDir, "release")
	}
}

func TestMerge_Lists(t *testing.T) {
	dst := Default()
	src := &Config{}
	src.Build.PackageFormats = []string{"DragNDrop"}

	result := merge(dst, src)

	if len(result.Build.PackageFormats) != 1 || result.Build.PackageFormats[0] != "DragNDrop" {
		t.Errorf("merge PackageFormats = %v, want [DragNDrop]", result.Build.PackageFormats)
	}
	// Empty source lists must not clobber defaults.
	if len(result.Translations.PullArgs) == 0 {
		t.Error("merge clobbered Translations.PullArgs with empty list")
	}
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("git:\n  target_branch: main\nbuild:\n  generator: Xcode\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RELKIT_CONFIG", path)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Git.TargetBranch != "main" {
		t.Errorf("Load Git.TargetBranch = %q, want %q", cfg.Git.TargetBranch, "main")
	}
	if cfg.Build.Generator != "Xcode" {
		t.Errorf("Load Build.Generator = %q, want %q", cfg.Build.Generator, "Xcode")
	}
}

func TestLoadEnvOverridesProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("build:\n  output_dir: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RELKIT_CONFIG", path)
	t.Setenv("RELKIT_OUTPUT_DIR", "from-env")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.OutputDir != "from-env" {
		t.Errorf("Load Build.OutputDir = %q, want env override", cfg.Build.OutputDir)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("RELKIT_GENERATOR", "from-env")

	overrides := &Config{}
	overrides.Build.Generator = "from-flag"

	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.Generator != "from-flag" {
		t.Errorf("Load Build.Generator = %q, want flag override", cfg.Build.Generator)
	}
}
