package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/execx"
	"github.com/relkit/relkit/internal/release"
	"github.com/relkit/relkit/internal/signing"
	"github.com/relkit/relkit/internal/toolchain"
)

// buildFixture lays out a repository and a toolchain root with one install.
func buildFixture(t *testing.T) (string, *config.Config) {
	t.Helper()
	repo := t.TempDir()

	tcRoot := t.TempDir()
	tcDir := filepath.Join(tcRoot, "msvc2022")
	if err := os.MkdirAll(tcDir, 0o755); err != nil {
		t.Fatal(err)
	}
	desc := "name: msvc2022\nenv:\n  VSCMD_ARG_TGT_ARCH: x64\ntools:\n  signtool: bin/signtool.exe\n"
	if err := os.WriteFile(filepath.Join(tcDir, "toolchain.yaml"), []byte(desc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Toolchains.SearchPaths = []string{tcRoot}
	return repo, cfg
}

type fixedSelector struct{ index int }

func (f *fixedSelector) Pick(int) (int, error) { return f.index, nil }

func buildEnv(cfg *config.Config, rec *execx.Recorder) *Env {
	return &Env{
		Runner:   rec,
		Cfg:      cfg,
		Out:      &bytes.Buffer{},
		Selector: &fixedSelector{index: 1},
		Password: signing.StaticPassword("hunter2"),
	}
}

func TestBuildReleaseFlow(t *testing.T) {
	chdirRestore(t)
	repo, cfg := buildFixture(t)

	rec := &execx.Recorder{
		Outputs: map[string]string{"git rev-parse --abbrev-ref HEAD": "master"},
	}

	v, err := release.Parse("1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	if err := Build(context.Background(), buildEnv(cfg, rec), BuildParams{Version: v, RepoDir: repo}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	lines := invocationLines(rec)
	wantOrder := []string{
		"git checkout 1.2.3",
		"cmake -S",
		"cmake --build",
		"cpack -G ZIP",
		"cpack -G WIX",
		"git checkout master",
	}
	idx := 0
	for _, line := range lines {
		if idx < len(wantOrder) && strings.HasPrefix(line, wantOrder[idx]) {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Errorf("build pipeline order wrong after %q:\n%s", wantOrder[idx], strings.Join(lines, "\n"))
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "cmake -S") {
			if !strings.Contains(line, "-DCMAKE_BUILD_TYPE=Release") {
				t.Errorf("configure args = %q, want Release build type", line)
			}
			if !strings.Contains(line, "-G Ninja") {
				t.Errorf("configure args = %q, want default generator", line)
			}
		}
	}

	if _, err := os.Stat(filepath.Join(repo, "build-release")); err != nil {
		t.Errorf("build directory not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(repo, "release")); err != nil {
		t.Errorf("output directory not created: %v", err)
	}
}

func TestBuildPreReleaseType(t *testing.T) {
	chdirRestore(t)
	repo, cfg := buildFixture(t)

	rec := &execx.Recorder{
		Outputs: map[string]string{"git rev-parse --abbrev-ref HEAD": "master"},
	}

	v, _ := release.Parse("2.0.0-beta1")
	if err := Build(context.Background(), buildEnv(cfg, rec), BuildParams{Version: v, RepoDir: repo}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var sawPreRelease bool
	for _, line := range invocationLines(rec) {
		if strings.Contains(line, "-DCMAKE_BUILD_TYPE=PreRelease") {
			sawPreRelease = true
		}
	}
	if !sawPreRelease {
		t.Error("beta version did not configure a PreRelease build")
	}
}

func TestBuildSnapshotSkipsCheckout(t *testing.T) {
	chdirRestore(t)
	repo, cfg := buildFixture(t)

	rec := &execx.Recorder{
		Outputs: map[string]string{"git rev-parse --abbrev-ref HEAD": "develop"},
		// A snapshot build must tolerate a dirty tree.
		Fail: map[string]error{"git diff-index --quiet HEAD --": errors.New("exit 1")},
	}

	v, _ := release.Parse("1.4.0")
	if err := Build(context.Background(), buildEnv(cfg, rec), BuildParams{Version: v, RepoDir: repo, Snapshot: true}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, line := range invocationLines(rec) {
		if line == "git checkout 1.4.0" {
			t.Error("snapshot build checked out the release tag")
		}
	}

	var sawSnapshotName bool
	for _, line := range invocationLines(rec) {
		if strings.Contains(line, "-DRELEASE_NAME=1.4.0-snapshot") {
			sawSnapshotName = true
		}
	}
	if !sawSnapshotName {
		t.Error("snapshot build did not use the -snapshot release name")
	}
}

func TestBuildDirtyTreeRejected(t *testing.T) {
	chdirRestore(t)
	repo, cfg := buildFixture(t)

	rec := &execx.Recorder{
		Outputs: map[string]string{"git rev-parse --abbrev-ref HEAD": "master"},
		Fail:    map[string]error{"git diff-index --quiet HEAD --": errors.New("exit 1")},
	}

	v, _ := release.Parse("1.2.3")
	err := Build(context.Background(), buildEnv(cfg, rec), BuildParams{Version: v, RepoDir: repo})
	if err == nil {
		t.Fatal("Build() error = nil, want dirty-tree failure")
	}

	for _, line := range invocationLines(rec) {
		if strings.HasPrefix(line, "cmake") {
			t.Errorf("build ran %q on a dirty tree", line)
		}
	}
}

func TestBuildFailureStillRestores(t *testing.T) {
	chdirRestore(t)
	repo, cfg := buildFixture(t)

	rec := &execx.Recorder{
		Outputs: map[string]string{"git rev-parse --abbrev-ref HEAD": "master"},
	}
	// Compile fails.
	buildDir := filepath.Join(repo, "build-release")
	rec.Fail = map[string]error{"cmake --build " + buildDir: errors.New("exit 2")}

	v, _ := release.Parse("1.2.3")
	if err := Build(context.Background(), buildEnv(cfg, rec), BuildParams{Version: v, RepoDir: repo}); err == nil {
		t.Fatal("Build() error = nil, want compile failure")
	}

	lines := invocationLines(rec)
	last := lines[len(lines)-1]
	if last != "git checkout master" {
		t.Errorf("last invocation = %q, want restore checkout", last)
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "cpack") {
			t.Errorf("build packaged after a failed compile: %q", line)
		}
	}
}

func TestBuildSuccessAlsoRestores(t *testing.T) {
	chdirRestore(t)
	repo, cfg := buildFixture(t)

	rec := &execx.Recorder{
		Outputs: map[string]string{"git rev-parse --abbrev-ref HEAD": "master"},
	}

	v, _ := release.Parse("1.2.3")
	if err := Build(context.Background(), buildEnv(cfg, rec), BuildParams{Version: v, RepoDir: repo}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	lines := invocationLines(rec)
	last := lines[len(lines)-1]
	if last != "git checkout master" {
		t.Errorf("last invocation = %q, want unconditional restore checkout", last)
	}
}

func TestBuildSignMissingSigningToolFailsBeforeConfigure(t *testing.T) {
	chdirRestore(t)
	repo, cfg := buildFixture(t)
	signtool := filepath.Join(cfg.Toolchains.SearchPaths[0], "msvc2022", "bin", "signtool.exe")

	rec := &execx.Recorder{
		Outputs:      map[string]string{"git rev-parse --abbrev-ref HEAD": "master"},
		MissingTools: []string{signtool},
	}

	v, _ := release.Parse("1.2.3")
	err := Build(context.Background(), buildEnv(cfg, rec), BuildParams{Version: v, RepoDir: repo, Sign: true})
	var missing *execx.MissingToolError
	if !errors.As(err, &missing) {
		t.Fatalf("Build() error = %v, want *MissingToolError", err)
	}
	if len(rec.Invocations) != 0 {
		t.Errorf("build ran %d invocations despite a missing signing tool", len(rec.Invocations))
	}
}

func TestBuildAppliesToolchainEnv(t *testing.T) {
	chdirRestore(t)
	repo, cfg := buildFixture(t)

	rec := &execx.Recorder{
		Outputs: map[string]string{"git rev-parse --abbrev-ref HEAD": "master"},
	}

	v, _ := release.Parse("1.2.3")
	if err := Build(context.Background(), buildEnv(cfg, rec), BuildParams{Version: v, RepoDir: repo}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var sawConfigure bool
	for _, inv := range rec.Invocations {
		if inv.Program != "cmake" {
			continue
		}
		sawConfigure = true
		if inv.Env["VSCMD_ARG_TGT_ARCH"] != "x64" {
			t.Errorf("cmake invocation env = %v, want toolchain descriptor env applied", inv.Env)
		}
	}
	if !sawConfigure {
		t.Fatal("build never invoked cmake")
	}
}

func TestBuildNoToolchain(t *testing.T) {
	chdirRestore(t)
	repo, _ := buildFixture(t)

	cfg := config.Default()
	cfg.Toolchains.SearchPaths = []string{t.TempDir()} // empty root

	rec := &execx.Recorder{}
	v, _ := release.Parse("1.2.3")
	err := Build(context.Background(), buildEnv(cfg, rec), BuildParams{Version: v, RepoDir: repo})
	if !errors.Is(err, toolchain.ErrNoToolchain) {
		t.Errorf("Build() error = %v, want ErrNoToolchain", err)
	}
	if len(rec.Invocations) != 0 {
		t.Errorf("build ran %d invocations with no toolchain", len(rec.Invocations))
	}
}
