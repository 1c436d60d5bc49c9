package gitx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/relkit/relkit/internal/execx"
)

func TestCurrentBranch(t *testing.T) {
	rec := &execx.Recorder{Outputs: map[string]string{
		"git rev-parse --abbrev-ref HEAD": "release/1.2.3",
	}}
	c := New(rec, "/repo")

	got, err := c.CurrentBranch(context.Background())
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if got != "release/1.2.3" {
		t.Errorf("CurrentBranch() = %q, want %q", got, "release/1.2.3")
	}
}

func TestVerifyCleanDirty(t *testing.T) {
	rec := &execx.Recorder{Fail: map[string]error{
		"git diff-index --quiet HEAD --": errors.New("exit 1"),
	}}
	c := New(rec, "/repo")

	if err := c.VerifyClean(context.Background()); !errors.Is(err, ErrDirtyTree) {
		t.Errorf("VerifyClean() error = %v, want ErrDirtyTree", err)
	}
	if !c.HasChanges(context.Background()) {
		t.Error("HasChanges() = false, want true for a dirty tree")
	}
}

func TestVerifyCleanClean(t *testing.T) {
	rec := &execx.Recorder{}
	c := New(rec, "/repo")

	if err := c.VerifyClean(context.Background()); err != nil {
		t.Errorf("VerifyClean() error = %v, want nil", err)
	}
	if c.HasChanges(context.Background()) {
		t.Error("HasChanges() = true, want false for a clean tree")
	}
}

func TestMergeSignedInvocation(t *testing.T) {
	rec := &execx.Recorder{}
	c := New(rec, "/repo")

	msg := "Release 1.2.3\n\n- Fixed things\n"
	if err := c.Merge(context.Background(), "release/1.2.3", msg); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	if len(rec.Invocations) != 1 {
		t.Fatalf("recorded %d invocations, want 1", len(rec.Invocations))
	}
	args := strings.Join(rec.Invocations[0].Args, " ")
	for _, want := range []string{"merge", "--no-ff", "-S", "release/1.2.3"} {
		if !strings.Contains(args, want) {
			t.Errorf("Merge() args = %q, missing %q", args, want)
		}
	}
}

func TestTagSignedAnnotated(t *testing.T) {
	rec := &execx.Recorder{}
	c := New(rec, "/repo")

	if err := c.Tag(context.Background(), "1.2.3", "Release 1.2.3"); err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	args := strings.Join(rec.Invocations[0].Args, " ")
	for _, want := range []string{"tag", "-s", "-a", "1.2.3"} {
		if !strings.Contains(args, want) {
			t.Errorf("Tag() args = %q, missing %q", args, want)
		}
	}
}

func TestCommandsRunInRepoDir(t *testing.T) {
	rec := &execx.Recorder{}
	c := New(rec, "/some/repo")

	_ = c.Checkout(context.Background(), "master")
	_ = c.Add(context.Background(), "share/translations")
	_ = c.Commit(context.Background(), "Update translations")

	for _, inv := range rec.Invocations {
		if inv.Dir != "/some/repo" {
			t.Errorf("invocation %v ran in %q, want /some/repo", inv.Args, inv.Dir)
		}
	}
}
