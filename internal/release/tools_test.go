package release

import (
	"errors"
	"testing"

	"github.com/relkit/relkit/internal/execx"
)

func TestVerifyToolsAllPresent(t *testing.T) {
	rec := &execx.Recorder{}
	if err := VerifyTools(rec, []string{"git", "cmake", "gpg"}); err != nil {
		t.Errorf("VerifyTools() error = %v, want nil", err)
	}
}

func TestVerifyToolsMissing(t *testing.T) {
	rec := &execx.Recorder{MissingTools: []string{"signtool"}}

	err := VerifyTools(rec, []string{"git", "signtool", "cmake"})
	var missing *execx.MissingToolError
	if !errors.As(err, &missing) {
		t.Fatalf("VerifyTools() error = %v, want *MissingToolError", err)
	}
	if missing.Tool != "signtool" {
		t.Errorf("MissingToolError.Tool = %q, want signtool", missing.Tool)
	}
}
