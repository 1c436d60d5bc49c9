package execx

import (
	"context"
	"strings"
)

// Recorder is a Runner double that records invocations instead of spawning
// processes. Pipelines are tested against it.
type Recorder struct {
	// Invocations holds every Run call in order.
	Invocations []Invocation

	// Outputs maps "program arg arg..." to a scripted Output result.
	Outputs map[string]string

	// Fail maps "program arg arg..." to a forced failure for that call.
	Fail map[string]error

	// Seq maps "program arg arg..." to per-call results consumed in order.
	// A nil entry means success for that call. Seq wins over Fail.
	Seq map[string][]error

	// MissingTools lists program names LookPath reports as unresolvable.
	MissingTools []string
}

func key(inv Invocation) string {
	if len(inv.Args) == 0 {
		return inv.Program
	}
	return inv.Program + " " + strings.Join(inv.Args, " ")
}

// Run records the invocation and returns a scripted failure, if any.
func (r *Recorder) Run(_ context.Context, inv Invocation) error {
	r.Invocations = append(r.Invocations, inv)
	if seq, ok := r.Seq[key(inv)]; ok && len(seq) > 0 {
		err := seq[0]
		r.Seq[key(inv)] = seq[1:]
		return err
	}
	if err, ok := r.Fail[key(inv)]; ok {
		return err
	}
	return nil
}

// Output returns the scripted output for the invocation, or empty string.
func (r *Recorder) Output(_ context.Context, inv Invocation) (string, error) {
	if err, ok := r.Fail[key(inv)]; ok {
		return "", err
	}
	return r.Outputs[key(inv)], nil
}

// LookPath resolves every program except those listed as missing.
func (r *Recorder) LookPath(program string) (string, error) {
	for _, missing := range r.MissingTools {
		if missing == program {
			return "", &MissingToolError{Tool: program}
		}
	}
	return program, nil
}

// Ran reports whether any recorded invocation used the given program.
func (r *Recorder) Ran(program string) bool {
	for _, inv := range r.Invocations {
		if inv.Program == program {
			return true
		}
	}
	return false
}
