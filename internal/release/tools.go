package release

import "github.com/relkit/relkit/internal/execx"

// VerifyTools confirms every required external program resolves on the
// executable search path before any pipeline step runs. The first missing
// program yields *execx.MissingToolError.
func VerifyTools(r execx.Runner, tools []string) error {
	for _, tool := range tools {
		if _, err := r.LookPath(tool); err != nil {
			return err
		}
	}
	return nil
}
