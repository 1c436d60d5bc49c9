package signing

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// TerminalPassword reads a password from the controlling terminal without
// echoing it.
type TerminalPassword struct{}

// ReadPassword prompts on stderr and reads without echo.
func (TerminalPassword) ReadPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// StaticPassword returns a fixed password. Used by tests and unattended runs
// where the password arrives through the environment.
type StaticPassword string

func (s StaticPassword) ReadPassword(string) (string, error) { return string(s), nil }
