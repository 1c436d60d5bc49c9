package signing

import "fmt"

// KeyError reports a signing key file that does not exist.
type KeyError struct {
	Path string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("signing key file not found: %s", e.Path)
}
