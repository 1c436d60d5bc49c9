package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteDigest writes <file>.DIGEST containing the SHA-256 of the file's
// content followed by " *<basename>". The single line carries no trailing
// newline; downstream verification tooling depends on the exact format.
func WriteDigest(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}

	line := fmt.Sprintf("%s *%s", hex.EncodeToString(h.Sum(nil)), filepath.Base(path))
	return os.WriteFile(path+".DIGEST", []byte(line), 0o644)
}
