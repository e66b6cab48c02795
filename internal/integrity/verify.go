package integrity

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MismatchError reports that a file's content does not hash to the
// digest declared for it. It is distinct from I/O failures: an
// unreadable file never produces a MismatchError.
type MismatchError struct {
	Path     string
	Expected Digest
	Actual   Digest
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("digest mismatch for %s: expected %s, got %s",
		filepath.Base(e.Path), e.Expected, e.Actual)
}

// FileDigest streams the file at path through SHA-256.
func FileDigest(path string) (Digest, error) {
	var d Digest

	f, err := os.Open(path)
	if err != nil {
		return d, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return d, fmt.Errorf("reading %s: %w", path, err)
	}

	copy(d[:], h.Sum(nil))
	return d, nil
}

// VerifyFile is the source integrity gate: it recomputes the digest of
// the file at path and compares it against expected. A nil return means
// the caller may proceed to unpack and build. Any mismatch, including
// truncated or substituted content, returns a *MismatchError.
func VerifyFile(path string, expected Digest) error {
	actual, err := FileDigest(path)
	if err != nil {
		return err
	}
	if !actual.Equal(expected) {
		return &MismatchError{Path: path, Expected: expected, Actual: actual}
	}
	return nil
}
