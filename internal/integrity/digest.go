package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Digest is a validated SHA-256 digest. Holding the raw bytes instead
// of a hex string means a malformed-length digest can never compare
// equal to anything: it fails at parse time.
type Digest [sha256.Size]byte

// hexLen is the exact number of hex characters in a rendered digest.
const hexLen = sha256.Size * 2

// ParseDigest parses a hex-encoded SHA-256 digest. Case is normalized;
// any other deviation (wrong length, non-hex characters) is an error.
// A 65-character literal is rejected here rather than silently trimmed.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != hexLen {
		return d, fmt.Errorf("invalid digest %q: got %d hex characters, want %d", s, len(s), hexLen)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	copy(d[:], raw)
	return d, nil
}

// String renders the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Equal reports whether two digests are identical.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool {
	return d == Digest{}
}
