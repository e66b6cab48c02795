package integrity

import (
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// VerifyDetachedSignature checks an armored detached OpenPGP signature
// over the artifact at path, using the armored keyring at keyringPath.
// It complements the digest gate for upstreams that publish .asc files
// alongside their release tarballs.
func VerifyDetachedSignature(path, sigPath, keyringPath string) error {
	keyFile, err := os.Open(keyringPath)
	if err != nil {
		return fmt.Errorf("opening keyring %s: %w", keyringPath, err)
	}
	defer keyFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		return fmt.Errorf("reading keyring %s: %w", keyringPath, err)
	}

	signed, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer signed.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("opening signature %s: %w", sigPath, err)
	}
	defer sig.Close()

	if _, err := openpgp.CheckArmoredDetachedSignature(keyring, signed, sig, nil); err != nil {
		return fmt.Errorf("signature verification failed for %s: %w", path, err)
	}
	return nil
}
