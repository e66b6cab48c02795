package integrity

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

func writeKeyring(t *testing.T, entity *openpgp.Entity, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor encode: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("serializing public key: %v", err)
	}
	w.Close()

	path := filepath.Join(dir, "keyring.asc")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing keyring: %v", err)
	}
	return path
}

func signedArtifact(t *testing.T) (artifact, sigPath, keyringPath string) {
	t.Helper()
	dir := t.TempDir()

	entity, err := openpgp.NewEntity("Upstream Release", "", "release@example.org", nil)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	content := []byte("toolchain release tarball")
	artifact = filepath.Join(dir, "hello-1.0.tar.gz")
	if err := os.WriteFile(artifact, content, 0644); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}

	var sig bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader(content), nil); err != nil {
		t.Fatalf("signing: %v", err)
	}
	sigPath = filepath.Join(dir, "hello-1.0.tar.gz.asc")
	if err := os.WriteFile(sigPath, sig.Bytes(), 0644); err != nil {
		t.Fatalf("writing signature: %v", err)
	}

	return artifact, sigPath, writeKeyring(t, entity, dir)
}

func TestVerifyDetachedSignature(t *testing.T) {
	artifact, sigPath, keyringPath := signedArtifact(t)

	if err := VerifyDetachedSignature(artifact, sigPath, keyringPath); err != nil {
		t.Errorf("valid signature should verify: %v", err)
	}
}

func TestVerifyDetachedSignatureTamperedContent(t *testing.T) {
	artifact, sigPath, keyringPath := signedArtifact(t)

	if err := os.WriteFile(artifact, []byte("tampered"), 0644); err != nil {
		t.Fatalf("tampering artifact: %v", err)
	}
	if err := VerifyDetachedSignature(artifact, sigPath, keyringPath); err == nil {
		t.Error("tampered artifact should fail signature verification")
	}
}

func TestVerifyDetachedSignatureWrongKey(t *testing.T) {
	artifact, sigPath, _ := signedArtifact(t)

	other, err := openpgp.NewEntity("Someone Else", "", "other@example.org", nil)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	wrongKeyring := writeKeyring(t, other, t.TempDir())

	if err := VerifyDetachedSignature(artifact, sigPath, wrongKeyring); err == nil {
		t.Error("signature from a different key should fail verification")
	}
}

func TestVerifyDetachedSignatureMissingKeyring(t *testing.T) {
	artifact, sigPath, _ := signedArtifact(t)

	err := VerifyDetachedSignature(artifact, sigPath, filepath.Join(t.TempDir(), "nope.asc"))
	if err == nil {
		t.Error("missing keyring should fail")
	}
}
