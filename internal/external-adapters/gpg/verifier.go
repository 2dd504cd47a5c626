// Package gpg provides GPG signature verification capabilities.
package gpg

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Verifier checks detached GPG signatures over trained artifacts using
// ProtonMail's go-crypto, a maintained fork of golang.org/x/crypto/openpgp.
// This is in external-adapters to isolate the external dependency.
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier with an empty keyring.
func NewVerifier() *Verifier {
	return &Verifier{keyring: make(openpgp.EntityList, 0)}
}

// NewVerifierWithKeyring creates a verifier over an existing keyring.
func NewVerifierWithKeyring(keyring openpgp.EntityList) *Verifier {
	return &Verifier{keyring: keyring}
}

// LoadKeyringFile imports keys from a local keyring file, armored or binary.
func (v *Verifier) LoadKeyringFile(path string) error {
	//nolint:gosec // G304: keyring path is operator-provided
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read keyring: %w", err)
	}

	keys, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		keys, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to parse keyring: %w", err)
		}
	}
	if len(keys) == 0 {
		return fmt.Errorf("keyring %s contains no keys", path)
	}

	v.keyring = append(v.keyring, keys...)
	return nil
}

// VerifyDetached checks a detached signature over the artifact. Armored
// signatures are tried first, then binary.
func (v *Verifier) VerifyDetached(artifactPath, sigPath string) error {
	if len(v.keyring) == 0 {
		return fmt.Errorf("no keys loaded")
	}

	//nolint:gosec // G304: artifact path is operator-provided
	artifact, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	//nolint:gosec // G304: signature path is operator-provided
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}

	_, armoredErr := openpgp.CheckArmoredDetachedSignature(
		v.keyring, bytes.NewReader(artifact), bytes.NewReader(sig), nil)
	if armoredErr == nil {
		return nil
	}

	_, binaryErr := openpgp.CheckDetachedSignature(
		v.keyring, bytes.NewReader(artifact), bytes.NewReader(sig), nil)
	if binaryErr == nil {
		return nil
	}

	return fmt.Errorf("signature verification failed: %w", armoredErr)
}
