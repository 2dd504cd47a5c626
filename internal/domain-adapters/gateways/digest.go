package gateways

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FileDigester computes and checks SHA-256 digests in pure Go, with no
// external sha256sum binary.
type FileDigester struct{}

// NewFileDigester creates a new digester.
func NewFileDigester() *FileDigester {
	return &FileDigester{}
}

// Digest returns the hex-encoded SHA-256 of the file at path.
func (d *FileDigester) Digest(path string) (string, error) {
	//nolint:gosec // G304: paths come from the pipeline's artifact set
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify compares the file's digest against an expected hex value.
func (d *FileDigester) Verify(path, expected string) error {
	actual, err := d.Digest(path)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}
