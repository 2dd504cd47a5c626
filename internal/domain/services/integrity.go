package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trainpipe/internal/domain/entities"
)

// Digester computes and checks file digests.
type Digester interface {
	Digest(path string) (string, error)
	Verify(path, expected string) error
}

// IntegrityService builds and checks the integrity manifest that records
// SHA-256 digests of the training inputs and outputs.
type IntegrityService struct {
	digester Digester
}

// NewIntegrityService creates a new integrity service.
func NewIntegrityService(digester Digester) *IntegrityService {
	return &IntegrityService{digester: digester}
}

// BuildManifest digests each existing path. Paths that do not exist are
// skipped: the manifest covers what the run actually produced.
func (s *IntegrityService) BuildManifest(paths []string) (*entities.IntegrityManifest, error) {
	manifest := &entities.IntegrityManifest{GeneratedAt: time.Now().UTC()}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		sum, err := s.digester.Digest(p)
		if err != nil {
			return nil, fmt.Errorf("failed to digest %s: %w", p, err)
		}
		manifest.Files = append(manifest.Files, entities.FileDigest{Path: p, SHA256: sum})
	}

	return manifest, nil
}

// WriteManifest serializes a manifest as indented JSON.
func (s *IntegrityService) WriteManifest(manifest *entities.IntegrityManifest, path string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// VerifyManifest re-digests every file listed in the manifest at path and
// reports the first mismatch or missing file.
func (s *IntegrityService) VerifyManifest(path string) (*entities.IntegrityManifest, error) {
	//nolint:gosec // G304: manifest path is operator-provided
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest entities.IntegrityManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	for _, f := range manifest.Files {
		if err := s.digester.Verify(f.Path, f.SHA256); err != nil {
			return &manifest, fmt.Errorf("integrity check failed for %s: %w", f.Path, err)
		}
	}

	return &manifest, nil
}
