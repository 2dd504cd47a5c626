package gateways

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"trainpipe/internal/domain/entities"
	"trainpipe/internal/domain/interfaces"
)

// Archiver collects pipeline outputs into a tar.gz build archive with a
// JSON manifest. Missing paths are tolerated and recorded, never fatal.
type Archiver struct {
	digester *FileDigester
	log      interfaces.Logger
}

// NewArchiver creates an archiver.
func NewArchiver(digester *FileDigester, log interfaces.Logger) *Archiver {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &Archiver{digester: digester, log: log}
}

// Collect gathers the given paths (relative to workdir) into
// outDir/trainpipe-<runID>.tar.gz and writes the manifest alongside it.
func (a *Archiver) Collect(workdir, runID string, paths []string, outDir string) (*entities.ArchiveManifest, error) {
	manifest := &entities.ArchiveManifest{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
	}

	var files []string
	for _, rel := range paths {
		abs := filepath.Join(workdir, rel)
		info, err := os.Stat(abs)
		if err != nil {
			manifest.Missing = append(manifest.Missing, rel)
			continue
		}
		if info.IsDir() {
			walked, err := a.walkDir(workdir, rel)
			if err != nil {
				return nil, err
			}
			if len(walked) == 0 {
				manifest.Missing = append(manifest.Missing, rel)
				continue
			}
			files = append(files, walked...)
			continue
		}
		files = append(files, rel)
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	tarballPath := filepath.Join(outDir, fmt.Sprintf("trainpipe-%s.tar.gz", runID))
	manifest.Archive = tarballPath

	if err := a.createTarball(workdir, files, tarballPath); err != nil {
		return nil, err
	}

	for _, rel := range files {
		abs := filepath.Join(workdir, rel)
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", rel, err)
		}
		sum, err := a.digester.Digest(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to digest %s: %w", rel, err)
		}
		manifest.Entries = append(manifest.Entries, entities.ArchiveEntry{
			Path:      rel,
			SizeBytes: info.Size(),
			SHA256:    sum,
		})
	}

	if err := a.writeManifest(manifest, filepath.Join(outDir, "manifest.json")); err != nil {
		return nil, err
	}

	a.log.Info("artifacts archived",
		interfaces.F("archive", tarballPath),
		interfaces.F("files", len(manifest.Entries)),
		interfaces.F("missing", len(manifest.Missing)))
	return manifest, nil
}

// walkDir lists the regular files under workdir/rel, as workdir-relative
// paths in lexical order. Symlinks are not followed.
func (a *Archiver) walkDir(workdir, rel string) ([]string, error) {
	var files []string
	root := filepath.Join(workdir, rel)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		relPath, err := filepath.Rel(workdir, path)
		if err != nil {
			return err
		}
		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", rel, err)
	}

	return files, nil
}

// createTarball writes the given workdir-relative files into a gzipped tar
// archive, preserving their relative paths.
func (a *Archiver) createTarball(workdir string, files []string, tarballPath string) error {
	//nolint:gosec // G304: tarballPath is constructed for archive output
	out, err := os.Create(tarballPath)
	if err != nil {
		return fmt.Errorf("failed to create tarball file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer out.Close()

	gzWriter := gzip.NewWriter(out)
	tarWriter := tar.NewWriter(gzWriter)

	for _, rel := range files {
		if err := a.addFile(tarWriter, workdir, rel); err != nil {
			return err
		}
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize tar: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize gzip: %w", err)
	}
	return nil
}

func (a *Archiver) addFile(tw *tar.Writer, workdir, rel string) error {
	abs := filepath.Join(workdir, rel)
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", rel, err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", rel, err)
	}
	header.Name = filepath.ToSlash(rel)

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", rel, err)
	}

	//nolint:gosec // G304: paths come from the pipeline's artifact set
	f, err := os.Open(abs)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to archive %s: %w", rel, err)
	}
	return nil
}

func (a *Archiver) writeManifest(manifest *entities.ArchiveManifest, path string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
