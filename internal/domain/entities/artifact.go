package entities

import "time"

// Artifact represents a file produced by the pipeline or one of its tools.
type Artifact struct {
	Name string
	Path string
	Kind string // "report", "model", "dataset", "sbom", "archive"
}

// ArchiveEntry describes one file captured into the build archive.
type ArchiveEntry struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
}

// ArchiveManifest describes the contents of a build archive. Archiving is
// best-effort: paths from the fixed artifact set that did not exist at
// collection time are listed under Missing rather than failing the run.
type ArchiveManifest struct {
	RunID     string         `json:"run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Archive   string         `json:"archive"`
	Entries   []ArchiveEntry `json:"entries"`
	Missing   []string       `json:"missing,omitempty"`
}

// FileDigest pairs a file path with its SHA-256 digest.
type FileDigest struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// IntegrityManifest records digests of the training inputs and outputs so a
// later verify step can detect tampering.
type IntegrityManifest struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Files       []FileDigest `json:"files"`
}
