package instapdf

import "context"

// ArtifactKind identifies a per-article debug file.
type ArtifactKind string

// ArtifactKind values.
const (
	// ArtifactRaw is the article page markup as fetched.
	ArtifactRaw ArtifactKind = "raw"

	// ArtifactBody is the extracted body fragment.
	ArtifactBody ArtifactKind = "body"

	// ArtifactStandalone is the single-article document.
	ArtifactStandalone ArtifactKind = "standalone"
)

// FileName returns the artifact file name for article id.
func (k ArtifactKind) FileName(id string) string {
	switch k {
	case ArtifactBody:
		return id + "-main.html"
	case ArtifactStandalone:
		return id + "-standalone.html"
	default:
		return id + ".html"
	}
}

// ArtifactStore persists run outputs. Artifacts are staged until Commit
// makes them visible; Abort discards them. Documents are written directly.
type ArtifactStore interface {
	// SaveArtifact writes a per-article debug file.
	// Returns EINVALID if id is not safe for use as a path component.
	SaveArtifact(ctx context.Context, id string, kind ArtifactKind, content string) error

	// SaveDocument writes an aggregate output file and returns its path.
	// Returns EINVALID if name is not a plain file name.
	SaveDocument(ctx context.Context, name string, content []byte) (string, error)

	// Commit publishes staged artifacts, replacing those of an earlier run.
	Commit() error

	// Abort discards staged artifacts.
	Abort() error
}
