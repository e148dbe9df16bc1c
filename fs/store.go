// Package fs writes run outputs to the local filesystem.
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/instapdf"
)

// ArticlesDir is the directory under the output root holding per-article
// artifacts.
const ArticlesDir = "articles"

// Ensure Store implements instapdf.ArtifactStore at compile time.
var _ instapdf.ArtifactStore = (*Store)(nil)

// Store writes aggregate documents to an output directory and stages
// per-article artifacts in a temporary directory until Commit.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
// Artifacts are saved to dir/articles.tmp and moved to dir/articles on Commit.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the output root.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) tempDir() string {
	return filepath.Join(s.dir, ArticlesDir+".tmp")
}

func (s *Store) finalDir() string {
	return filepath.Join(s.dir, ArticlesDir)
}

// SaveArtifact writes one per-article debug file to the staging directory.
func (s *Store) SaveArtifact(ctx context.Context, id string, kind instapdf.ArtifactKind, content string) error {
	if !instapdf.IsSafeID(id) {
		return instapdf.Errorf(instapdf.EINVALID, "artifact id %q is not a safe file name", id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.tempDir(), kind.FileName(id)), []byte(content), 0644)
}

// SaveDocument writes content to dir/name through a temporary file and a
// rename, so a reader never sees a partial document.
func (s *Store) SaveDocument(ctx context.Context, name string, content []byte) (string, error) {
	if !isPlainFileName(name) {
		return "", instapdf.Errorf(instapdf.EINVALID, "document name %q is not a plain file name", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, nil
}

// Commit replaces the published artifacts with the staged ones. It is a
// no-op when nothing was staged.
func (s *Store) Commit() error {
	if _, err := os.Stat(s.tempDir()); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort removes the staging directory.
func (s *Store) Abort() error {
	return os.RemoveAll(s.tempDir())
}

func isPlainFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}
