package mock

import (
	"context"

	"github.com/fwojciec/instapdf"
)

var _ instapdf.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a mock implementation of instapdf.ArtifactStore.
type ArtifactStore struct {
	SaveArtifactFn func(ctx context.Context, id string, kind instapdf.ArtifactKind, content string) error
	SaveDocumentFn func(ctx context.Context, name string, content []byte) (string, error)
	CommitFn       func() error
	AbortFn        func() error
}

func (s *ArtifactStore) SaveArtifact(ctx context.Context, id string, kind instapdf.ArtifactKind, content string) error {
	return s.SaveArtifactFn(ctx, id, kind, content)
}

func (s *ArtifactStore) SaveDocument(ctx context.Context, name string, content []byte) (string, error) {
	return s.SaveDocumentFn(ctx, name, content)
}

func (s *ArtifactStore) Commit() error {
	return s.CommitFn()
}

func (s *ArtifactStore) Abort() error {
	return s.AbortFn()
}
