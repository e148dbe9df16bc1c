package mock

import (
	"context"

	"github.com/fwojciec/instapdf"
)

var _ instapdf.RunService = (*RunService)(nil)

// RunService is a mock implementation of instapdf.RunService.
type RunService struct {
	CreateRunFn        func(ctx context.Context, run *instapdf.Run) error
	FinishRunFn        func(ctx context.Context, id string, upd instapdf.RunUpdate) (*instapdf.Run, error)
	CreateRunArticleFn func(ctx context.Context, article *instapdf.RunArticle) error
	FindRunByIDFn      func(ctx context.Context, id string) (*instapdf.Run, error)
	FindRunsFn         func(ctx context.Context, filter instapdf.RunFilter) ([]*instapdf.Run, error)
	FindRunArticlesFn  func(ctx context.Context, runID string) ([]*instapdf.RunArticle, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *instapdf.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FinishRun(ctx context.Context, id string, upd instapdf.RunUpdate) (*instapdf.Run, error) {
	return s.FinishRunFn(ctx, id, upd)
}

func (s *RunService) CreateRunArticle(ctx context.Context, article *instapdf.RunArticle) error {
	return s.CreateRunArticleFn(ctx, article)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*instapdf.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter instapdf.RunFilter) ([]*instapdf.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) FindRunArticles(ctx context.Context, runID string) ([]*instapdf.RunArticle, error) {
	return s.FindRunArticlesFn(ctx, runID)
}
