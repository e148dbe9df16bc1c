package mock

import (
	"context"

	"github.com/fwojciec/instapdf"
)

var _ instapdf.Source = (*Source)(nil)

// Source is a mock implementation of instapdf.Source.
type Source struct {
	LoginFn        func(ctx context.Context, creds instapdf.Credentials) error
	ListArticlesFn func(ctx context.Context) ([]instapdf.ArticleListing, error)
	FetchArticleFn func(ctx context.Context, reference string) (string, error)
}

func (s *Source) Login(ctx context.Context, creds instapdf.Credentials) error {
	return s.LoginFn(ctx, creds)
}

func (s *Source) ListArticles(ctx context.Context) ([]instapdf.ArticleListing, error) {
	return s.ListArticlesFn(ctx)
}

func (s *Source) FetchArticle(ctx context.Context, reference string) (string, error) {
	return s.FetchArticleFn(ctx, reference)
}
