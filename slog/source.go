// Package slog provides logging decorators for instapdf services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/instapdf"
)

// Ensure LoggingSource implements instapdf.Source.
var _ instapdf.Source = (*LoggingSource)(nil)

// LoggingSource wraps a Source with logging of each call.
// Passwords are never logged.
type LoggingSource struct {
	next   instapdf.Source
	logger *slog.Logger
}

// NewLoggingSource creates a new LoggingSource.
func NewLoggingSource(next instapdf.Source, logger *slog.Logger) *LoggingSource {
	return &LoggingSource{next: next, logger: logger}
}

// Login logs the username and outcome and delegates to the wrapped source.
func (s *LoggingSource) Login(ctx context.Context, creds instapdf.Credentials) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("login",
			"username", creds.Username,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Login(ctx, creds)
}

// ListArticles logs the number of listings returned.
func (s *LoggingSource) ListArticles(ctx context.Context) (listings []instapdf.ArticleListing, err error) {
	defer func(begin time.Time) {
		s.logger.Info("list articles",
			"count", len(listings),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ListArticles(ctx)
}

// FetchArticle logs the reference being fetched.
func (s *LoggingSource) FetchArticle(ctx context.Context, reference string) (html string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("fetch article",
			"reference", reference,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchArticle(ctx, reference)
}
