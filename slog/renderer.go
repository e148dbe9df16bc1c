package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/instapdf"
)

// Ensure LoggingRenderer implements instapdf.Renderer.
var _ instapdf.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with logging.
type LoggingRenderer struct {
	next   instapdf.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next instapdf.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render logs input and output sizes and delegates to the wrapped renderer.
func (r *LoggingRenderer) Render(ctx context.Context, html string, opts instapdf.RenderOptions) (pdf []byte, err error) {
	defer func(begin time.Time) {
		r.logger.Info("render",
			"html_bytes", len(html),
			"pdf_bytes", len(pdf),
			"page_size", opts.PageSize,
			"orientation", opts.Orientation,
			"scripts", !opts.DisableScripts,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Render(ctx, html, opts)
}

// Close delegates to the wrapped renderer.
func (r *LoggingRenderer) Close() error {
	return r.next.Close()
}
