package mock

import (
	"context"

	"github.com/fwojciec/instapdf"
)

var _ instapdf.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of instapdf.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, html string, opts instapdf.RenderOptions) ([]byte, error)
	CloseFn  func() error
}

func (r *Renderer) Render(ctx context.Context, html string, opts instapdf.RenderOptions) ([]byte, error) {
	return r.RenderFn(ctx, html, opts)
}

func (r *Renderer) Close() error {
	return r.CloseFn()
}

var _ instapdf.QREncoder = (*QREncoder)(nil)

// QREncoder is a mock implementation of instapdf.QREncoder.
type QREncoder struct {
	EncodeFn func(url string) ([]byte, error)
}

func (e *QREncoder) Encode(url string) ([]byte, error) {
	return e.EncodeFn(url)
}
