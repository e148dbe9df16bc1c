// Package rod renders HTML documents to PDF with headless Chrome.
package rod

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/fwojciec/instapdf"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// mmPerInch converts margins to the unit Chrome expects.
const mmPerInch = 25.4

// Ensure Renderer implements instapdf.Renderer at compile time.
var _ instapdf.Renderer = (*Renderer)(nil)

// Renderer prints HTML documents through a headless Chrome browser.
// Close must be called when the Renderer is no longer needed.
type Renderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	bin      string
	closed   atomic.Bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBrowserBin sets the Chrome executable. By default rod looks up a
// local installation or downloads one.
func WithBrowserBin(path string) Option {
	return func(r *Renderer) {
		r.bin = path
	}
}

// NewRenderer launches a headless Chrome browser.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}

	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	r.browser = browser
	r.launcher = l
	return r, nil
}

// Render loads html into a fresh page, waits for it to settle and prints it.
// Failures are returned as ERENDER.
func (r *Renderer) Render(ctx context.Context, html string, opts instapdf.RenderOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if r.closed.Load() {
		return nil, instapdf.Errorf(instapdf.ERENDER, "renderer is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, renderError("opening page", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if opts.DisableScripts {
		if err := (proto.EmulationSetScriptExecutionDisabled{Value: true}).Call(page); err != nil {
			return nil, renderError("disabling scripts", err)
		}
	}

	if err := page.SetDocumentContent(html); err != nil {
		return nil, renderError("loading document", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, renderError("waiting for load", err)
	}

	if !opts.DisableScripts && opts.ScriptDelay > 0 {
		timer := time.NewTimer(opts.ScriptDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	stream, err := page.PDF(PrintParams(opts))
	if err != nil {
		return nil, renderError("printing", err)
	}

	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, renderError("reading output", err)
	}
	return pdf, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (r *Renderer) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if r.browser != nil {
		err = r.browser.Close()
	}
	if r.launcher != nil {
		r.launcher.Kill()
	}
	return err
}

// PrintParams converts layout options to Chrome print parameters.
// Paper dimensions stay portrait; Chrome rotates for landscape.
func PrintParams(opts instapdf.RenderOptions) *proto.PagePrintToPDF {
	width, height, _ := opts.PageSize.Dimensions()
	return &proto.PagePrintToPDF{
		Landscape:       opts.Orientation == instapdf.Landscape,
		PrintBackground: true,
		Scale:           ptr(opts.Zoom),
		PaperWidth:      ptr(width),
		PaperHeight:     ptr(height),
		MarginTop:       ptr(opts.Margins.Top / mmPerInch),
		MarginRight:     ptr(opts.Margins.Right / mmPerInch),
		MarginBottom:    ptr(opts.Margins.Bottom / mmPerInch),
		MarginLeft:      ptr(opts.Margins.Left / mmPerInch),
	}
}

func renderError(step string, err error) error {
	return fmt.Errorf("%s: %w", step, instapdf.Errorf(instapdf.ERENDER, "%v", err))
}

func ptr[T any](v T) *T {
	return &v
}
