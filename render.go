package instapdf

import (
	"context"
	"encoding/base64"
	"strings"
	"time"
)

// PageSize names a paper size.
type PageSize string

// Supported paper sizes.
const (
	PageA3     PageSize = "A3"
	PageA4     PageSize = "A4"
	PageA5     PageSize = "A5"
	PageLetter PageSize = "Letter"
	PageLegal  PageSize = "Legal"
)

// Dimensions returns the portrait width and height of the page in inches.
// Returns ok=false for unknown sizes.
func (s PageSize) Dimensions() (width, height float64, ok bool) {
	switch s {
	case PageA3:
		return 11.69, 16.54, true
	case PageA4:
		return 8.27, 11.69, true
	case PageA5:
		return 5.83, 8.27, true
	case PageLetter:
		return 8.5, 11, true
	case PageLegal:
		return 8.5, 14, true
	}
	return 0, 0, false
}

// Orientation is the page orientation.
type Orientation string

// Orientation values.
const (
	Portrait  Orientation = "Portrait"
	Landscape Orientation = "Landscape"
)

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// UniformMargins returns margins of mm on every side.
func UniformMargins(mm float64) Margins {
	return Margins{Top: mm, Right: mm, Bottom: mm, Left: mm}
}

// Render option defaults.
const (
	DefaultEncoding    = "UTF-8"
	DefaultScriptDelay = 200 * time.Millisecond
	DefaultZoom        = 1.0
	DefaultMarginMM    = 10.0
)

// RenderOptions controls page layout of the rendered document.
type RenderOptions struct {
	PageSize    PageSize      `json:"pageSize"`
	Orientation Orientation   `json:"orientation"`
	Margins     Margins       `json:"margins"`
	Encoding    string        `json:"encoding"`
	ScriptDelay time.Duration `json:"scriptDelay"`
	Zoom        float64       `json:"zoom"`

	// DisableScripts stops the renderer from executing scripts embedded in
	// article bodies. ScriptDelay is ignored when set.
	DisableScripts bool `json:"disableScripts"`
}

// DefaultRenderOptions returns A4 portrait with 10mm margins.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		PageSize:    PageA4,
		Orientation: Portrait,
		Margins:     UniformMargins(DefaultMarginMM),
		Encoding:    DefaultEncoding,
		ScriptDelay: DefaultScriptDelay,
		Zoom:        DefaultZoom,
	}
}

// Validate returns an error if the options cannot be rendered.
func (o RenderOptions) Validate() error {
	if _, _, ok := o.PageSize.Dimensions(); !ok {
		return Errorf(EINVALID, "unknown page size %q", o.PageSize)
	}
	if o.Orientation != Portrait && o.Orientation != Landscape {
		return Errorf(EINVALID, "unknown orientation %q", o.Orientation)
	}
	if o.Margins.Top < 0 || o.Margins.Right < 0 || o.Margins.Bottom < 0 || o.Margins.Left < 0 {
		return Errorf(EINVALID, "margins must not be negative")
	}
	if !strings.EqualFold(o.Encoding, DefaultEncoding) {
		return Errorf(EINVALID, "unsupported encoding %q: only %s is supported", o.Encoding, DefaultEncoding)
	}
	if o.ScriptDelay < 0 {
		return Errorf(EINVALID, "script delay must not be negative")
	}
	if o.Zoom < 0.1 || o.Zoom > 2 {
		return Errorf(EINVALID, "zoom must be between 0.1 and 2, got %g", o.Zoom)
	}
	return nil
}

// Renderer converts an HTML document into a paginated binary document.
type Renderer interface {
	// Render returns the rendered document bytes.
	// The context controls timeout and cancellation.
	Render(ctx context.Context, html string, opts RenderOptions) ([]byte, error)

	// Close releases renderer resources.
	Close() error
}

// QREncoder turns a URL into a PNG image of its QR code.
type QREncoder interface {
	Encode(url string) ([]byte, error)
}

// DataURI returns data as a base64 data URI with the given media type.
func DataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
