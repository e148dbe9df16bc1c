// Package qrcode encodes source URLs as PNG QR codes.
package qrcode

import (
	"github.com/fwojciec/instapdf"
	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the default image edge length in pixels.
const DefaultSize = 256

// Ensure Encoder implements instapdf.QREncoder at compile time.
var _ instapdf.QREncoder = (*Encoder)(nil)

// Encoder produces PNG QR codes.
type Encoder struct {
	size  int
	level qr.RecoveryLevel
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithSize sets the image edge length in pixels.
func WithSize(px int) Option {
	return func(e *Encoder) {
		e.size = px
	}
}

// WithRecoveryLevel sets the error correction level.
func WithRecoveryLevel(level qr.RecoveryLevel) Option {
	return func(e *Encoder) {
		e.level = level
	}
}

// NewEncoder creates a new Encoder with medium error correction.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		size:  DefaultSize,
		level: qr.Medium,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode returns a PNG image of the QR code for url.
func (e *Encoder) Encode(url string) ([]byte, error) {
	if url == "" {
		return nil, instapdf.Errorf(instapdf.EINVALID, "url required")
	}
	png, err := qr.Encode(url, e.level, e.size)
	if err != nil {
		return nil, instapdf.Errorf(instapdf.EINVALID, "encoding QR code: %v", err)
	}
	return png, nil
}
