// Package codec defines the encode/decode capability boundary consumed by
// the split and combine flows, and ships a stdlib-GIF adapter for it.
package codec

import (
	"context"
	"fmt"
	"io"

	"github.com/kikiluvv/gifslice/internal/frame"
)

// Options configures one encode request
type Options struct {
	Quality int  // 1-20, lower is better
	Dither  bool // error-diffusion dithering
	Width   int  // 0 keeps the sequence resolution
	Height  int
}

// Encoder turns a frame sequence into an encoded animated-image blob.
// Failures are reported to the caller, never retried here.
type Encoder interface {
	Encode(ctx context.Context, seq *frame.Sequence, opts Options) ([]byte, error)
}

// Decoder recovers a frame sequence from an encoded animated-image stream
type Decoder interface {
	Decode(r io.Reader) (*frame.Sequence, error)
}

// ParseError reports an input stream from which no frames are recoverable
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable animated image: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
