// Package source defines the seekable video capability consumed by the
// resampling pipeline, and its ffmpeg-backed implementation.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/kikiluvv/gifslice/internal/frame"
)

// Source is a seekable video: it knows its duration and native resolution
// and can render the frame at any timestamp into a buffer of the requested
// dimensions. RenderAt is the pipeline's only suspension point; callers
// bound it with a context deadline.
type Source interface {
	Duration() time.Duration
	Dimensions() (width, height int)
	RenderAt(ctx context.Context, timestamp time.Duration, width, height int) (*frame.Buffer, error)
	Close() error
}

// DecodeError reports a timestamp the source could not render
type DecodeError struct {
	Timestamp time.Duration
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed at %s: %v", e.Timestamp, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
