package frame

import (
	"fmt"
	"time"
)

// Buffer is a single raster frame: a fixed grid of RGBA samples plus the
// time it stays on screen. Pix is packed R,G,B,A and its length is always
// Width*Height*4. A buffer belongs to exactly one sequence at a time.
type Buffer struct {
	Width    int
	Height   int
	Pix      []byte
	Duration time.Duration
}

// NewBuffer allocates a zeroed frame buffer
func NewBuffer(width, height int, duration time.Duration) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Pix:      make([]byte, width*height*4),
		Duration: duration,
	}
}

// Clone returns a deep copy of the buffer
func (b *Buffer) Clone() *Buffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{
		Width:    b.Width,
		Height:   b.Height,
		Pix:      pix,
		Duration: b.Duration,
	}
}

// Sequence is an ordered run of frames sharing one resolution. It
// represents a detected scene or a decoded source clip.
type Sequence struct {
	Width  int
	Height int
	Frames []*Buffer
}

// NewSequence creates an empty sequence with fixed dimensions
func NewSequence(width, height int) *Sequence {
	return &Sequence{
		Width:  width,
		Height: height,
		Frames: make([]*Buffer, 0),
	}
}

// Append adds a frame, enforcing the shared-resolution invariant
func (s *Sequence) Append(b *Buffer) error {
	if b.Width != s.Width || b.Height != s.Height {
		return fmt.Errorf("%w: frame %dx%d, sequence %dx%d",
			ErrDimensionMismatch, b.Width, b.Height, s.Width, s.Height)
	}
	s.Frames = append(s.Frames, b)
	return nil
}

// Len returns the number of frames
func (s *Sequence) Len() int {
	return len(s.Frames)
}

// Duration sums the display durations of all member frames. Durations are
// per-frame, never inferred from frame count and a fixed rate.
func (s *Sequence) Duration() time.Duration {
	var total time.Duration
	for _, f := range s.Frames {
		total += f.Duration
	}
	return total
}

// ScaleSpec selects the output resolution: 0 keeps the source resolution,
// any positive value caps the larger dimension, preserving aspect ratio.
type ScaleSpec int

// ScaleOriginal keeps the source resolution unchanged
const ScaleOriginal ScaleSpec = 0

// Fit derives target dimensions from source dimensions. The larger source
// dimension is scaled down to the cap, the other floored proportionally.
// Upscaling never happens.
func (s ScaleSpec) Fit(srcW, srcH int) (int, int) {
	if s <= 0 {
		return srcW, srcH
	}
	target := int(s)
	if srcW >= srcH {
		if srcW <= target {
			return srcW, srcH
		}
		h := srcH * target / srcW
		if h < 1 {
			h = 1
		}
		return target, h
	}
	if srcH <= target {
		return srcW, srcH
	}
	w := srcW * target / srcH
	if w < 1 {
		w = 1
	}
	return w, target
}

// FitWidth scales source dimensions to an exact target width, flooring the
// height proportionally. Used to derive comparison-frame dimensions.
func FitWidth(srcW, srcH, targetW int) (int, int) {
	if srcW <= 0 || srcH <= 0 || targetW <= 0 {
		return targetW, 1
	}
	h := srcH * targetW / srcW
	if h < 1 {
		h = 1
	}
	return targetW, h
}
