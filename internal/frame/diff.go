package frame

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch reports frames or sequences whose resolutions
// disagree where the caller requires them to be equal.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Difference scores how dissimilar two equally sized frames look, as a
// percentage in [0,100]. Each pixel is reduced to luminance
// (0.299R + 0.587G + 0.114B, alpha ignored), the absolute per-pixel deltas
// are summed and normalized by the maximum possible delta. Pure function,
// no allocation; meant to run on small comparison frames, not output frames.
func Difference(a, b *Buffer) (float64, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}

	var total float64
	for i := 0; i < len(a.Pix); i += 4 {
		la := 0.299*float64(a.Pix[i]) + 0.587*float64(a.Pix[i+1]) + 0.114*float64(a.Pix[i+2])
		lb := 0.299*float64(b.Pix[i]) + 0.587*float64(b.Pix[i+1]) + 0.114*float64(b.Pix[i+2])
		d := la - lb
		if d < 0 {
			d = -d
		}
		total += d
	}

	pixels := float64(a.Width * a.Height)
	return total / (255.0 * pixels) * 100.0, nil
}
