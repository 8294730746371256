package frame

import (
	"image"
	"image/draw"
	"time"

	"github.com/nfnt/resize"
)

// FromImage converts any decoded image into an RGBA frame buffer
func FromImage(img image.Image, duration time.Duration) *Buffer {
	bounds := img.Bounds()
	b := NewBuffer(bounds.Dx(), bounds.Dy(), duration)

	if src, ok := img.(*image.RGBA); ok && src.Stride == b.Width*4 && bounds.Min == (image.Point{}) {
		copy(b.Pix, src.Pix)
		return b
	}

	dst := &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
	return b
}

// Image wraps the buffer's pixels as an image.RGBA. The returned image
// shares Pix with the buffer; it is a view, not a copy.
func (b *Buffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Scaled resamples the buffer to the given dimensions with the given
// interpolation. Comparison frames use Bilinear; output frames Lanczos3.
func (b *Buffer) Scaled(width, height int, interp resize.InterpolationFunction) *Buffer {
	if width == b.Width && height == b.Height {
		return b.Clone()
	}
	img := resize.Resize(uint(width), uint(height), b.Image(), interp)
	return FromImage(img, b.Duration)
}
