package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"time"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/gifslice/internal/frame"
)

// gifTick is the GIF delay unit
const gifTick = 10 * time.Millisecond

// defaultFrameDelay substitutes for frames that carry no delay in the file
const defaultFrameDelay = 100 * time.Millisecond

// GIFCodec implements the Encoder and Decoder capabilities over the GIF
// container. Quality selects the palette size; dithering uses
// Floyd-Steinberg error diffusion.
type GIFCodec struct {
	logger zerolog.Logger
}

// NewGIFCodec creates a GIF codec
func NewGIFCodec(logger zerolog.Logger) *GIFCodec {
	return &GIFCodec{
		logger: logger.With().Str("component", "gif-codec").Logger(),
	}
}

// paletteSize maps the 1-20 quality level (lower is better) to a palette
// size: 1-5 use 256 colors, each following band halves it, floor 32.
func paletteSize(quality int) int {
	if quality < 1 {
		quality = 1
	}
	if quality > 20 {
		quality = 20
	}
	return 256 >> uint((quality-1)/5)
}

// Encode renders the sequence into an animated GIF blob
func (c *GIFCodec) Encode(ctx context.Context, seq *frame.Sequence, opts Options) ([]byte, error) {
	if seq == nil || seq.Len() == 0 {
		return nil, fmt.Errorf("cannot encode an empty sequence")
	}

	width := opts.Width
	height := opts.Height
	if width <= 0 || height <= 0 {
		width, height = seq.Width, seq.Height
	}

	pal := palette.Plan9[:paletteSize(opts.Quality)]
	rect := image.Rect(0, 0, width, height)

	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, seq.Len()),
		Delay:     make([]int, 0, seq.Len()),
		LoopCount: 0,
	}

	for _, f := range seq.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := f
		if f.Width != width || f.Height != height {
			src = f.Scaled(width, height, resize.Lanczos3)
		}

		pm := image.NewPaletted(rect, pal)
		if opts.Dither {
			draw.FloydSteinberg.Draw(pm, rect, src.Image(), image.Point{})
		} else {
			draw.Draw(pm, rect, src.Image(), image.Point{}, draw.Src)
		}

		delay := int(f.Duration / gifTick)
		if delay < 1 {
			delay = 1
		}

		out.Image = append(out.Image, pm)
		out.Delay = append(out.Delay, delay)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("gif encode failed: %w", err)
	}

	c.logger.Debug().
		Int("frames", seq.Len()).
		Int("width", width).
		Int("height", height).
		Int("bytes", buf.Len()).
		Msg("sequence encoded")

	return buf.Bytes(), nil
}

// Decode recovers the full frame sequence from an animated GIF stream.
// Frames are coalesced against the logical screen so every output frame is
// independently complete, whatever disposal method the file used.
func (c *GIFCodec) Decode(r io.Reader) (*frame.Sequence, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(g.Image) == 0 {
		return nil, &ParseError{Err: errors.New("no frames recoverable")}
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Dx(), b.Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	seq := frame.NewSequence(width, height)

	for i, pm := range g.Image {
		var backup *image.RGBA
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			backup = image.NewRGBA(canvas.Rect)
			copy(backup.Pix, canvas.Pix)
		}

		draw.Draw(canvas, pm.Bounds(), pm, pm.Bounds().Min, draw.Over)

		delay := defaultFrameDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * gifTick
		}

		if err := seq.Append(frame.FromImage(canvas, delay)); err != nil {
			return nil, &ParseError{Err: err}
		}

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, pm.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, backup.Pix)
		}
	}

	c.logger.Debug().
		Int("frames", seq.Len()).
		Int("width", width).
		Int("height", height).
		Msg("animated image decoded")

	return seq, nil
}
