// Package sampler walks a seekable video source at a fixed rate and yields
// pairs of output-resolution and comparison-resolution frames.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/gifslice/internal/frame"
	"github.com/kikiluvv/gifslice/internal/source"
)

// DefaultComparisonWidth is the fixed width of comparison frames. A
// heuristic throughput knob, not an invariant; overridable via Config.
const DefaultComparisonWidth = 48

// DefaultSeekTimeout bounds each seek-and-render call
const DefaultSeekTimeout = 5 * time.Second

// Config controls how a source is resampled
type Config struct {
	SampleRate      float64 // samples per second, > 0
	Scale           frame.ScaleSpec
	ComparisonWidth int           // 0 picks DefaultComparisonWidth
	SeekTimeout     time.Duration // 0 picks DefaultSeekTimeout
}

// Validate checks config bounds
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %v", c.SampleRate)
	}
	if c.ComparisonWidth < 0 {
		return fmt.Errorf("comparison width must not be negative, got %d", c.ComparisonWidth)
	}
	return nil
}

// SeekTimeoutError reports a seek that exceeded its deadline. Not retried;
// the whole run is aborted and the caller may restart with other settings.
type SeekTimeoutError struct {
	Timestamp time.Duration
}

func (e *SeekTimeoutError) Error() string {
	return fmt.Sprintf("seek timed out at %s", e.Timestamp)
}

// Sample is one resampled instant: the output-resolution frame destined
// for a scene, and its small comparison twin used only for scoring.
type Sample struct {
	Index      int
	Timestamp  time.Duration
	HighRes    *frame.Buffer
	Comparison *frame.Buffer
}

// Stream lazily pulls samples from a source, one seek per sample. A failed
// or timed-out seek poisons the stream: no further seeks are issued.
type Stream struct {
	logger zerolog.Logger
	src    source.Source
	cfg    Config

	outW, outH int
	cmpW, cmpH int
	total      int
	frameDur   time.Duration

	next   int
	failed bool
}

// New derives output and comparison dimensions from the source and returns
// a lazy sample stream over it.
func New(logger zerolog.Logger, src source.Source, cfg Config) (*Stream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ComparisonWidth == 0 {
		cfg.ComparisonWidth = DefaultComparisonWidth
	}
	if cfg.SeekTimeout == 0 {
		cfg.SeekTimeout = DefaultSeekTimeout
	}

	srcW, srcH := src.Dimensions()
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("source reports invalid dimensions %dx%d", srcW, srcH)
	}

	outW, outH := cfg.Scale.Fit(srcW, srcH)
	cmpW, cmpH := frame.FitWidth(srcW, srcH, cfg.ComparisonWidth)

	total := int(math.Floor(src.Duration().Seconds() * cfg.SampleRate))
	frameDur := time.Duration(float64(time.Second) / cfg.SampleRate)

	logger = logger.With().Str("component", "sampler").Logger()
	logger.Debug().
		Int("samples", total).
		Int("out_w", outW).Int("out_h", outH).
		Int("cmp_w", cmpW).Int("cmp_h", cmpH).
		Float64("rate", cfg.SampleRate).
		Msg("sample stream prepared")

	return &Stream{
		logger:   logger,
		src:      src,
		cfg:      cfg,
		outW:     outW,
		outH:     outH,
		cmpW:     cmpW,
		cmpH:     cmpH,
		total:    total,
		frameDur: frameDur,
	}, nil
}

// Total returns the number of samples the stream will produce
func (s *Stream) Total() int {
	return s.total
}

// OutputDimensions returns the derived output resolution
func (s *Stream) OutputDimensions() (int, int) {
	return s.outW, s.outH
}

// FrameDuration returns the display duration assigned to each sample
func (s *Stream) FrameDuration() time.Duration {
	return s.frameDur
}

// Next renders the next sample, or (nil, nil) when the stream is exhausted.
// Each call performs exactly one bounded seek; after any error the stream
// stays failed and refuses further seeks.
func (s *Stream) Next(ctx context.Context) (*Sample, error) {
	if s.failed {
		return nil, fmt.Errorf("sample stream already failed")
	}
	if s.next >= s.total {
		return nil, nil
	}

	index := s.next
	timestamp := time.Duration(float64(index) / s.cfg.SampleRate * float64(time.Second))

	seekCtx, cancel := context.WithTimeout(ctx, s.cfg.SeekTimeout)
	defer cancel()

	highRes, err := s.src.RenderAt(seekCtx, timestamp, s.outW, s.outH)
	if err != nil {
		s.failed = true
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &SeekTimeoutError{Timestamp: timestamp}
		}
		return nil, err
	}

	highRes.Duration = s.frameDur
	comparison := highRes.Scaled(s.cmpW, s.cmpH, resize.Bilinear)

	s.next++
	return &Sample{
		Index:      index,
		Timestamp:  timestamp,
		HighRes:    highRes,
		Comparison: comparison,
	}, nil
}
