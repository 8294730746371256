// Package segment partitions a resampled video into scenes by scoring
// consecutive comparison frames and cutting where the score crosses a
// threshold.
package segment

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/gifslice/internal/frame"
	"github.com/kikiluvv/gifslice/internal/sampler"
)

// ErrNoScenes reports a run that produced no scenes. A business outcome,
// not a failure: the caller is expected to suggest different settings.
var ErrNoScenes = errors.New("no scenes detected")

// sceneBuffer sizes the emission channel so the consumer can encode
// finished scenes while later samples are still being rendered.
const sceneBuffer = 4

// Config controls boundary detection
type Config struct {
	Threshold      float64 // dissimilarity percent above which a boundary is cut
	MinSceneFrames int     // runs shorter than this are dropped as flicker
}

// DefaultConfig returns the tuned segmentation defaults
func DefaultConfig() Config {
	return Config{
		Threshold:      12.0,
		MinSceneFrames: 8,
	}
}

// Validate checks config bounds
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be within [0,100], got %v", c.Threshold)
	}
	if c.MinSceneFrames < 1 {
		return fmt.Errorf("min scene frames must be at least 1, got %d", c.MinSceneFrames)
	}
	return nil
}

// Stream is the sample feed the segmenter consumes, strictly in index order
type Stream interface {
	Next(ctx context.Context) (*sampler.Sample, error)
}

// Segmenter walks samples in order and emits scenes as their closing
// boundary is found. One instance per run; not shared across goroutines.
type Segmenter struct {
	logger zerolog.Logger
	cfg    Config
}

// New creates a segmenter
func New(logger zerolog.Logger, cfg Config) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Segmenter{
		logger: logger.With().Str("component", "segmenter").Logger(),
		cfg:    cfg,
	}, nil
}

// Segment consumes the stream and emits scenes in ascending ordinal order
// on the returned channel, which is closed when the run ends. The error
// channel yields exactly one value: nil on success, ErrNoScenes when the
// pass produced nothing, or the failure that aborted the run.
func (s *Segmenter) Segment(ctx context.Context, stream Stream) (<-chan Scene, <-chan error) {
	scenes := make(chan Scene, sceneBuffer)
	errc := make(chan error, 1)

	go func() {
		defer close(scenes)
		errc <- s.run(ctx, stream, scenes)
	}()

	return scenes, errc
}

func (s *Segmenter) run(ctx context.Context, stream Stream, out chan<- Scene) error {
	var (
		prev      *frame.Buffer // comparison frame of the previous sample only
		accum     []*frame.Buffer
		width     int
		height    int
		ordinal   int
		processed int
		emitted   int
	)

	emit := func() error {
		seq := frame.NewSequence(width, height)
		for _, f := range accum {
			if err := seq.Append(f); err != nil {
				return err
			}
		}
		scene := newScene(ordinal, seq)

		s.logger.Info().
			Int("ordinal", scene.Ordinal).
			Int("frames", seq.Len()).
			Dur("duration", seq.Duration()).
			Msg("scene detected")

		select {
		case out <- scene:
		case <-ctx.Done():
			return ctx.Err()
		}
		ordinal++
		emitted++
		return nil
	}

	closeRun := func() error {
		if len(accum) == 0 {
			return nil
		}
		if len(accum) >= s.cfg.MinSceneFrames {
			if err := emit(); err != nil {
				return err
			}
		} else {
			// Short flicker is not a scene; dropping it is policy, not error
			s.logger.Debug().
				Int("frames", len(accum)).
				Int("min", s.cfg.MinSceneFrames).
				Msg("discarding short run")
		}
		accum = accum[:0:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sample, err := stream.Next(ctx)
		if err != nil {
			return err
		}
		if sample == nil {
			break
		}
		processed++

		// The first sample is maximally dissimilar from its non-existent
		// predecessor and always opens a new run.
		boundary := prev == nil
		if !boundary {
			score, err := frame.Difference(sample.Comparison, prev)
			if err != nil {
				return err
			}
			boundary = score > s.cfg.Threshold
		}

		if boundary {
			if err := closeRun(); err != nil {
				return err
			}
		}

		if len(accum) == 0 {
			width = sample.HighRes.Width
			height = sample.HighRes.Height
		}
		accum = append(accum, sample.HighRes)
		prev = sample.Comparison
	}

	if err := closeRun(); err != nil {
		return err
	}

	s.logger.Info().
		Int("samples", processed).
		Int("scenes", emitted).
		Msg("segmentation complete")

	if emitted == 0 {
		return ErrNoScenes
	}
	return nil
}
