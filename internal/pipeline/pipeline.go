// Package pipeline wires the segmentation and combine workflows together:
// config to source to sampler to segmenter to encoder for split, and
// decoder to timeline to encoder for combine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/gifslice/internal/codec"
	"github.com/kikiluvv/gifslice/internal/config"
	"github.com/kikiluvv/gifslice/internal/ffmpeg"
	"github.com/kikiluvv/gifslice/internal/frame"
	"github.com/kikiluvv/gifslice/internal/sampler"
	"github.com/kikiluvv/gifslice/internal/segment"
	"github.com/kikiluvv/gifslice/internal/source"
	"github.com/kikiluvv/gifslice/pkg/util"
)

// Pipeline orchestrates the split and combine workflows. The codec handles
// are constructed once per pipeline and injected everywhere they are
// consumed; nothing reaches for a shared global.
type Pipeline struct {
	logger zerolog.Logger
	cfg    *config.Config
	ffmpeg *ffmpeg.Executor
	enc    codec.Encoder
	dec    codec.Decoder
}

// New creates a pipeline instance from loaded configuration
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	ffmpegExec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	gifCodec := codec.NewGIFCodec(logger)

	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		cfg:    cfg,
		ffmpeg: ffmpegExec,
		enc:    gifCodec,
		dec:    gifCodec,
	}, nil
}

// Probe returns metadata for a video file
func (p *Pipeline) Probe(ctx context.Context, input string) (*ffmpeg.VideoInfo, error) {
	return p.ffmpeg.ProbeVideo(ctx, input)
}

// Split segments the input video into scenes and encodes each one to a GIF
// file as it is detected. Scenes already emitted survive a later failure;
// a single scene's encode failure is recorded and the run continues.
// ErrNoScenes from the segmenter is returned alongside any scenes written
// so callers can suggest parameter changes.
func (p *Pipeline) Split(ctx context.Context, input string, opts SplitOptions) ([]SceneResult, error) {
	if input == "" {
		return nil, fmt.Errorf("input path cannot be empty")
	}
	if !util.FileExists(input) {
		return nil, fmt.Errorf("input video not found: %s", input)
	}
	opts = p.fillSplitDefaults(opts)

	if err := util.EnsureDir(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	p.logger.Info().
		Str("input", input).
		Float64("rate", opts.SampleRate).
		Float64("threshold", opts.Threshold).
		Int("min_frames", opts.MinSceneFrames).
		Msg("starting split")

	src, err := source.Open(ctx, p.logger, p.ffmpeg, input)
	if err != nil {
		return nil, fmt.Errorf("failed to open video source: %w", err)
	}
	defer src.Close()

	stream, err := sampler.New(p.logger, src, sampler.Config{
		SampleRate:      opts.SampleRate,
		Scale:           frame.ScaleSpec(opts.MaxDimension),
		ComparisonWidth: p.cfg.Segmentation.ComparisonWidth,
		SeekTimeout:     time.Duration(p.cfg.Segmentation.SeekTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	seg, err := segment.New(p.logger, segment.Config{
		Threshold:      opts.Threshold,
		MinSceneFrames: opts.MinSceneFrames,
	})
	if err != nil {
		return nil, err
	}

	var samples segment.Stream = stream
	if opts.OnProgress != nil {
		samples = &progressStream{inner: stream, total: stream.Total(), fn: opts.OnProgress}
	}

	scenes, errc := seg.Segment(ctx, samples)

	var results []SceneResult
	for scene := range scenes {
		results = append(results, p.encodeScene(ctx, scene, opts))
	}

	if err := <-errc; err != nil {
		if errors.Is(err, segment.ErrNoScenes) {
			p.logger.Warn().Msg("no scenes detected; try a lower threshold or higher sample rate")
			return results, err
		}
		return results, err
	}

	p.logger.Info().Int("scenes", len(results)).Msg("split complete")
	return results, nil
}

// encodeScene writes one emitted scene to disk. Failure is carried in the
// result, not returned: later scenes keep flowing.
func (p *Pipeline) encodeScene(ctx context.Context, scene segment.Scene, opts SplitOptions) SceneResult {
	result := SceneResult{
		Ordinal:  scene.Ordinal,
		Name:     scene.Name,
		Frames:   scene.Frames.Len(),
		Duration: scene.Frames.Duration(),
	}

	data, err := p.enc.Encode(ctx, scene.Frames, codec.Options{
		Quality: opts.Quality,
		Dither:  opts.Dither,
	})
	if err != nil {
		p.logger.Error().Err(err).Int("ordinal", scene.Ordinal).Msg("scene encode failed")
		result.EncodeErr = err
		return result
	}

	outPath := filepath.Join(opts.OutputDir, fmt.Sprintf("scene_%03d.gif", scene.Ordinal+1))
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		p.logger.Error().Err(err).Str("path", outPath).Msg("scene write failed")
		util.CleanupFiles(outPath)
		result.EncodeErr = err
		return result
	}

	p.logger.Info().
		Int("ordinal", scene.Ordinal).
		Int("frames", result.Frames).
		Str("output", outPath).
		Msg("scene written")

	result.OutputPath = outPath
	return result
}

// Combine decodes the input clips, assembles them on a timeline with the
// requested order and trim, and encodes the active range to one GIF.
func (p *Pipeline) Combine(ctx context.Context, inputs []string, opts CombineOptions) (*CombineResult, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input clips provided")
	}
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	if opts.Quality == 0 {
		opts.Quality = p.cfg.Encoder.Quality
	}

	session, err := p.NewCombineSession(ctx, inputs)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	session.SetEncodeOptions(codec.Options{
		Quality: opts.Quality,
		Dither:  opts.Dither,
	})
	if len(opts.Order) > 0 {
		if err := session.Reorder(opts.Order); err != nil {
			return nil, err
		}
	}
	if opts.TrimStart >= 0 {
		session.SetTrimStart(opts.TrimStart)
	}
	if opts.TrimEnd >= 0 {
		session.SetTrimEnd(opts.TrimEnd)
	}

	encoded, err := session.Wait(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(opts.OutputPath, encoded, 0644); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	timeline := session.Timeline()
	result := &CombineResult{
		OutputPath:    opts.OutputPath,
		Frames:        timeline.SelectedFrameCount(),
		Duration:      timeline.SelectedDuration(),
		TotalFrames:   timeline.Len(),
		TotalDuration: timeline.TotalDuration(),
	}

	p.logger.Info().
		Str("output", result.OutputPath).
		Int("frames", result.Frames).
		Dur("duration", result.Duration).
		Msg("combine complete")

	return result, nil
}

// progressStream reports each consumed sample to a callback as the
// segmenter pulls it through
type progressStream struct {
	inner *sampler.Stream
	total int
	done  int
	fn    ProgressFunc
}

func (s *progressStream) Next(ctx context.Context) (*sampler.Sample, error) {
	sample, err := s.inner.Next(ctx)
	if err == nil && sample != nil {
		s.done++
		s.fn(s.done, s.total)
	}
	return sample, err
}

// decodeClip reads and decodes one animated-image file
func (p *Pipeline) decodeClip(path string) (*frame.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open clip %s: %w", path, err)
	}
	defer f.Close()

	seq, err := p.dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode clip %s: %w", path, err)
	}
	return seq, nil
}

func (p *Pipeline) fillSplitDefaults(opts SplitOptions) SplitOptions {
	seg := p.cfg.Segmentation
	if opts.SampleRate <= 0 {
		opts.SampleRate = seg.SampleRate
	}
	if opts.MaxDimension == 0 {
		opts.MaxDimension = seg.MaxDimension
	}
	if opts.Threshold == 0 {
		opts.Threshold = seg.Threshold
	}
	if opts.MinSceneFrames == 0 {
		opts.MinSceneFrames = seg.MinSceneFrames
	}
	if opts.Quality == 0 {
		opts.Quality = p.cfg.Encoder.Quality
	}
	if opts.OutputDir == "" {
		opts.OutputDir = p.cfg.WorkDir
	}
	return opts
}

// Encoder exposes the pipeline's encoder handle
func (p *Pipeline) Encoder() codec.Encoder {
	return p.enc
}

// Decoder exposes the pipeline's decoder handle
func (p *Pipeline) Decoder() codec.Decoder {
	return p.dec
}
