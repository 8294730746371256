package source

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/gifslice/internal/ffmpeg"
	"github.com/kikiluvv/gifslice/internal/frame"
)

// FFmpegSource adapts an ffmpeg executor to the Source capability. Metadata
// is probed once when the source is opened.
type FFmpegSource struct {
	logger   zerolog.Logger
	exec     *ffmpeg.Executor
	path     string
	duration time.Duration
	width    int
	height   int
}

// Open probes the video file and returns a seekable source over it
func Open(ctx context.Context, logger zerolog.Logger, exec *ffmpeg.Executor, path string) (*FFmpegSource, error) {
	info, err := exec.ProbeVideo(ctx, path)
	if err != nil {
		return nil, err
	}

	logger = logger.With().Str("component", "source").Logger()
	logger.Debug().
		Str("path", path).
		Dur("duration", info.Duration).
		Int("width", info.Width).
		Int("height", info.Height).
		Msg("video source opened")

	return &FFmpegSource{
		logger:   logger,
		exec:     exec,
		path:     path,
		duration: info.Duration,
		width:    info.Width,
		height:   info.Height,
	}, nil
}

// Duration returns the probed video duration
func (s *FFmpegSource) Duration() time.Duration {
	return s.duration
}

// Dimensions returns the native video resolution
func (s *FFmpegSource) Dimensions() (int, int) {
	return s.width, s.height
}

// RenderAt seeks to the timestamp and renders one frame at the target
// resolution. Failures are wrapped as DecodeError; context deadlines pass
// through untouched so callers can tell a timeout from a bad timestamp.
func (s *FFmpegSource) RenderAt(ctx context.Context, timestamp time.Duration, width, height int) (*frame.Buffer, error) {
	img, err := s.exec.ExtractFrame(ctx, s.path, timestamp, width, height)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &DecodeError{Timestamp: timestamp, Err: err}
	}
	return frame.FromImage(img, 0), nil
}

// Close releases the source. The executor is owned by the caller and
// survives; there is no per-file state to tear down beyond logging.
func (s *FFmpegSource) Close() error {
	s.logger.Debug().Str("path", s.path).Msg("video source closed")
	return nil
}
