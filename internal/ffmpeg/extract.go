package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/kikiluvv/gifslice/pkg/util"
)

// ExtractFrame renders the frame at the given timestamp, scaled to
// width x height, and returns it as a decoded image. The frame is piped
// out of ffmpeg as PNG, never touching disk.
func (e *Executor) ExtractFrame(ctx context.Context, input string, timestamp time.Duration, width, height int) (image.Image, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target dimensions %dx%d", width, height)
	}

	filter := NewFilterBuilder().Scale(width, height).Build()

	args := []string{
		"-ss", util.FormatDuration(timestamp),
		"-i", input,
		"-frames:v", "1",
		"-vf", filter,
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	}

	var stdout bytes.Buffer
	opts := RunOptions{
		Args:   args,
		Stdout: &stdout,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return nil, fmt.Errorf("frame extraction at %s failed: %w", util.FormatDuration(timestamp), err)
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame decoded at %s", util.FormatDuration(timestamp))
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted frame: %w", err)
	}

	return img, nil
}
