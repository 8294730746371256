package ffmpeg

import (
	"io"
	"time"
)

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	Bitrate    int64
	VideoCodec string
}

// RunOptions configures ffmpeg execution. When Stdout is set, stdout is
// copied to it verbatim (for image pipes); otherwise stdout is line-scanned
// into LogHandler.
type RunOptions struct {
	Args       []string
	Stdout     io.Writer
	LogHandler func(line string)
}
