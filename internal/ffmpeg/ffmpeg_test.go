package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

// generateTestVideo renders a synthetic clip with lavfi
func generateTestVideo(t *testing.T, spec string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", spec,
		"-pix_fmt", "yuv420p", "-y", path)
	if err := cmd.Run(); err != nil {
		t.Skipf("could not generate test video: %v", err)
	}
	return path
}

func testExecutor(t *testing.T) *Executor {
	t.Helper()
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	e, err := New(logger, "", 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func TestFilterBuilder(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"empty", NewFilterBuilder().Build(), ""},
		{"scale", NewFilterBuilder().Scale(480, 270).Build(), "scale=480:270:flags=lanczos"},
		{"invalid scale skipped", NewFilterBuilder().Scale(0, 270).Build(), ""},
		{"crop", NewFilterBuilder().Crop(100, 100, 10, 20).Build(), "crop=100:100:10:20"},
		{"chain", NewFilterBuilder().Scale(320, 240).Custom("hflip").Build(), "scale=320:240:flags=lanczos,hflip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}

func TestNewRejectsMissingBinary(t *testing.T) {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	if _, err := New(logger, "definitely-not-ffmpeg-binary", 0); err == nil {
		t.Error("expected error for nonexistent binary")
	}
}

func TestProbeVideo(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := generateTestVideo(t, "testsrc=duration=2:size=320x240:rate=30")
	e := testExecutor(t)

	info, err := e.ProbeVideo(context.Background(), path)
	if err != nil {
		t.Fatalf("ProbeVideo failed: %v", err)
	}

	if info.Width != 320 || info.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", info.Width, info.Height)
	}
	if info.Duration < 1900*time.Millisecond || info.Duration > 2100*time.Millisecond {
		t.Errorf("expected ~2s duration, got %v", info.Duration)
	}
	if info.FPS < 29 || info.FPS > 31 {
		t.Errorf("expected ~30fps, got %f", info.FPS)
	}
}

func TestProbeVideoRejectsNonVideo(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := filepath.Join(t.TempDir(), "not-a-video.mp4")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	e := testExecutor(t)
	if _, err := e.ProbeVideo(context.Background(), path); err == nil {
		t.Error("expected error for a non-video file")
	}
}

func TestExtractFrame(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := generateTestVideo(t, "testsrc=duration=2:size=320x240:rate=30")
	e := testExecutor(t)

	img, err := e.ExtractFrame(context.Background(), path, 500*time.Millisecond, 160, 120)
	if err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("expected 160x120 frame, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestExtractFrameHonorsCancellation(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := generateTestVideo(t, "testsrc=duration=2:size=320x240:rate=30")
	e := testExecutor(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.ExtractFrame(ctx, path, time.Second, 160, 120); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestExtractFrameValidatesArgs(t *testing.T) {
	skipIfNoFFmpeg(t)
	e := testExecutor(t)
	ctx := context.Background()

	if _, err := e.ExtractFrame(ctx, "", time.Second, 100, 100); err == nil {
		t.Error("expected error for empty input path")
	}
	if _, err := e.ExtractFrame(ctx, "in.mp4", time.Second, 0, 100); err == nil {
		t.Error("expected error for zero width")
	}
}
