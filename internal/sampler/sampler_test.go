package sampler

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/gifslice/internal/frame"
)

// fakeSource renders solid-color frames and counts seeks. failAt makes the
// seek for that sample index report a deadline timeout.
type fakeSource struct {
	duration time.Duration
	width    int
	height   int
	failAt   int // sample index whose seek times out; -1 disables
	rate     float64
	renders  int
}

func (s *fakeSource) Duration() time.Duration { return s.duration }
func (s *fakeSource) Dimensions() (int, int)  { return s.width, s.height }
func (s *fakeSource) Close() error            { return nil }

func (s *fakeSource) RenderAt(ctx context.Context, ts time.Duration, w, h int) (*frame.Buffer, error) {
	s.renders++
	if s.failAt >= 0 {
		index := int(ts.Seconds() * s.rate)
		if index == s.failAt {
			return nil, context.DeadlineExceeded
		}
	}
	buf := frame.NewBuffer(w, h, 0)
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i+3] = 0xff
	}
	return buf, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestStreamSampleCountAndTiming(t *testing.T) {
	src := &fakeSource{duration: 3 * time.Second, width: 640, height: 480, failAt: -1, rate: 2}
	stream, err := New(testLogger(), src, Config{SampleRate: 2, Scale: 320})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if stream.Total() != 6 {
		t.Fatalf("expected 6 samples for 3s at 2fps, got %d", stream.Total())
	}
	if w, h := stream.OutputDimensions(); w != 320 || h != 240 {
		t.Errorf("expected 320x240 output, got %dx%d", w, h)
	}
	if stream.FrameDuration() != 500*time.Millisecond {
		t.Errorf("expected 500ms frame duration, got %v", stream.FrameDuration())
	}

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		sample, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("Next(%d) failed: %v", i, err)
		}
		if sample == nil {
			t.Fatalf("stream exhausted early at %d", i)
		}
		if sample.Index != i {
			t.Errorf("expected index %d, got %d", i, sample.Index)
		}
		wantTS := time.Duration(float64(i) / 2 * float64(time.Second))
		if sample.Timestamp != wantTS {
			t.Errorf("sample %d: expected timestamp %v, got %v", i, wantTS, sample.Timestamp)
		}
		if sample.HighRes.Duration != 500*time.Millisecond {
			t.Errorf("sample %d: expected tagged duration 500ms, got %v", i, sample.HighRes.Duration)
		}
		if sample.Comparison.Width != DefaultComparisonWidth {
			t.Errorf("sample %d: comparison width %d, want %d", i, sample.Comparison.Width, DefaultComparisonWidth)
		}
	}

	sample, err := stream.Next(ctx)
	if err != nil {
		t.Fatalf("Next after end failed: %v", err)
	}
	if sample != nil {
		t.Error("expected nil sample after exhaustion")
	}
}

func TestStreamComparisonDimensions(t *testing.T) {
	src := &fakeSource{duration: time.Second, width: 1920, height: 1080, failAt: -1, rate: 1}
	stream, err := New(testLogger(), src, Config{SampleRate: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sample, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if sample.Comparison.Width != 48 || sample.Comparison.Height != 27 {
		t.Errorf("expected 48x27 comparison frame, got %dx%d",
			sample.Comparison.Width, sample.Comparison.Height)
	}
}

func TestStreamSeekTimeoutPoisonsStream(t *testing.T) {
	src := &fakeSource{duration: 5 * time.Second, width: 64, height: 64, failAt: 2, rate: 1}
	stream, err := New(testLogger(), src, Config{SampleRate: 1, SeekTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := stream.Next(ctx); err != nil {
			t.Fatalf("Next(%d) failed: %v", i, err)
		}
	}

	_, err = stream.Next(ctx)
	var timeout *SeekTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected SeekTimeoutError, got %v", err)
	}
	if timeout.Timestamp != 2*time.Second {
		t.Errorf("expected timeout at 2s, got %v", timeout.Timestamp)
	}

	rendersBefore := src.renders

	// A failed stream must refuse further seeks
	if _, err := stream.Next(ctx); err == nil {
		t.Fatal("expected error from poisoned stream")
	}
	if src.renders != rendersBefore {
		t.Errorf("poisoned stream issued %d additional seeks", src.renders-rendersBefore)
	}
}

func TestStreamZeroSamples(t *testing.T) {
	src := &fakeSource{duration: 50 * time.Millisecond, width: 64, height: 64, failAt: -1, rate: 1}
	stream, err := New(testLogger(), src, Config{SampleRate: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if stream.Total() != 0 {
		t.Fatalf("expected 0 samples, got %d", stream.Total())
	}
	sample, err := stream.Next(context.Background())
	if err != nil || sample != nil {
		t.Errorf("expected immediate exhaustion, got sample=%v err=%v", sample, err)
	}
}

func TestConfigValidation(t *testing.T) {
	src := &fakeSource{duration: time.Second, width: 64, height: 64, failAt: -1, rate: 1}
	if _, err := New(testLogger(), src, Config{SampleRate: 0}); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := New(testLogger(), src, Config{SampleRate: -2}); err == nil {
		t.Error("expected error for negative sample rate")
	}
}
