package frame

import (
	"errors"
	"testing"
	"time"
)

func TestScaleSpecFit(t *testing.T) {
	cases := []struct {
		name       string
		spec       ScaleSpec
		srcW, srcH int
		wantW      int
		wantH      int
	}{
		{"original", ScaleOriginal, 1920, 1080, 1920, 1080},
		{"landscape capped", 480, 1920, 1080, 480, 270},
		{"portrait capped", 480, 1080, 1920, 270, 480},
		{"already smaller", 480, 320, 240, 320, 240},
		{"odd ratio floors", 100, 1279, 719, 100, 56},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := tc.spec.Fit(tc.srcW, tc.srcH)
			if w != tc.wantW || h != tc.wantH {
				t.Errorf("Fit(%d,%d) = %dx%d, want %dx%d",
					tc.srcW, tc.srcH, w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestFitWidth(t *testing.T) {
	w, h := FitWidth(1920, 1080, 48)
	if w != 48 || h != 27 {
		t.Errorf("FitWidth(1920,1080,48) = %dx%d, want 48x27", w, h)
	}

	w, h = FitWidth(100, 30, 48)
	if w != 48 || h != 14 {
		t.Errorf("FitWidth(100,30,48) = %dx%d, want 48x14", w, h)
	}
}

func TestSequenceDurationSums(t *testing.T) {
	seq := NewSequence(4, 4)
	durations := []time.Duration{
		40 * time.Millisecond,
		110 * time.Millisecond,
		250 * time.Millisecond,
	}
	for _, d := range durations {
		if err := seq.Append(NewBuffer(4, 4, d)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	want := 400 * time.Millisecond
	if got := seq.Duration(); got != want {
		t.Errorf("non-uniform durations must sum exactly: got %v, want %v", got, want)
	}
	if seq.Len() != 3 {
		t.Errorf("expected 3 frames, got %d", seq.Len())
	}
}

func TestSequenceRejectsMismatchedFrame(t *testing.T) {
	seq := NewSequence(4, 4)
	err := seq.Append(NewBuffer(8, 8, time.Millisecond))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBufferClone(t *testing.T) {
	a := solidBuffer(4, 4, 1, 2, 3)
	b := a.Clone()
	b.Pix[0] = 99

	if a.Pix[0] == 99 {
		t.Error("clone must not share pixel storage")
	}
	if b.Duration != a.Duration {
		t.Errorf("clone must keep duration: %v vs %v", b.Duration, a.Duration)
	}
}
