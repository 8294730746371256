package pipeline

import (
	"time"
)

// ProgressFunc receives sampling progress during a split run: samples
// consumed so far and the total the run will consume.
type ProgressFunc func(done, total int)

// SplitOptions configures one segmentation run. Zero values fall back to
// the loaded configuration defaults.
type SplitOptions struct {
	SampleRate     float64
	MaxDimension   int
	Threshold      float64
	MinSceneFrames int
	Quality        int
	Dither         bool
	OutputDir      string
	OnProgress     ProgressFunc // optional; called once per rendered sample
}

// SceneResult describes one scene the split run produced
type SceneResult struct {
	Ordinal    int
	Name       string
	Frames     int
	Duration   time.Duration
	OutputPath string
	EncodeErr  error
}

// CombineOptions configures one combine run
type CombineOptions struct {
	Order      []int // permutation of inputs; empty keeps given order
	TrimStart  int   // flattened frame index; -1 keeps the full span
	TrimEnd    int
	Quality    int
	Dither     bool
	OutputPath string
}

// CombineResult summarizes a finished combine run
type CombineResult struct {
	OutputPath    string
	Frames        int
	Duration      time.Duration
	TotalFrames   int
	TotalDuration time.Duration
}
