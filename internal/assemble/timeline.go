// Package assemble recombines decoded frame sequences: source reordering,
// inclusive-range trimming over a flattened timeline, and debounced
// regeneration of the active range.
package assemble

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/gifslice/internal/frame"
)

// Timeline flattens N ordered frame sequences into one frame index and
// tracks an inclusive trim range [start, end] over it. The flattened index
// is recomputed from scratch whenever source order changes, never patched.
// Invariant: 0 <= start <= end < len whenever the index is non-empty; both
// collapse to 0 when it is empty.
type Timeline struct {
	logger  zerolog.Logger
	sources []*frame.Sequence
	flat    []*frame.Buffer
	start   int
	end     int
}

// NewTimeline builds a timeline over the given sources. All sources must
// share one resolution; combining mixed resolutions fails fast rather than
// silently rescaling.
func NewTimeline(logger zerolog.Logger, sources ...*frame.Sequence) (*Timeline, error) {
	for i := 1; i < len(sources); i++ {
		if sources[i].Width != sources[0].Width || sources[i].Height != sources[0].Height {
			return nil, fmt.Errorf("%w: source %d is %dx%d, source 0 is %dx%d",
				frame.ErrDimensionMismatch, i, sources[i].Width, sources[i].Height,
				sources[0].Width, sources[0].Height)
		}
	}

	t := &Timeline{
		logger:  logger.With().Str("component", "timeline").Logger(),
		sources: sources,
	}
	t.rebuild()
	t.resetTrim()
	return t, nil
}

// rebuild recomputes the flattened index from current source order
func (t *Timeline) rebuild() {
	total := 0
	for _, src := range t.sources {
		total += src.Len()
	}
	t.flat = make([]*frame.Buffer, 0, total)
	for _, src := range t.sources {
		t.flat = append(t.flat, src.Frames...)
	}
}

// resetTrim selects the full span, or the empty [0,0] marker
func (t *Timeline) resetTrim() {
	t.start = 0
	if len(t.flat) == 0 {
		t.end = 0
		return
	}
	t.end = len(t.flat) - 1
}

// Len returns the flattened frame count
func (t *Timeline) Len() int {
	return len(t.flat)
}

// SourceCount returns the number of sources
func (t *Timeline) SourceCount() int {
	return len(t.sources)
}

// Reorder replaces the source order with the given permutation, recomputes
// the flattened index and resets the trim range to the full span.
func (t *Timeline) Reorder(order []int) error {
	if len(order) != len(t.sources) {
		return fmt.Errorf("order has %d entries, timeline has %d sources", len(order), len(t.sources))
	}
	seen := make([]bool, len(t.sources))
	for _, idx := range order {
		if idx < 0 || idx >= len(t.sources) || seen[idx] {
			return fmt.Errorf("order %v is not a permutation of sources", order)
		}
		seen[idx] = true
	}

	reordered := make([]*frame.Sequence, len(order))
	for pos, idx := range order {
		reordered[pos] = t.sources[idx]
	}
	t.sources = reordered
	t.rebuild()
	t.resetTrim()

	t.logger.Debug().Ints("order", order).Int("frames", len(t.flat)).Msg("sources reordered")
	return nil
}

// clampIndex pins an index into the valid flattened range
func (t *Timeline) clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if len(t.flat) == 0 {
		return 0
	}
	if i > len(t.flat)-1 {
		return len(t.flat) - 1
	}
	return i
}

// SetTrimStart moves the left handle. Raising it above the right handle
// drags the right handle along: the bounds never cross.
func (t *Timeline) SetTrimStart(i int) {
	t.start = t.clampIndex(i)
	if t.end < t.start {
		t.end = t.start
	}
}

// SetTrimEnd moves the right handle, dragging the left one down with it
// when it would otherwise cross.
func (t *Timeline) SetTrimEnd(i int) {
	t.end = t.clampIndex(i)
	if t.start > t.end {
		t.start = t.end
	}
}

// TrimRange returns the current inclusive trim bounds
func (t *Timeline) TrimRange() (start, end int) {
	return t.start, t.end
}

// ActiveRange concatenates the trimmed frames, in flattened order, into a
// fresh sequence. Frames are copied with their original durations so the
// result owns its buffers.
func (t *Timeline) ActiveRange() *frame.Sequence {
	width, height := 0, 0
	if len(t.sources) > 0 {
		width, height = t.sources[0].Width, t.sources[0].Height
	}
	seq := frame.NewSequence(width, height)
	if len(t.flat) == 0 {
		return seq
	}
	for i := t.start; i <= t.end; i++ {
		// Append cannot fail here: sources were dimension-checked on construction
		_ = seq.Append(t.flat[i].Clone())
	}
	return seq
}

// TotalDuration sums the display durations of every flattened frame
func (t *Timeline) TotalDuration() time.Duration {
	var total time.Duration
	for _, f := range t.flat {
		total += f.Duration
	}
	return total
}

// SelectedStart returns the timeline time at which the trimmed range begins
func (t *Timeline) SelectedStart() time.Duration {
	var total time.Duration
	for i := 0; i < t.start && i < len(t.flat); i++ {
		total += t.flat[i].Duration
	}
	return total
}

// SelectedEnd returns the timeline time at which the trimmed range ends
// (inclusive of the last selected frame's display time)
func (t *Timeline) SelectedEnd() time.Duration {
	var total time.Duration
	for i := 0; i <= t.end && i < len(t.flat); i++ {
		total += t.flat[i].Duration
	}
	return total
}

// SelectedDuration sums the durations of the trimmed range only
func (t *Timeline) SelectedDuration() time.Duration {
	if len(t.flat) == 0 {
		return 0
	}
	var total time.Duration
	for i := t.start; i <= t.end; i++ {
		total += t.flat[i].Duration
	}
	return total
}

// SelectedFrameCount returns the number of frames in the trimmed range
func (t *Timeline) SelectedFrameCount() int {
	if len(t.flat) == 0 {
		return 0
	}
	return t.end - t.start + 1
}
