package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/gifslice/internal/assemble"
	"github.com/kikiluvv/gifslice/internal/codec"
	"github.com/kikiluvv/gifslice/internal/frame"
)

// CombineSession is one user session of the combine feature: decoded
// sources on a timeline, plus a debounced regenerator that re-encodes the
// active range after each burst of parameter changes. Intermediate slider
// positions never cause an encode of their own.
type CombineSession struct {
	logger  zerolog.Logger
	enc     codec.Encoder
	encOpts codec.Options
	regen   *assemble.Regenerator

	mu       sync.Mutex
	timeline *assemble.Timeline
}

// NewCombineSession decodes the input clips and opens a session over them.
// No regeneration is scheduled until the first parameter change or an
// explicit Refresh, so the first published result always reflects the
// parameters the caller actually set.
func (p *Pipeline) NewCombineSession(ctx context.Context, inputs []string) (*CombineSession, error) {
	sequences := make([]*frame.Sequence, 0, len(inputs))
	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seq, err := p.decodeClip(path)
		if err != nil {
			return nil, err
		}
		p.logger.Debug().
			Str("clip", path).
			Int("frames", seq.Len()).
			Dur("duration", seq.Duration()).
			Msg("clip decoded")
		sequences = append(sequences, seq)
	}

	timeline, err := assemble.NewTimeline(p.logger, sequences...)
	if err != nil {
		return nil, err
	}

	s := &CombineSession{
		logger:   p.logger.With().Str("component", "combine-session").Logger(),
		enc:      p.enc,
		timeline: timeline,
		encOpts: codec.Options{
			Quality: p.cfg.Encoder.Quality,
			Dither:  p.cfg.Encoder.Dither,
		},
	}

	debounce := time.Duration(p.cfg.Combine.DebounceMs) * time.Millisecond
	s.regen = assemble.NewRegenerator(p.logger, debounce, s.regenerate)

	return s, nil
}

// Refresh schedules a regeneration with the current parameters without
// changing any of them
func (s *CombineSession) Refresh() {
	s.regen.Trigger()
}

// SetEncodeOptions overrides the session's encode parameters and schedules
// a regeneration with them
func (s *CombineSession) SetEncodeOptions(opts codec.Options) {
	s.mu.Lock()
	s.encOpts = opts
	s.mu.Unlock()
	s.regen.Trigger()
}

// Reorder replaces the source order and schedules a regeneration. The trim
// range resets to the full span of the new order.
func (s *CombineSession) Reorder(order []int) error {
	s.mu.Lock()
	err := s.timeline.Reorder(order)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.regen.Trigger()
	return nil
}

// SetTrimStart moves the left trim handle and schedules a regeneration
func (s *CombineSession) SetTrimStart(i int) {
	s.mu.Lock()
	s.timeline.SetTrimStart(i)
	s.mu.Unlock()
	s.regen.Trigger()
}

// SetTrimEnd moves the right trim handle and schedules a regeneration
func (s *CombineSession) SetTrimEnd(i int) {
	s.mu.Lock()
	s.timeline.SetTrimEnd(i)
	s.mu.Unlock()
	s.regen.Trigger()
}

// Timeline exposes the underlying timeline for metric reads
func (s *CombineSession) Timeline() *assemble.Timeline {
	return s.timeline
}

// Results yields an encoded blob for every regeneration that survives the
// debounce window
func (s *CombineSession) Results() <-chan *assemble.Result {
	return s.regen.Results()
}

// Wait blocks for the next successful regeneration
func (s *CombineSession) Wait(ctx context.Context) ([]byte, error) {
	select {
	case result := <-s.regen.Results():
		return result.Encoded, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// regenerate snapshots the active range and encodes it
func (s *CombineSession) regenerate(ctx context.Context) (*assemble.Result, error) {
	s.mu.Lock()
	active := s.timeline.ActiveRange()
	opts := s.encOpts
	s.mu.Unlock()

	if active.Len() == 0 {
		return nil, fmt.Errorf("nothing selected")
	}

	data, err := s.enc.Encode(ctx, active, opts)
	if err != nil {
		return nil, err
	}
	return &assemble.Result{Encoded: data}, nil
}

// Close tears the session down; pending regenerations are cancelled and
// their results discarded
func (s *CombineSession) Close() {
	s.regen.Close()
}
