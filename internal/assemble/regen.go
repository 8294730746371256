package assemble

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period a parameter change must survive
// before regeneration starts
const DefaultDebounce = 400 * time.Millisecond

// Result is one successful regeneration: the encoded blob for the
// parameters that were current when its run started.
type Result struct {
	Encoded []byte
}

// RegenFunc produces the encoded active range. It must honor ctx: a
// cancelled run may return early with ctx.Err().
type RegenFunc func(ctx context.Context) (*Result, error)

// Regenerator is a debounced single-flight supervisor around a RegenFunc.
// Every Trigger restarts the quiet-period timer and cancels whatever run
// is in flight; a run's result is published only if no newer trigger
// arrived while it was executing, so stale encodes are never observed.
type Regenerator struct {
	logger  zerolog.Logger
	delay   time.Duration
	regen   RegenFunc
	results chan *Result

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewRegenerator creates a regenerator. A non-positive delay falls back to
// DefaultDebounce.
func NewRegenerator(logger zerolog.Logger, delay time.Duration, regen RegenFunc) *Regenerator {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Regenerator{
		logger:  logger.With().Str("component", "regenerator").Logger(),
		delay:   delay,
		regen:   regen,
		results: make(chan *Result, 1),
	}
}

// Results yields the latest successful regeneration. The channel holds at
// most one pending result; a newer one replaces an unconsumed older one.
func (r *Regenerator) Results() <-chan *Result {
	return r.results
}

// Trigger notes a parameter change: it cancels any scheduled or in-flight
// regeneration and restarts the quiet-period timer.
func (r *Regenerator) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.gen++
	gen := r.gen

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, func() {
		r.fire(gen)
	})
}

// fire runs one regeneration for the given generation
func (r *Regenerator) fire(gen uint64) {
	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.mu.Unlock()

	result, err := r.regen(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	stale := r.closed || gen != r.gen || ctx.Err() != nil
	cancel()
	if stale {
		r.logger.Debug().Uint64("gen", gen).Msg("discarding stale regeneration")
		return
	}
	if err != nil {
		// Surfaced per regeneration; the timeline stays usable
		r.logger.Error().Err(err).Uint64("gen", gen).Msg("regeneration failed")
		return
	}

	select {
	case r.results <- result:
	default:
		// Replace the unconsumed previous result with the newer one
		select {
		case <-r.results:
		default:
		}
		r.results <- result
	}
}

// Close cancels any pending or in-flight regeneration. No results are
// published after Close returns.
func (r *Regenerator) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
