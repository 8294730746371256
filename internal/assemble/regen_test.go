package assemble

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitResult(t *testing.T, r *Regenerator) *Result {
	t.Helper()
	select {
	case res := <-r.Results():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a regeneration result")
		return nil
	}
}

func TestRapidTriggersCoalesceIntoOneRun(t *testing.T) {
	var runs atomic.Int64
	regen := func(ctx context.Context) (*Result, error) {
		runs.Add(1)
		return &Result{Encoded: []byte("out")}, nil
	}

	r := NewRegenerator(testLogger(), 30*time.Millisecond, regen)
	defer r.Close()

	for i := 0; i < 10; i++ {
		r.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	waitResult(t, r)

	// Allow any extra scheduled run to fire before counting
	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("expected a burst of triggers to run once, ran %d times", got)
	}
}

func TestTriggerDuringRunDiscardsStaleResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int64

	regen := func(ctx context.Context) (*Result, error) {
		n := runs.Add(1)
		if n == 1 {
			close(started)
			<-release
			return &Result{Encoded: []byte("stale")}, nil
		}
		return &Result{Encoded: []byte("fresh")}, nil
	}

	r := NewRegenerator(testLogger(), 10*time.Millisecond, regen)
	defer r.Close()

	r.Trigger()
	<-started

	// Supersede the in-flight run, then let it finish
	r.Trigger()
	close(release)

	res := waitResult(t, r)
	if string(res.Encoded) != "fresh" {
		t.Fatalf("expected the superseding run's result, got %q", res.Encoded)
	}

	select {
	case res := <-r.Results():
		t.Errorf("stale result %q leaked through", res.Encoded)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnconsumedResultIsReplaced(t *testing.T) {
	done := make(chan struct{}, 2)
	var runs atomic.Int64

	regen := func(ctx context.Context) (*Result, error) {
		n := runs.Add(1)
		defer func() { done <- struct{}{} }()
		if n == 1 {
			return &Result{Encoded: []byte("first")}, nil
		}
		return &Result{Encoded: []byte("second")}, nil
	}

	r := NewRegenerator(testLogger(), 5*time.Millisecond, regen)
	defer r.Close()

	r.Trigger()
	<-done
	r.Trigger()
	<-done

	res := waitResult(t, r)
	if string(res.Encoded) != "second" {
		t.Errorf("expected the newer result to replace the unconsumed one, got %q", res.Encoded)
	}
}

func TestFailedRunPublishesNothing(t *testing.T) {
	var runs atomic.Int64
	regen := func(ctx context.Context) (*Result, error) {
		if runs.Add(1) == 1 {
			return nil, context.Canceled
		}
		return &Result{Encoded: []byte("ok")}, nil
	}

	r := NewRegenerator(testLogger(), 5*time.Millisecond, regen)
	defer r.Close()

	r.Trigger()
	time.Sleep(40 * time.Millisecond)

	select {
	case res := <-r.Results():
		t.Fatalf("failed run must not publish, got %q", res.Encoded)
	default:
	}

	// The regenerator stays usable after a failure
	r.Trigger()
	res := waitResult(t, r)
	if string(res.Encoded) != "ok" {
		t.Errorf("expected a later run to succeed, got %q", res.Encoded)
	}
}

func TestCloseStopsPendingRuns(t *testing.T) {
	var runs atomic.Int64
	regen := func(ctx context.Context) (*Result, error) {
		runs.Add(1)
		return &Result{Encoded: []byte("out")}, nil
	}

	r := NewRegenerator(testLogger(), 20*time.Millisecond, regen)
	r.Trigger()
	r.Close()

	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("expected no runs after Close, got %d", got)
	}

	// Triggers after Close are no-ops
	r.Trigger()
	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("expected post-Close trigger to be ignored, ran %d times", got)
	}
}
