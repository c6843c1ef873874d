package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestChanged(t *testing.T) {
	if Changed("a", "a") {
		t.Error("identical samples must not count as changed")
	}
	if !Changed("a", "b") {
		t.Error("different samples must count as changed")
	}
	if Changed("", "") {
		t.Error("empty samples are equal")
	}
	if !Changed("", "a") {
		t.Error("first non-empty sample is a change")
	}
}

// pollerHarness drives a Poller against a settable sample value and records
// every push.
type pollerHarness struct {
	mu     sync.Mutex
	sample string
	err    error
	pushes []string
	fails  []error
}

func (h *pollerHarness) set(sample string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sample = sample
}

func (h *pollerHarness) setErr(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *pollerHarness) capture() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sample, h.err
}

func (h *pollerHarness) push(sample string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushes = append(h.pushes, sample)
	return nil
}

func (h *pollerHarness) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fails = append(h.fails, err)
}

func (h *pollerHarness) pushCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pushes)
}

func (h *pollerHarness) poller(interval time.Duration) *Poller {
	return &Poller{
		Interval: interval,
		Capture:  h.capture,
		Push:     h.push,
		Fail:     h.fail,
	}
}

func TestPoller_FirstSampleAlwaysPushed(t *testing.T) {
	h := &pollerHarness{sample: "hello"}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.poller(5 * time.Millisecond).Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return h.pushCount() >= 1 })
	cancel()
	<-done

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.pushes) == 0 || h.pushes[0] != "hello" {
		t.Errorf("pushes = %v, want initial sample first", h.pushes)
	}
}

func TestPoller_UnchangedSamplePushesNothing(t *testing.T) {
	h := &pollerHarness{sample: "steady"}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	interval := 5 * time.Millisecond
	go func() {
		h.poller(interval).Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return h.pushCount() >= 1 })
	// No change for well over three intervals: zero further pushes.
	time.Sleep(6 * interval)
	cancel()
	<-done

	if got := h.pushCount(); got != 1 {
		t.Errorf("pushes = %d, want exactly 1 for an unchanged sample", got)
	}
}

func TestPoller_ChangedSamplePushed(t *testing.T) {
	h := &pollerHarness{sample: "one"}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.poller(5 * time.Millisecond).Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return h.pushCount() >= 1 })
	h.set("two")
	waitFor(t, func() bool { return h.pushCount() >= 2 })
	cancel()
	<-done

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pushes[len(h.pushes)-1] != "two" {
		t.Errorf("pushes = %v, want the changed sample last", h.pushes)
	}
}

func TestPoller_CaptureFailureEndsLoop(t *testing.T) {
	h := &pollerHarness{sample: "ok"}
	done := make(chan struct{})
	go func() {
		h.poller(5 * time.Millisecond).Run(context.Background())
		close(done)
	}()

	waitFor(t, func() bool { return h.pushCount() >= 1 })
	h.setErr(errors.New("session vanished"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not self-terminate on capture failure")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.fails) != 1 {
		t.Errorf("fails = %v, want exactly one", h.fails)
	}
}

func TestPoller_PushFailureEndsLoopQuietly(t *testing.T) {
	h := &pollerHarness{sample: "ok"}
	p := h.poller(5 * time.Millisecond)
	p.Push = func(string) error { return errors.New("client gone") }

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not end on push failure")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.fails) != 0 {
		t.Errorf("fails = %v, push failure is not a capture failure", h.fails)
	}
}

func TestPoller_CancelStopsWithinInterval(t *testing.T) {
	h := &pollerHarness{sample: "ok"}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	interval := 20 * time.Millisecond
	go func() {
		h.poller(interval).Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return h.pushCount() >= 1 })
	cancel()
	select {
	case <-done:
	case <-time.After(2 * interval):
		t.Fatal("loop survived cancellation for more than one interval")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
