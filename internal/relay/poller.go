package relay

import (
	"context"
	"time"
)

// Changed is the poller's change detector: exact string inequality against
// the previous sample. Kept as a named function so the diff rule is a unit of
// its own rather than buried in the loop.
func Changed(prev, cur string) bool {
	return prev != cur
}

// Poller samples a capture function at a fixed interval and pushes a sample
// only when it differs from the previous one. The first successful capture
// is always pushed. Pushes happen in program order on a single goroutine, so
// samples are never reordered within one subscription.
type Poller struct {
	// Interval is the fixed period between samples.
	Interval time.Duration
	// Capture takes one sample of the watched output.
	Capture func() (string, error)
	// Push delivers a changed sample. A push error ends the loop quietly
	// (the client went away).
	Push func(sample string) error
	// Fail is called once when Capture fails; the loop then ends.
	Fail func(err error)
}

// Run polls until ctx is cancelled, Capture fails, or Push reports a dead
// client. Cancellation is observed within one interval.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	var last string
	seeded := false
	for {
		sample, err := p.Capture()
		if err != nil {
			if p.Fail != nil {
				p.Fail(err)
			}
			return
		}
		if !seeded || Changed(last, sample) {
			if err := p.Push(sample); err != nil {
				return
			}
			last = sample
			seeded = true
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
