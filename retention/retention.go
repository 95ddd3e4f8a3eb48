// Package retention decides whether a freshly computed query result is
// worth caching, based on how long it took to compute.
package retention

import (
	"context"
	"time"

	"github.com/jonwraymond/storagecache/observe"
)

// DefaultThreshold is the retention threshold used when none is configured.
const DefaultThreshold = 2 * time.Second

// ThresholdSource supplies the current minimum computation time a result
// must have taken to be cached. It is read on every decision, so an
// implementation backed by live configuration takes effect immediately.
type ThresholdSource interface {
	RetentionThreshold() time.Duration
}

// ThresholdFunc adapts a function to ThresholdSource.
type ThresholdFunc func() time.Duration

// RetentionThreshold calls f.
func (f ThresholdFunc) RetentionThreshold() time.Duration { return f() }

// FixedThreshold is a ThresholdSource that never changes.
type FixedThreshold time.Duration

// RetentionThreshold returns the fixed threshold.
func (t FixedThreshold) RetentionThreshold() time.Duration { return time.Duration(t) }

// Decide reports whether a result that took elapsed to compute should be
// cached under threshold. The boundary is cacheable.
func Decide(elapsed, threshold time.Duration) bool {
	return elapsed >= threshold
}

// Policy applies Decide to wall-clock computation time.
type Policy struct {
	source ThresholdSource
	logger observe.Logger
	now    func() time.Time
}

// Option configures a Policy.
type Option func(*Policy)

// WithLogger sets the logger used for skip decisions.
func WithLogger(l observe.Logger) Option {
	return func(p *Policy) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPolicy creates a Policy reading its threshold from source. A nil
// source means a zero threshold: every result is cached.
func NewPolicy(source ThresholdSource, opts ...Option) *Policy {
	if source == nil {
		source = FixedThreshold(0)
	}
	p := &Policy{
		source: source,
		logger: observe.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ShouldCache reports whether a computation that started at start has
// run long enough for its result to be cached.
func (p *Policy) ShouldCache(ctx context.Context, start time.Time) bool {
	elapsed := p.now().Sub(start)
	threshold := p.source.RetentionThreshold()

	if Decide(elapsed, threshold) {
		return true
	}

	p.logger.Info(ctx, "skip caching result: computation faster than retention threshold",
		observe.Field{Key: "elapsed_ms", Value: elapsed.Milliseconds()},
		observe.Field{Key: "threshold_ms", Value: threshold.Milliseconds()},
	)
	return false
}
