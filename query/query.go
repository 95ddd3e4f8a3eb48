package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/storagecache/fingerprint"
	"github.com/jonwraymond/storagecache/observe"
	"github.com/jonwraymond/storagecache/region"
	"github.com/jonwraymond/storagecache/registry"
	"github.com/jonwraymond/storagecache/retention"
)

// Sentinel errors for query construction.
var (
	// ErrNilRegistry is returned when NewCachedQuery is given no registry.
	ErrNilRegistry = errors.New("query: registry is nil")

	// ErrNilExecutor is returned when NewCachedQuery is given no executor.
	ErrNilExecutor = errors.New("query: executor is nil")
)

// Executor runs queries against one data source.
//
// Contract:
//   - SourceID must be stable for the executor's lifetime.
//   - Run must be safe for concurrent use.
//   - Errors returned by Run are passed to the caller unchanged.
type Executor interface {
	SourceID() string
	Run(ctx context.Context, descriptor any) (any, error)
}

// RunFunc is the signature of an executor invocation.
type RunFunc func(ctx context.Context, descriptor any) (any, error)

type funcExecutor struct {
	sourceID string
	run      RunFunc
}

func (e funcExecutor) SourceID() string { return e.sourceID }

func (e funcExecutor) Run(ctx context.Context, descriptor any) (any, error) {
	return e.run(ctx, descriptor)
}

// NewExecutor adapts a function to Executor for the given source.
func NewExecutor(sourceID string, run RunFunc) Executor {
	return funcExecutor{sourceID: sourceID, run: run}
}

// CachedQuery executes queries for one source, serving repeats from the
// source's region and keeping only results that were expensive to compute.
type CachedQuery struct {
	registry *registry.Registry
	exec     Executor
	sourceID string

	fingerprinter fingerprint.Fingerprinter
	policy        *retention.Policy
	logger        observe.Logger
	metrics       observe.Metrics
	middleware    *observe.Middleware
	now           func() time.Time

	run observe.RunFunc
}

// Option configures a CachedQuery.
type Option func(*CachedQuery)

// WithFingerprinter sets how descriptors become cache keys.
func WithFingerprinter(f fingerprint.Fingerprinter) Option {
	return func(q *CachedQuery) {
		if f != nil {
			q.fingerprinter = f
		}
	}
}

// WithPolicy sets the retention policy. Without it results are kept when
// they took at least retention.DefaultThreshold.
func WithPolicy(p *retention.Policy) Option {
	return func(q *CachedQuery) { q.policy = p }
}

// WithLogger sets the logger for degraded lookups.
func WithLogger(l observe.Logger) Option {
	return func(q *CachedQuery) { q.logger = l }
}

// WithMiddleware wraps every executor invocation with m.
func WithMiddleware(m *observe.Middleware) Option {
	return func(q *CachedQuery) { q.middleware = m }
}

// WithMetrics sets the recorder for lookups, retention decisions and
// degradations.
func WithMetrics(m observe.Metrics) Option {
	return func(q *CachedQuery) { q.metrics = m }
}

// WithClock overrides time.Now for measuring computation time. It also
// drives the default policy.
func WithClock(now func() time.Time) Option {
	return func(q *CachedQuery) {
		if now != nil {
			q.now = now
		}
	}
}

// NewCachedQuery binds exec to its source's region in reg. The region is
// provisioned immediately, so configuration errors surface here.
func NewCachedQuery(ctx context.Context, reg *registry.Registry, exec Executor, opts ...Option) (*CachedQuery, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if exec == nil {
		return nil, ErrNilExecutor
	}

	q := &CachedQuery{
		registry:      reg,
		exec:          exec,
		sourceID:      exec.SourceID(),
		fingerprinter: fingerprint.Default{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}

	if q.logger == nil {
		if q.middleware != nil {
			q.logger = q.middleware.Logger()
		} else {
			q.logger = observe.NopLogger()
		}
	}
	if q.metrics == nil {
		if q.middleware != nil {
			q.metrics = q.middleware.Metrics()
		} else {
			q.metrics = observe.NopMetrics()
		}
	}
	if q.policy == nil {
		q.policy = retention.NewPolicy(
			retention.FixedThreshold(retention.DefaultThreshold),
			retention.WithLogger(q.logger.WithSource(q.sourceID)),
			retention.WithClock(q.now),
		)
	}

	q.run = func(ctx context.Context, _ observe.QueryMeta, descriptor any) (any, error) {
		return exec.Run(ctx, descriptor)
	}
	if q.middleware != nil {
		q.run = q.middleware.Wrap(q.run)
	}

	if _, err := reg.RegionFor(ctx, q.sourceID); err != nil {
		return nil, fmt.Errorf("query: source %q: %w", q.sourceID, err)
	}
	return q, nil
}

// SourceID returns the source this query is bound to.
func (q *CachedQuery) SourceID() string { return q.sourceID }

// Region returns the source's region, or nil if the registry is closed.
func (q *CachedQuery) Region() *region.Region {
	reg, _ := q.registry.Lookup(q.sourceID)
	return reg
}

// Execute returns the result for descriptor. A cached result is returned
// without running the executor. Otherwise the executor runs and its result
// is stored if the retention policy accepts the computation time.
// Executor errors are returned unchanged and never cached.
//
// Failures of the cache itself never fail the query: the lookup degrades
// to an uncached execution and is logged.
func (q *CachedQuery) Execute(ctx context.Context, descriptor any) (any, error) {
	meta := observe.QueryMeta{SourceID: q.sourceID}

	fp, err := q.fingerprinter.Fingerprint(descriptor)
	if err != nil {
		q.degrade(ctx, observe.StageFingerprint, err)
		return q.run(ctx, meta, descriptor)
	}
	key := fp.String()
	meta.Fingerprint = key

	reg, err := q.registry.RegionFor(ctx, q.sourceID)
	if err != nil {
		q.degrade(ctx, observe.StageRegion, err)
		return q.run(ctx, meta, descriptor)
	}

	if cached, ok := reg.Get(key); ok {
		q.metrics.RecordLookup(ctx, q.sourceID, true)
		return cached, nil
	}
	q.metrics.RecordLookup(ctx, q.sourceID, false)

	start := q.now()
	result, err := q.run(ctx, meta, descriptor)
	if err != nil {
		return nil, err
	}

	stored := q.policy.ShouldCache(ctx, start)
	if stored {
		if err := reg.Put(key, result); err != nil {
			stored = false
			q.degrade(ctx, observe.StageStore, err)
		}
	}
	q.metrics.RecordRetention(ctx, q.sourceID, stored)

	return result, nil
}

func (q *CachedQuery) degrade(ctx context.Context, stage string, err error) {
	q.metrics.RecordDegradation(ctx, q.sourceID, stage)
	q.logger.WithSource(q.sourceID).Warn(ctx, "cache unavailable, executing uncached",
		observe.Field{Key: "stage", Value: stage},
		observe.Field{Key: "error", Value: err},
	)
}
