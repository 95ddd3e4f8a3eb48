package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricLookupTotal    = "storagecache.lookup.total"
	MetricExecTotal      = "storagecache.exec.total"
	MetricExecErrors     = "storagecache.exec.errors"
	MetricExecDuration   = "storagecache.exec.duration_ms"
	MetricRetentionTotal = "storagecache.retention.total"
	MetricDegradedTotal  = "storagecache.degraded.total"
)

// Degradation stages reported by RecordDegradation.
const (
	StageFingerprint = "fingerprint"
	StageRegion      = "region"
	StageStore       = "store"
)

// Metrics records cache and execution metrics per source.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records a region lookup and whether it hit.
	RecordLookup(ctx context.Context, sourceID string, hit bool)

	// RecordExecution records an underlying executor invocation.
	RecordExecution(ctx context.Context, meta QueryMeta, duration time.Duration, err error)

	// RecordRetention records the retention decision for a fresh result.
	RecordRetention(ctx context.Context, sourceID string, stored bool)

	// RecordDegradation records a fail-open path taken at the given stage.
	RecordDegradation(ctx context.Context, sourceID, stage string)
}

type metricsImpl struct {
	lookups      metric.Int64Counter
	execTotal    metric.Int64Counter
	execErrors   metric.Int64Counter
	execDuration metric.Float64Histogram
	retention    metric.Int64Counter
	degraded     metric.Int64Counter
}

// NewMetrics creates Metrics backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookups, err := meter.Int64Counter(MetricLookupTotal,
		metric.WithDescription("Cache region lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	execTotal, err := meter.Int64Counter(MetricExecTotal,
		metric.WithDescription("Underlying query executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	execErrors, err := meter.Int64Counter(MetricExecErrors,
		metric.WithDescription("Failed underlying query executions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	execDuration, err := meter.Float64Histogram(MetricExecDuration,
		metric.WithDescription("Underlying query execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	retention, err := meter.Int64Counter(MetricRetentionTotal,
		metric.WithDescription("Retention decisions for freshly computed results"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	degraded, err := meter.Int64Counter(MetricDegradedTotal,
		metric.WithDescription("Queries that bypassed the cache after a cache-side failure"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		lookups:      lookups,
		execTotal:    execTotal,
		execErrors:   execErrors,
		execDuration: execDuration,
		retention:    retention,
		degraded:     degraded,
	}, nil
}

func (m *metricsImpl) RecordLookup(ctx context.Context, sourceID string, hit bool) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source.id", sourceID),
		attribute.Bool("cache.hit", hit),
	))
}

func (m *metricsImpl) RecordExecution(ctx context.Context, meta QueryMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("source.id", meta.SourceID))

	m.execTotal.Add(ctx, 1, opt)
	if err != nil {
		m.execErrors.Add(ctx, 1, opt)
	}
	m.execDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordRetention(ctx context.Context, sourceID string, stored bool) {
	m.retention.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source.id", sourceID),
		attribute.Bool("cache.stored", stored),
	))
}

func (m *metricsImpl) RecordDegradation(ctx context.Context, sourceID, stage string) {
	m.degraded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source.id", sourceID),
		attribute.String("stage", stage),
	))
}

// NopMetrics returns a Metrics implementation that does nothing.
func NopMetrics() Metrics { return noopMetrics{} }

type noopMetrics struct{}

func (noopMetrics) RecordLookup(context.Context, string, bool)                       {}
func (noopMetrics) RecordExecution(context.Context, QueryMeta, time.Duration, error) {}
func (noopMetrics) RecordRetention(context.Context, string, bool)                    {}
func (noopMetrics) RecordDegradation(context.Context, string, string)                {}
