package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/storagecache/registry"
)

// DefaultWarningRatio is the share of a region's byte bound above which
// the region is reported as degraded.
const DefaultWarningRatio = 0.9

// RegistryCheckerName is the name reported by RegistryChecker.
const RegistryCheckerName = "storagecache.registry"

// RegistryChecker reports on a cache registry and its regions.
//
// The result is unhealthy when the registry is closed or its template
// could not be bootstrapped, degraded when any region uses more than the
// warning ratio of its MaxBytes, and healthy otherwise. Details carry one
// entry per source with its entry and byte counts.
type RegistryChecker struct {
	reg          *registry.Registry
	warningRatio float64
}

// RegistryCheckerOption configures a RegistryChecker.
type RegistryCheckerOption func(*RegistryChecker)

// WithWarningRatio sets the byte usage ratio above which a region is
// degraded. Values outside (0, 1] are ignored.
func WithWarningRatio(ratio float64) RegistryCheckerOption {
	return func(c *RegistryChecker) {
		if ratio > 0 && ratio <= 1 {
			c.warningRatio = ratio
		}
	}
}

// NewRegistryChecker creates a checker for reg.
func NewRegistryChecker(reg *registry.Registry, opts ...RegistryCheckerOption) *RegistryChecker {
	c := &RegistryChecker{reg: reg, warningRatio: DefaultWarningRatio}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns RegistryCheckerName.
func (c *RegistryChecker) Name() string { return RegistryCheckerName }

// Check inspects the registry. Checking resolves the region template if
// no region has done so yet.
func (c *RegistryChecker) Check(_ context.Context) Result {
	start := time.Now()

	if c.reg.Closed() {
		return Unhealthy("registry is closed", fmt.Errorf("%w: %w", ErrCheckFailed, registry.ErrClosed)).
			WithDuration(time.Since(start))
	}
	if _, err := c.reg.Template(); err != nil {
		return Unhealthy("region template bootstrap failed", fmt.Errorf("%w: %w", ErrCheckFailed, err)).
			WithDuration(time.Since(start))
	}

	details := make(map[string]any)
	var full []string
	for _, id := range c.reg.Sources() {
		r, ok := c.reg.Lookup(id)
		if !ok {
			continue
		}
		stats := r.Stats()
		details[id] = map[string]any{
			"entries":   stats.Entries,
			"bytes":     stats.Bytes,
			"hits":      stats.Hits,
			"misses":    stats.Misses,
			"evictions": stats.Evictions,
		}
		if limit := r.Template().MaxBytes; limit > 0 && float64(stats.Bytes) > c.warningRatio*float64(limit) {
			full = append(full, id)
		}
	}

	var result Result
	if len(full) > 0 {
		result = Degraded(fmt.Sprintf("regions near byte capacity: %s", strings.Join(full, ", ")))
	} else {
		result = Healthy(fmt.Sprintf("%d regions provisioned", len(details)))
	}
	return result.WithDetails(details).WithDuration(time.Since(start))
}

var _ Checker = (*RegistryChecker)(nil)
