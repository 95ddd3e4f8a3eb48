package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/storagecache/observe"
	"github.com/jonwraymond/storagecache/region"
)

// Sentinel errors for registry operations.
var (
	// ErrConfiguration indicates the region template could not be bootstrapped.
	// It is fatal: the same error is returned by every later call.
	ErrConfiguration = errors.New("registry: configuration error")

	// ErrInvalidSource indicates an empty source identifier. Identifiers
	// are otherwise opaque and compared byte for byte.
	ErrInvalidSource = errors.New("registry: source identifier is empty")

	// ErrClosed is returned once the registry has been closed.
	ErrClosed = errors.New("registry: registry is closed")
)

// Registry maps source identifiers to their cache regions, creating each
// region on first use from the registry's template.
//
// Contract:
//   - Concurrency: safe for concurrent use. Lookups of existing regions
//     share a read lock; creation is coordinated per source so unrelated
//     sources never wait on each other.
//   - Lifecycle: construct one Registry at startup, pass it to every
//     CachedQuery, and Close it at shutdown.
type Registry struct {
	template   *region.Template
	logger     observe.Logger
	regionOpts []region.Option

	bootstrap func() (region.Template, error)

	mu      sync.RWMutex
	regions map[string]*region.Region
	closed  bool

	creating singleflight.Group
}

// Option configures a Registry.
type Option func(*Registry)

// WithTemplate sets the template new regions are cloned from. Without it
// the registry bootstraps region.DefaultTemplate on first use.
func WithTemplate(tmpl region.Template) Option {
	return func(r *Registry) { r.template = &tmpl }
}

// WithLogger sets the logger for bootstrap and region creation events.
func WithLogger(l observe.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegionOptions passes options to every region the registry creates.
func WithRegionOptions(opts ...region.Option) Option {
	return func(r *Registry) { r.regionOpts = append(r.regionOpts, opts...) }
}

// New creates an empty registry. No region and no template exists until
// the first call to RegionFor or Template.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:  observe.NopLogger(),
		regions: make(map[string]*region.Region),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.bootstrap = sync.OnceValues(r.resolveTemplate)
	return r
}

// Template returns the template regions are cloned from, resolving it on
// the first call. A failed bootstrap is never retried.
func (r *Registry) Template() (region.Template, error) {
	return r.bootstrap()
}

func (r *Registry) resolveTemplate() (region.Template, error) {
	ctx := context.Background()

	var tmpl region.Template
	if r.template != nil {
		tmpl = *r.template
	} else {
		r.logger.Info(ctx, "region template not provided, bootstrapping defaults")
		tmpl = region.DefaultTemplate()
	}

	if err := tmpl.Validate(); err != nil {
		r.logger.Error(ctx, "region template rejected", observe.Field{Key: "error", Value: err})
		return region.Template{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return tmpl, nil
}

// RegionFor returns the region for sourceID, creating it from the template
// if it does not exist yet. Concurrent first calls for the same source
// create exactly one region and all receive it.
func (r *Registry) RegionFor(ctx context.Context, sourceID string) (*region.Region, error) {
	if sourceID == "" {
		return nil, ErrInvalidSource
	}

	if reg, err := r.lookup(sourceID); reg != nil || err != nil {
		return reg, err
	}

	tmpl, err := r.Template()
	if err != nil {
		return nil, err
	}

	v, err, _ := r.creating.Do(sourceID, func() (any, error) {
		// A previous flight may have inserted the region after our lookup.
		if reg, err := r.lookup(sourceID); reg != nil || err != nil {
			return reg, err
		}
		return r.create(ctx, sourceID, tmpl)
	})
	if err != nil {
		return nil, err
	}
	return v.(*region.Region), nil
}

func (r *Registry) lookup(sourceID string) (*region.Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrClosed
	}
	return r.regions[sourceID], nil
}

func (r *Registry) create(ctx context.Context, sourceID string, tmpl region.Template) (*region.Region, error) {
	reg, err := region.New(sourceID, tmpl, r.regionOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = reg.Close()
		return nil, ErrClosed
	}
	r.regions[sourceID] = reg
	r.mu.Unlock()

	r.logger.WithSource(sourceID).Info(ctx, "region created",
		observe.Field{Key: "persistence", Value: string(tmpl.Persistence)},
		observe.Field{Key: "eviction", Value: string(tmpl.Eviction)},
		observe.Field{Key: "max_entries", Value: tmpl.MaxEntries},
		observe.Field{Key: "max_bytes", Value: tmpl.MaxBytes},
		observe.Field{Key: "idle_expiry", Value: tmpl.IdleExpiry.String()},
	)
	return reg, nil
}

// Lookup returns the region for sourceID without creating it.
func (r *Registry) Lookup(sourceID string) (*region.Region, bool) {
	reg, err := r.lookup(sourceID)
	return reg, err == nil && reg != nil
}

// Sources returns the identifiers of every provisioned region, sorted.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.regions))
	for id := range r.regions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Stats returns a snapshot of every region's counters keyed by source.
func (r *Registry) Stats() map[string]region.Stats {
	r.mu.RLock()
	regions := make(map[string]*region.Region, len(r.regions))
	for id, reg := range r.regions {
		regions[id] = reg
	}
	r.mu.RUnlock()

	out := make(map[string]region.Stats, len(regions))
	for id, reg := range regions {
		out[id] = reg.Stats()
	}
	return out
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Close closes every region. Later calls to RegionFor fail with ErrClosed.
// Safe to call more than once.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	regions := r.regions
	r.regions = make(map[string]*region.Region)
	r.mu.Unlock()

	var errs []error
	for id, reg := range regions {
		if err := reg.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close region %q: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
