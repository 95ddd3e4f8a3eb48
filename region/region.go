package region

import (
	"container/list"
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of a region's counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	Entries     int
	Bytes       int64
}

// entry is the value stored in the LRU list elements. The key is kept here
// because eviction starts from list nodes.
type entry struct {
	key        string
	value      any
	weight     int64
	insertedAt time.Time
	lastAccess time.Time
}

// Region is a bounded, idle-expiring key/value store for one source.
//
// Contract:
//   - Concurrency: safe for concurrent use; one mutex guards the map, the
//     recency list and the counters.
//   - Ordering: the list front is the most recently used entry. Every
//     successful Get and every Put moves its entry to the front, so the
//     list is also ordered by last access and idle-expired entries always
//     sit at the back.
//   - Ownership: values are stored and returned as-is and must not be
//     mutated by callers after Put.
type Region struct {
	name    string
	tmpl    Template
	weigh   Weigher
	now     func() time.Time
	onEvict func(key string)

	mu     sync.Mutex
	items  map[string]*list.Element
	lru    *list.List
	bytes  int64
	stats  Stats
	closed bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Region.
type Option func(*Region)

// WithWeigher overrides DefaultWeigher.
func WithWeigher(w Weigher) Option {
	return func(r *Region) {
		if w != nil {
			r.weigh = w
		}
	}
}

// WithClock overrides time.Now. Used by tests to drive idle expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Region) {
		if now != nil {
			r.now = now
		}
	}
}

// WithEvictionListener registers fn to be called, outside the region lock,
// with the key of every entry evicted for capacity.
func WithEvictionListener(fn func(key string)) Option {
	return func(r *Region) { r.onEvict = fn }
}

// New builds a region named after its source from a copy of tmpl.
func New(name string, tmpl Template, opts ...Option) (*Region, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	r := &Region{
		name:  name,
		tmpl:  tmpl,
		weigh: DefaultWeigher,
		now:   time.Now,
		items: make(map[string]*list.Element),
		lru:   list.New(),
		stop:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.startSweeper()
	return r, nil
}

// Name returns the source identifier the region belongs to.
func (r *Region) Name() string { return r.name }

// Template returns the region's copy of its template.
func (r *Region) Template() Template { return r.tmpl }

// Get returns the value stored under key. Absent, idle-expired and closed
// all report false. A hit refreshes the entry's recency.
func (r *Region) Get(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false
	}

	el, ok := r.items[key]
	if !ok {
		r.stats.Misses++
		return nil, false
	}

	now := r.now()
	e := el.Value.(*entry)
	if r.idleExpiredLocked(e, now) {
		r.removeLocked(el)
		r.stats.Expirations++
		r.stats.Misses++
		return nil, false
	}

	e.lastAccess = now
	r.lru.MoveToFront(el)
	r.stats.Hits++
	return e.value, true
}

// Put stores value under key, replacing any previous value. Least recently
// used entries are evicted until the region is back within its bounds.
func (r *Region) Put(key string, value any) error {
	weight := int64(len(key)) + r.weigh(value)

	var evicted []string
	err := func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.closed {
			return ErrClosed
		}

		if r.tmpl.MaxBytes > 0 && weight > r.tmpl.MaxBytes {
			// The old value is superseded even though the new one is not kept.
			if el, ok := r.items[key]; ok {
				r.removeLocked(el)
			}
			return ErrEntryTooLarge
		}

		now := r.now()
		if el, ok := r.items[key]; ok {
			e := el.Value.(*entry)
			r.bytes += weight - e.weight
			e.value = value
			e.weight = weight
			e.insertedAt = now
			e.lastAccess = now
			r.lru.MoveToFront(el)
		} else {
			r.items[key] = r.lru.PushFront(&entry{
				key:        key,
				value:      value,
				weight:     weight,
				insertedAt: now,
				lastAccess: now,
			})
			r.bytes += weight
		}

		evicted = r.evictLocked()
		return nil
	}()

	if r.onEvict != nil {
		for _, k := range evicted {
			r.onEvict(k)
		}
	}
	return err
}

// Delete removes key. Idempotent.
func (r *Region) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.items[key]; ok {
		r.removeLocked(el)
	}
}

// Len returns the number of stored entries, including idle-expired entries
// not yet reclaimed.
func (r *Region) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Bytes returns the summed weight of stored entries.
func (r *Region) Bytes() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bytes
}

// Stats returns a snapshot of the region's counters.
func (r *Region) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats
	s.Entries = len(r.items)
	s.Bytes = r.bytes
	return s
}

// Sweep removes idle-expired entries and returns how many it removed.
func (r *Region) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.tmpl.IdleExpiry <= 0 {
		return 0
	}

	now := r.now()
	removed := 0
	for el := r.lru.Back(); el != nil; {
		e := el.Value.(*entry)
		if !r.idleExpiredLocked(e, now) {
			// Everything in front was accessed more recently.
			break
		}
		prev := el.Prev()
		r.removeLocked(el)
		r.stats.Expirations++
		removed++
		el = prev
	}
	return removed
}

// Close stops the sweeper and drops every entry. Safe to call more than once.
func (r *Region) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.items = make(map[string]*list.Element)
	r.lru.Init()
	r.bytes = 0
	r.mu.Unlock()

	close(r.stop)
	r.wg.Wait()
	return nil
}

func (r *Region) idleExpiredLocked(e *entry, now time.Time) bool {
	return r.tmpl.IdleExpiry > 0 && now.Sub(e.lastAccess) > r.tmpl.IdleExpiry
}

// evictLocked trims the LRU tail until both bounds hold. The front entry,
// the one just written, is never evicted: oversize entries are rejected
// before insertion.
func (r *Region) evictLocked() []string {
	var evicted []string
	for r.overCapacityLocked() && r.lru.Len() > 1 {
		el := r.lru.Back()
		evicted = append(evicted, el.Value.(*entry).key)
		r.removeLocked(el)
		r.stats.Evictions++
	}
	return evicted
}

func (r *Region) overCapacityLocked() bool {
	if r.tmpl.MaxEntries > 0 && len(r.items) > r.tmpl.MaxEntries {
		return true
	}
	return r.tmpl.MaxBytes > 0 && r.bytes > r.tmpl.MaxBytes
}

func (r *Region) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	delete(r.items, e.key)
	r.lru.Remove(el)
	r.bytes -= e.weight
}
