// Package region provides the per-source cache store: a bounded key/value
// map with least-recently-used eviction and idle expiry, stamped out from
// an immutable Template.
//
// Capacity is bounded by entry count, by weighed bytes, or both. Idle
// expiry is evaluated lazily on Get; an optional background sweep reclaims
// memory earlier without changing what Get returns.
package region
