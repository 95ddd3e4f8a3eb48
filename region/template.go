package region

import (
	"fmt"
	"time"
)

// EvictionPolicy names the order in which entries leave a full region.
type EvictionPolicy string

// PersistenceMode names the durability of a region's entries.
type PersistenceMode string

const (
	// EvictLRU evicts the least recently used entry first.
	EvictLRU EvictionPolicy = "lru"

	// PersistenceNone keeps entries in memory only; a restart loses them.
	PersistenceNone PersistenceMode = "none"
)

// Default template values.
const (
	DefaultMaxBytes   int64 = 10 << 20
	DefaultIdleExpiry       = 24 * time.Hour
)

// Template is the blueprint every region is stamped from. It is a plain
// value: regions keep their own copy, so a template can be shared freely.
type Template struct {
	// MaxEntries bounds the number of entries. Zero means no count bound.
	MaxEntries int

	// MaxBytes bounds the summed entry weight. Zero means no byte bound.
	MaxBytes int64

	// Eviction is the eviction order. Only EvictLRU is supported.
	Eviction EvictionPolicy

	// IdleExpiry invalidates entries not accessed for longer than this.
	// Zero disables idle expiry.
	IdleExpiry time.Duration

	// Persistence is the durability mode. Only PersistenceNone is supported.
	Persistence PersistenceMode

	// SweepInterval runs a background sweep of idle-expired entries.
	// Zero relies on lazy expiry at access time only.
	SweepInterval time.Duration
}

// DefaultTemplate returns the built-in template: a 10 MiB heap bound,
// LRU eviction, 24 hour idle expiry and no persistence.
func DefaultTemplate() Template {
	return Template{
		MaxBytes:    DefaultMaxBytes,
		Eviction:    EvictLRU,
		IdleExpiry:  DefaultIdleExpiry,
		Persistence: PersistenceNone,
	}
}

// Validate reports whether regions can be built from t. Every failure
// wraps ErrInvalidTemplate.
func (t Template) Validate() error {
	switch {
	case t.MaxEntries < 0:
		return fmt.Errorf("%w: max entries %d is negative", ErrInvalidTemplate, t.MaxEntries)
	case t.MaxBytes < 0:
		return fmt.Errorf("%w: max bytes %d is negative", ErrInvalidTemplate, t.MaxBytes)
	case t.MaxEntries == 0 && t.MaxBytes == 0:
		return fmt.Errorf("%w: one of max entries or max bytes is required", ErrInvalidTemplate)
	case t.IdleExpiry < 0:
		return fmt.Errorf("%w: idle expiry %s is negative", ErrInvalidTemplate, t.IdleExpiry)
	case t.SweepInterval < 0:
		return fmt.Errorf("%w: sweep interval %s is negative", ErrInvalidTemplate, t.SweepInterval)
	case t.Eviction != EvictLRU:
		return fmt.Errorf("%w: unsupported eviction policy %q", ErrInvalidTemplate, t.Eviction)
	case t.Persistence != PersistenceNone:
		return fmt.Errorf("%w: unsupported persistence mode %q", ErrInvalidTemplate, t.Persistence)
	}
	return nil
}
