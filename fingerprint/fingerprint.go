// Package fingerprint derives stable cache keys from query descriptors.
//
// A fingerprint is a truncated hash, so two different descriptors can in
// principle share one. A collision is served as a cache hit for the wrong
// query; callers that cannot tolerate this must supply their own
// Fingerprinter.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrUnencodable indicates the descriptor could not be canonicalized.
var ErrUnencodable = errors.New("fingerprint: descriptor cannot be encoded")

// Prefix is prepended to every fingerprint produced by Default.
const Prefix = "fp:"

// Fingerprint identifies a query within one source's region.
type Fingerprint string

// String returns the fingerprint as a plain string.
func (f Fingerprint) String() string { return string(f) }

// Fingerprinter derives a Fingerprint from a query descriptor.
//
// Contract:
//   - Determinism: equal descriptors produce equal fingerprints regardless
//     of map iteration order.
//   - Concurrency: implementations must be safe for concurrent use.
type Fingerprinter interface {
	Fingerprint(descriptor any) (Fingerprint, error)
}

// Func adapts a function to Fingerprinter.
type Func func(descriptor any) (Fingerprint, error)

// Fingerprint calls f.
func (f Func) Fingerprint(descriptor any) (Fingerprint, error) { return f(descriptor) }

// Default hashes the canonical JSON form of a descriptor.
type Default struct{}

// Fingerprint returns fp:<hash>, where hash is the first 16 hex characters
// of SHA-256 over the canonical JSON encoding of descriptor.
func (Default) Fingerprint(descriptor any) (Fingerprint, error) {
	canonical, err := canonicalize(descriptor)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnencodable, err)
	}

	sum := sha256.Sum256(canonical)
	return Fingerprint(Prefix + hex.EncodeToString(sum[:8])), nil
}

// canonicalize encodes v as JSON with map keys sorted at every level.
// Struct fields and typed maps are already stable under encoding/json.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []byte("{")
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
		out = append(out, ':')

		vb, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, vb...)
	}
	return append(out, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	out := []byte("[")
	for i, v := range s {
		if i > 0 {
			out = append(out, ',')
		}
		vb, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		out = append(out, vb...)
	}
	return append(out, ']'), nil
}

var (
	_ Fingerprinter = Default{}
	_ Fingerprinter = Func(nil)
)
