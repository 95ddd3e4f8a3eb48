package region

import "errors"

// Sentinel errors for region operations.
var (
	// ErrInvalidTemplate indicates a template regions cannot be built from.
	ErrInvalidTemplate = errors.New("region: invalid template")

	// ErrClosed is returned by Put after Close.
	ErrClosed = errors.New("region: region is closed")

	// ErrEntryTooLarge is returned by Put when a single entry outweighs MaxBytes.
	ErrEntryTooLarge = errors.New("region: entry exceeds region capacity")
)
