// Package registry provides the process-wide map from source identifier
// to cache region.
//
// Regions are provisioned lazily: the first RegionFor call for a source
// clones the registry's template into a new region. If no template was
// supplied, the built-in default is bootstrapped on first use. A template
// that fails validation is a fatal configuration error.
//
//	reg := registry.New(registry.WithLogger(logger))
//	defer reg.Close()
//
//	r, err := reg.RegionFor(ctx, "cube-sales")
package registry
