// Package observe provides observability primitives for cached query
// execution: a structured JSON logger, OpenTelemetry metrics and tracing,
// and a middleware that instruments the underlying executor.
//
// It is a pure instrumentation library. No behavior of the cache depends
// on anything emitted here.
package observe
