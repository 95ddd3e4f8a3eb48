// Package query puts a per-source result cache in front of a query
// executor.
//
// A CachedQuery is bound to one Executor and therefore one source. Each
// Execute call fingerprints the descriptor, looks it up in the source's
// region and, on a miss, runs the executor and times it. The result is
// stored only if the computation took at least the retention threshold:
// cheap queries are recomputed rather than occupying cache space.
//
//	reg := registry.New()
//	defer reg.Close()
//
//	q, err := query.NewCachedQuery(ctx, reg, exec,
//		query.WithPolicy(retention.NewPolicy(threshold)),
//	)
//	if err != nil {
//		return err
//	}
//	result, err := q.Execute(ctx, descriptor)
//
// The cache never turns a successful query into a failure. If the
// descriptor cannot be fingerprinted, the registry is closed, or the
// region rejects the result, the query still runs and the degradation is
// logged and counted.
package query
