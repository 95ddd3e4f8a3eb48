// Package health reports the health of the storage cache.
//
// A Checker reports a Status: Healthy, Degraded, or Unhealthy.
// RegistryChecker inspects a registry and its regions:
//
//	checker := health.NewRegistryChecker(reg)
//	result := checker.Check(ctx)
//	if result.Status != health.StatusHealthy {
//	    logger.Warn(ctx, "storage cache unhealthy", observe.Field{Key: "msg", Value: result.Message})
//	}
package health
