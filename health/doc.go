// Package health provides health checking primitives and the report model
// consumed by the metrics bridge.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy. Each
// Result may carry ordered Metadata, which downstream consumers turn into
// labels in the order given.
//
// A Report is an immutable snapshot of one run over all registered checks.
// Its Entries keep the order the engine produced them in.
//
// # Basic Usage
//
//	agg := health.NewAggregator()
//	agg.Register("database", health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
//	    if err := db.PingContext(ctx); err != nil {
//	        return health.Unhealthy("ping failed", err)
//	    }
//	    return health.Healthy("ok").WithMetadata(health.KV("tenant", "t1"))
//	}))
//
//	report, err := agg.CheckHealth(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, e := range report.Entries {
//	    log.Printf("%s: %s (%s)", e.Name, e.Status, e.Duration)
//	}
//
// Concurrent CheckHealth calls are collapsed into a single run, so a
// readiness probe and a metrics collection arriving together execute the
// checks once.
package health
