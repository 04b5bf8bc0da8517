// Package healthmetrics publishes health check results as OpenTelemetry
// observable gauges.
//
// Two gauges are registered per Metrics instance: a status gauge (0 for
// unhealthy, 0.5 for degraded, 1 for healthy) and a duration gauge (seconds).
// Each health check in a report becomes one observation on each gauge,
// labelled with the check name and, optionally, the check metadata.
//
// The OpenTelemetry SDK invokes each gauge callback once per collection
// cycle. The two callbacks share a snapshot: the first call of a pair runs
// the checks and caches the report, the second reuses it and clears the
// cache. This relies on both
// gauges being collected together every cycle. Set Options.SharedCallback to
// observe both gauges from a single callback instead, which runs the checks
// once per cycle without that assumption.
//
// # Usage
//
//	agg := health.NewAggregator()
//	agg.Register("db", dbChecker)
//
//	m, err := healthmetrics.New(meter, agg, healthmetrics.Options{
//	    IncludeMetadata: true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer m.Unregister()
package healthmetrics
