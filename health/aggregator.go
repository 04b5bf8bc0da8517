package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout is the maximum time to wait for all checks.
	// Default: 10 seconds
	Timeout time.Duration

	// Parallel runs health checks in parallel when true.
	// Default: true
	Parallel bool

	// MaxConcurrency caps the number of checks running at once when Parallel
	// is set. Zero means no limit.
	MaxConcurrency int
}

// Aggregator combines multiple health checkers into a single composite check.
// It is the engine that produces Reports for consumers such as metrics bridges.
type Aggregator struct {
	config   AggregatorConfig
	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string // Maintains registration order

	// collapses concurrent CheckHealth calls into one run
	flight singleflight.Group
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{
		Timeout:  10 * time.Second,
		Parallel: true,
	}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = 10 * time.Second
		}
		if cfg.MaxConcurrency < 0 {
			cfg.MaxConcurrency = 0
		}
	}

	return &Aggregator{
		config:   cfg,
		checkers: make(map[string]Checker),
		order:    make([]string, 0),
	}
}

// Register adds a health checker to the aggregator.
// Registering an existing name replaces the checker but keeps its position.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Unregister removes a health checker from the aggregator.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.checkers, name)

	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// CheckerNames returns the names of all registered checkers in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs a single named health check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	return a.runCheck(ctx, checker), nil
}

// CheckAll runs all registered health checks and returns the results by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	entries := a.run(ctx)

	results := make(map[string]Result, len(entries))
	for _, e := range entries {
		results[e.Name] = e.Result
	}
	return results
}

// CheckHealth runs all registered checks and returns a Report with entries in
// registration order.
//
// Concurrent calls share a single run; every caller receives the same Report.
// The shared run uses the context of the caller that started it.
func (a *Aggregator) CheckHealth(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := a.flight.Do("report", func() (any, error) {
		start := time.Now()
		report := NewReport(a.run(ctx)...)
		report.TotalDuration = time.Since(start)
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// run executes every registered check and returns entries in registration order.
func (a *Aggregator) run(ctx context.Context) []Entry {
	a.mu.RLock()
	entries := make([]Entry, len(a.order))
	checkers := make([]Checker, len(a.order))
	for i, name := range a.order {
		entries[i].Name = name
		checkers[i] = a.checkers[name]
	}
	a.mu.RUnlock()

	if len(entries) == 0 {
		return entries
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if !a.config.Parallel {
		for i, checker := range checkers {
			entries[i].Result = a.runCheck(ctx, checker)
		}
		return entries
	}

	var g errgroup.Group
	if a.config.MaxConcurrency > 0 {
		g.SetLimit(a.config.MaxConcurrency)
	}
	for i, checker := range checkers {
		g.Go(func() error {
			// each goroutine owns its own slot
			entries[i].Result = a.runCheck(ctx, checker)
			return nil
		})
	}
	_ = g.Wait()

	return entries
}

// OverallStatus computes the overall health status from a set of results.
// Returns Unhealthy if any check is unhealthy.
// Returns Degraded if any check is degraded but none are unhealthy.
// Returns Healthy if all checks are healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	status := StatusHealthy
	for _, result := range results {
		if result.Status.worse(status) {
			status = result.Status
		}
	}
	return status
}

func (a *Aggregator) runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()

	resultCh := make(chan Result, 1)

	go func() {
		result := checker.Check(ctx)
		result.Duration = time.Since(start)
		if result.Status == StatusUnhealthy && result.Error == nil {
			result.Error = ErrCheckFailed
		}
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// Checker returns a single Checker interface for the aggregator.
// This allows the aggregator to be nested inside another aggregator.
func (a *Aggregator) Checker() Checker {
	return &aggregatorChecker{agg: a}
}

type aggregatorChecker struct {
	agg *Aggregator
}

func (c *aggregatorChecker) Name() string {
	return "aggregate"
}

func (c *aggregatorChecker) Check(ctx context.Context) Result {
	entries := c.agg.run(ctx)
	report := NewReport(entries...)

	md := make(Metadata, 0, len(entries))
	for _, e := range entries {
		md = append(md, KV(e.Name, e.Status.String()))
	}

	var message string
	switch report.Status {
	case StatusHealthy:
		message = "all checks passed"
	case StatusDegraded:
		message = "some checks degraded"
	case StatusUnhealthy:
		message = "some checks failed"
	}

	return Result{
		Status:    report.Status,
		Message:   message,
		Metadata:  md,
		Timestamp: time.Now(),
	}
}
