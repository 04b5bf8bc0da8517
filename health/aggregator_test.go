package health

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewAggregator(t *testing.T) {
	agg := NewAggregator()

	if agg.config.Timeout != 10*time.Second {
		t.Errorf("Default timeout = %v, want 10s", agg.config.Timeout)
	}
	if !agg.config.Parallel {
		t.Error("Default Parallel should be true")
	}
}

func TestNewAggregator_WithConfig(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		Timeout:  5 * time.Second,
		Parallel: false,
	})

	if agg.config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", agg.config.Timeout)
	}
	if agg.config.Parallel {
		t.Error("Parallel should be false")
	}
}

func TestAggregator_Register(t *testing.T) {
	agg := NewAggregator()

	checker := NewCheckerFunc("test", func(ctx context.Context) Result {
		return Healthy("ok")
	})

	agg.Register("test", checker)

	names := agg.CheckerNames()
	if len(names) != 1 {
		t.Fatalf("Expected 1 checker, got %d", len(names))
	}
	if names[0] != "test" {
		t.Errorf("Checker name = %v, want 'test'", names[0])
	}
}

func TestAggregator_Unregister(t *testing.T) {
	agg := NewAggregator()

	checker := NewCheckerFunc("test", func(ctx context.Context) Result {
		return Healthy("ok")
	})

	agg.Register("test", checker)
	agg.Unregister("test")

	names := agg.CheckerNames()
	if len(names) != 0 {
		t.Errorf("Expected 0 checkers, got %d", len(names))
	}
}

func TestAggregator_Check(t *testing.T) {
	agg := NewAggregator()

	checker := NewCheckerFunc("test", func(ctx context.Context) Result {
		return Healthy("ok")
	})

	agg.Register("test", checker)

	result, err := agg.Check(context.Background(), "test")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if result.Status != StatusHealthy {
		t.Errorf("Result.Status = %v, want StatusHealthy", result.Status)
	}
}

func TestAggregator_CheckNotFound(t *testing.T) {
	agg := NewAggregator()

	_, err := agg.Check(context.Background(), "nonexistent")
	if err != ErrCheckerNotFound {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()

	agg.Register("healthy", NewCheckerFunc("healthy", func(ctx context.Context) Result {
		return Healthy("ok")
	}))
	agg.Register("degraded", NewCheckerFunc("degraded", func(ctx context.Context) Result {
		return Degraded("slow")
	}))

	results := agg.CheckAll(context.Background())

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	if results["healthy"].Status != StatusHealthy {
		t.Errorf("healthy status = %v, want StatusHealthy", results["healthy"].Status)
	}
	if results["degraded"].Status != StatusDegraded {
		t.Errorf("degraded status = %v, want StatusDegraded", results["degraded"].Status)
	}
}

func TestAggregator_CheckAllEmpty(t *testing.T) {
	agg := NewAggregator()

	results := agg.CheckAll(context.Background())

	if len(results) != 0 {
		t.Errorf("Expected 0 results, got %d", len(results))
	}
}

func TestAggregator_CheckAllSequential(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		Parallel: false,
	})

	agg.Register("first", NewCheckerFunc("first", func(ctx context.Context) Result {
		return Healthy("ok")
	}))
	agg.Register("second", NewCheckerFunc("second", func(ctx context.Context) Result {
		return Healthy("ok")
	}))

	results := agg.CheckAll(context.Background())

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
}

func TestAggregator_CheckAllTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		Timeout: 50 * time.Millisecond,
	})

	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("ok")
	}))

	results := agg.CheckAll(context.Background())

	if results["slow"].Status != StatusUnhealthy {
		t.Errorf("slow status = %v, want StatusUnhealthy", results["slow"].Status)
	}
	if results["slow"].Error != ErrCheckTimeout {
		t.Errorf("slow error = %v, want ErrCheckTimeout", results["slow"].Error)
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{
			name:    "empty",
			results: map[string]Result{},
			want:    StatusHealthy,
		},
		{
			name: "all healthy",
			results: map[string]Result{
				"a": Healthy("ok"),
				"b": Healthy("ok"),
			},
			want: StatusHealthy,
		},
		{
			name: "one degraded",
			results: map[string]Result{
				"a": Healthy("ok"),
				"b": Degraded("slow"),
			},
			want: StatusDegraded,
		},
		{
			name: "one unhealthy",
			results: map[string]Result{
				"a": Healthy("ok"),
				"b": Unhealthy("down", nil),
			},
			want: StatusUnhealthy,
		},
		{
			name: "unhealthy overrides degraded",
			results: map[string]Result{
				"a": Degraded("slow"),
				"b": Unhealthy("down", nil),
			},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.OverallStatus(tt.results)
			if got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_Checker(t *testing.T) {
	agg := NewAggregator()

	agg.Register("healthy", NewCheckerFunc("healthy", func(ctx context.Context) Result {
		return Healthy("ok")
	}))

	checker := agg.Checker()

	if checker.Name() != "aggregate" {
		t.Errorf("Name() = %v, want 'aggregate'", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
	if v, ok := result.Metadata.Get("healthy"); !ok || v != "healthy" {
		t.Errorf("Metadata[healthy] = %v, want 'healthy'", v)
	}
}

func TestAggregator_CheckerWithUnhealthy(t *testing.T) {
	agg := NewAggregator()

	agg.Register("unhealthy", NewCheckerFunc("unhealthy", func(ctx context.Context) Result {
		return Unhealthy("down", nil)
	}))

	checker := agg.Checker()
	result := checker.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
	}
	if result.Message != "some checks failed" {
		t.Errorf("Message = %v, want 'some checks failed'", result.Message)
	}
}

func TestAggregator_RegisterDuplicate(t *testing.T) {
	agg := NewAggregator()

	checker1 := NewCheckerFunc("test", func(ctx context.Context) Result {
		return Healthy("first")
	})
	checker2 := NewCheckerFunc("test", func(ctx context.Context) Result {
		return Healthy("second")
	})

	agg.Register("test", checker1)
	agg.Register("test", checker2) // Should replace

	names := agg.CheckerNames()
	if len(names) != 1 {
		t.Errorf("Expected 1 checker after duplicate, got %d", len(names))
	}

	result, _ := agg.Check(context.Background(), "test")
	if result.Message != "second" {
		t.Errorf("Message = %v, want 'second' (replacement)", result.Message)
	}
}

func TestAggregator_CheckHealthOrder(t *testing.T) {
	agg := NewAggregator()

	for _, name := range []string{"db", "cache", "queue"} {
		agg.Register(name, NewCheckerFunc(name, func(ctx context.Context) Result {
			return Healthy("ok")
		}))
	}

	report, err := agg.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}

	want := []string{"db", "cache", "queue"}
	if report.Len() != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), report.Len())
	}
	for i, name := range want {
		if report.Entries[i].Name != name {
			t.Errorf("Entries[%d].Name = %v, want %v", i, report.Entries[i].Name, name)
		}
	}
}

func TestAggregator_CheckHealthStatusAndMetadata(t *testing.T) {
	agg := NewAggregator()

	agg.Register("db", NewCheckerFunc("db", func(ctx context.Context) Result {
		return Healthy("ok")
	}))
	agg.Register("cache", NewCheckerFunc("cache", func(ctx context.Context) Result {
		return Degraded("slow").WithMetadata(KV("tenant", "t1"))
	}))

	report, err := agg.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}

	if report.Status != StatusDegraded {
		t.Errorf("Report.Status = %v, want StatusDegraded", report.Status)
	}

	entry, ok := report.Lookup("cache")
	if !ok {
		t.Fatal("cache entry not found")
	}
	if v, _ := entry.Metadata.Get("tenant"); v != "t1" {
		t.Errorf("cache tenant = %v, want 't1'", v)
	}
	if entry.Duration <= 0 && entry.Timestamp.IsZero() {
		t.Error("cache entry should carry timing information")
	}
}

func TestAggregator_CheckHealthUnhealthyWithoutError(t *testing.T) {
	agg := NewAggregator()
	cause := errors.New("connection refused")

	agg.Register("db", NewCheckerFunc("db", func(ctx context.Context) Result {
		return Unhealthy("down", nil)
	}))
	agg.Register("cache", NewCheckerFunc("cache", func(ctx context.Context) Result {
		return Unhealthy("down", cause)
	}))
	agg.Register("queue", NewCheckerFunc("queue", func(ctx context.Context) Result {
		return Healthy("ok")
	}))

	report, err := agg.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}

	tests := []struct {
		name string
		want error
	}{
		{"db", ErrCheckFailed},
		{"cache", cause},
		{"queue", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := report.Lookup(tt.name)
			if !ok {
				t.Fatalf("%s entry not found", tt.name)
			}
			if tt.want == nil {
				if entry.Error != nil {
					t.Errorf("Error = %v, want nil", entry.Error)
				}
				return
			}
			if !errors.Is(entry.Error, tt.want) {
				t.Errorf("Error = %v, want %v", entry.Error, tt.want)
			}
		})
	}
}

func TestAggregator_CheckHealthEmpty(t *testing.T) {
	agg := NewAggregator()

	report, err := agg.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if report.Len() != 0 {
		t.Errorf("Expected 0 entries, got %d", report.Len())
	}
	if report.Status != StatusHealthy {
		t.Errorf("Report.Status = %v, want StatusHealthy", report.Status)
	}
}

func TestAggregator_CheckHealthCancelled(t *testing.T) {
	agg := NewAggregator()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.CheckHealth(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("CheckHealth() error = %v, want context.Canceled", err)
	}
}

func TestAggregator_CheckHealthCollapsesConcurrentCalls(t *testing.T) {
	agg := NewAggregator()

	var runs atomic.Int32
	release := make(chan struct{})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		runs.Add(1)
		<-release
		return Healthy("ok")
	}))

	const callers = 5
	reports := make([]*Report, callers)
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			reports[i], _ = agg.CheckHealth(context.Background())
		}(i)
	}

	started.Wait()
	// give the callers time to join the in-flight run
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := runs.Load(); got < 1 || got >= callers {
		t.Errorf("check ran %d times, want fewer than %d", got, callers)
	}
	for i, r := range reports {
		if r == nil {
			t.Fatalf("reports[%d] is nil", i)
		}
	}
}

func TestAggregator_MaxConcurrency(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{
		Parallel:       true,
		MaxConcurrency: 2,
	})

	var current, peak atomic.Int32
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		agg.Register(name, NewCheckerFunc(name, func(ctx context.Context) Result {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return Healthy("ok")
		}))
	}

	report, err := agg.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if report.Len() != 5 {
		t.Fatalf("Expected 5 entries, got %d", report.Len())
	}
	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", got)
	}
}
