package healthmetrics

import (
	"context"
	"reflect"

	"github.com/jonwraymond/healthotel/health"
)

// Engine runs the application's health checks.
//
// CheckHealth may block for as long as the slowest check. Timeouts are the
// engine's responsibility. *health.Aggregator implements Engine; a function
// such as one returned by observe.Middleware.Wrap is adapted with EngineFunc.
type Engine interface {
	CheckHealth(ctx context.Context) (*health.Report, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context) (*health.Report, error)

// CheckHealth calls f(ctx).
func (f EngineFunc) CheckHealth(ctx context.Context) (*health.Report, error) {
	return f(ctx)
}

var _ Engine = (*health.Aggregator)(nil)

// isNilEngine reports whether engine is nil or wraps a nil pointer, func,
// map, slice, or channel, any of which would panic on the first collection.
func isNilEngine(engine Engine) bool {
	if engine == nil {
		return true
	}
	v := reflect.ValueOf(engine)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
