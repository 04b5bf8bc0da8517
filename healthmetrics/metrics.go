package healthmetrics

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/healthotel/health"
	"github.com/jonwraymond/healthotel/observe"
)

// Observation is one gauge value with its labels.
type Observation struct {
	Value      float64
	Attributes []attribute.KeyValue
}

// valueFunc extracts a gauge value from a report entry.
type valueFunc func(health.Entry) (float64, error)

func statusValue(e health.Entry) (float64, error) {
	return StatusValue(e.Status)
}

func durationValue(e health.Entry) (float64, error) {
	return e.Duration.Seconds(), nil
}

// Metrics bridges a health check engine to a status gauge and a duration
// gauge. Each instance owns its cached report; instances share nothing.
type Metrics struct {
	opts   Options
	logger observe.Logger
	cache  *snapshotCache

	statusGauge   metric.Float64ObservableGauge
	durationGauge metric.Float64ObservableGauge

	regMu sync.Mutex
	regs  []metric.Registration
}

// New registers the status and duration gauges on meter, backed by engine.
//
// Unless opts.SharedCallback is set, the two gauges are registered with
// separate callbacks that share one cached report. This requires that they
// are the only two readers of the instance and that the SDK collects both of
// them in every cycle. If only one of the gauges is collected, every other
// collection reports the report cached by the previous one.
//
// New fails with an error wrapping ErrConfiguration when engine or meter is
// nil or the options are invalid; in that case no gauge is registered.
func New(meter metric.Meter, engine Engine, opts Options) (*Metrics, error) {
	if isNilEngine(engine) {
		return nil, ErrNilEngine
	}
	if meter == nil {
		return nil, ErrNilMeter
	}

	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m := &Metrics{
		opts:   opts,
		logger: opts.Logger,
		cache:  newSnapshotCache(engine, opts.Logger),
	}

	if err := m.register(meter); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) register(meter metric.Meter) error {
	var err error

	m.statusGauge, err = meter.Float64ObservableGauge(
		m.opts.StatusGaugeName,
		metric.WithDescription(StatusDescription),
		metric.WithUnit(StatusUnit),
	)
	if err != nil {
		return fmt.Errorf("healthmetrics: create status gauge: %w", err)
	}

	m.durationGauge, err = meter.Float64ObservableGauge(
		m.opts.DurationGaugeName,
		metric.WithDescription(DurationDescription),
		metric.WithUnit(DurationUnit),
	)
	if err != nil {
		return fmt.Errorf("healthmetrics: create duration gauge: %w", err)
	}

	if m.opts.SharedCallback {
		reg, err := meter.RegisterCallback(m.observeShared, m.statusGauge, m.durationGauge)
		if err != nil {
			return fmt.Errorf("healthmetrics: register callback: %w", err)
		}
		m.regs = []metric.Registration{reg}
		return nil
	}

	statusReg, err := meter.RegisterCallback(m.observeStatus, m.statusGauge)
	if err != nil {
		return fmt.Errorf("healthmetrics: register status callback: %w", err)
	}

	durationReg, err := meter.RegisterCallback(m.observeDuration, m.durationGauge)
	if err != nil {
		_ = statusReg.Unregister()
		return fmt.Errorf("healthmetrics: register duration callback: %w", err)
	}

	m.regs = []metric.Registration{statusReg, durationReg}
	return nil
}

// Options returns the effective options.
func (m *Metrics) Options() Options {
	return m.opts
}

// ObserveStatus returns one status observation per check. It takes part in
// the paired report sharing described on New.
func (m *Metrics) ObserveStatus(ctx context.Context) ([]Observation, error) {
	report, err := m.cache.next(ctx)
	if err != nil {
		return nil, err
	}
	return m.observations(ctx, report, statusValue)
}

// ObserveDuration returns one duration observation, in seconds, per check.
// It takes part in the paired report sharing described on New.
func (m *Metrics) ObserveDuration(ctx context.Context) ([]Observation, error) {
	report, err := m.cache.next(ctx)
	if err != nil {
		return nil, err
	}
	return m.observations(ctx, report, durationValue)
}

// Unregister removes the gauge callbacks. The gauges stop reporting but the
// instruments remain known to the meter. Safe to call more than once.
func (m *Metrics) Unregister() error {
	m.regMu.Lock()
	regs := m.regs
	m.regs = nil
	m.regMu.Unlock()

	var errs []error
	for _, reg := range regs {
		if err := reg.Unregister(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Metrics) observations(ctx context.Context, report *health.Report, value valueFunc) ([]Observation, error) {
	out := make([]Observation, 0, report.Len())
	for _, entry := range report.Entries {
		v, err := value(entry)
		if err != nil {
			m.logger.Error(ctx, "health check value unavailable",
				observe.Field{Key: "check", Value: entry.Name},
				observe.Field{Key: "error", Value: err.Error()},
			)
			return nil, fmt.Errorf("healthmetrics: check %q: %w", entry.Name, err)
		}
		out = append(out, Observation{
			Value:      v,
			Attributes: Attributes(entry, m.opts.IncludeMetadata),
		})
	}
	return out, nil
}

func (m *Metrics) observeStatus(ctx context.Context, o metric.Observer) error {
	obs, err := m.ObserveStatus(ctx)
	if err != nil {
		return err
	}
	record(o, m.statusGauge, obs)
	return nil
}

func (m *Metrics) observeDuration(ctx context.Context, o metric.Observer) error {
	obs, err := m.ObserveDuration(ctx)
	if err != nil {
		return err
	}
	record(o, m.durationGauge, obs)
	return nil
}

// observeShared runs the engine once and observes both gauges from the result.
func (m *Metrics) observeShared(ctx context.Context, o metric.Observer) error {
	report, err := m.cache.run(ctx)
	if err != nil {
		return err
	}

	status, err := m.observations(ctx, report, statusValue)
	if err != nil {
		return err
	}
	duration, err := m.observations(ctx, report, durationValue)
	if err != nil {
		return err
	}

	record(o, m.statusGauge, status)
	record(o, m.durationGauge, duration)
	return nil
}

func record(o metric.Observer, gauge metric.Float64Observable, obs []Observation) {
	for _, ob := range obs {
		o.ObserveFloat64(gauge, ob.Value, metric.WithAttributes(ob.Attributes...))
	}
}
