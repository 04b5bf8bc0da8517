package healthmetrics

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthotel/observe"
)

// Default gauge names.
const (
	DefaultStatusGaugeName   = "healthcheck.status"
	DefaultDurationGaugeName = "healthcheck.status.duration"
)

// Gauge descriptions and units.
const (
	StatusDescription   = "health check status (0 == Unhealthy, 0.5 == Degraded, 1 == Healthy)"
	StatusUnit          = "status"
	DurationDescription = "duration of the health check execution in seconds"
	DurationUnit        = "seconds"
)

// Options configures a Metrics instance. The zero value is usable; empty
// gauge names fall back to the defaults.
type Options struct {
	// StatusGaugeName names the status gauge.
	// Default: "healthcheck.status"
	StatusGaugeName string `yaml:"status_gauge_name"`

	// DurationGaugeName names the duration gauge.
	// Default: "healthcheck.status.duration"
	DurationGaugeName string `yaml:"duration_gauge_name"`

	// IncludeMetadata adds each check's metadata pairs as labels.
	// Default: false
	IncludeMetadata bool `yaml:"include_metadata"`

	// SharedCallback observes both gauges from one callback, running the
	// checks once per collection even when only one gauge is exported.
	// Default: false (paired callbacks sharing a cached report)
	SharedCallback bool `yaml:"shared_callback"`

	// Logger receives execution and failure logs.
	// Default: no-op
	Logger observe.Logger `yaml:"-"`
}

// DefaultOptions returns Options with every default applied.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.StatusGaugeName == "" {
		o.StatusGaugeName = DefaultStatusGaugeName
	}
	if o.DurationGaugeName == "" {
		o.DurationGaugeName = DefaultDurationGaugeName
	}
	if o.Logger == nil {
		o.Logger = observe.NopLogger()
	}
	return o
}

// Validate checks the options after defaults are applied.
func (o Options) Validate() error {
	o = o.withDefaults()
	if o.StatusGaugeName == o.DurationGaugeName {
		return fmt.Errorf("%w: %q", ErrDuplicateGaugeName, o.StatusGaugeName)
	}
	return nil
}

// DecodeOptions reads Options from a YAML document. Unknown keys are
// rejected and defaults are applied to missing fields.
func DecodeOptions(r io.Reader) (Options, error) {
	var o Options

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("%w: decode options: %v", ErrConfiguration, err)
	}

	o = o.withDefaults()
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}
