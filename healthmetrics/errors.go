package healthmetrics

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the parent of every construction error. Use
// errors.Is(err, ErrConfiguration) to detect misconfiguration.
var ErrConfiguration = errors.New("healthmetrics: invalid configuration")

var (
	// ErrNilEngine indicates New was called without a health check engine.
	ErrNilEngine = fmt.Errorf("%w: health check engine is nil", ErrConfiguration)

	// ErrNilMeter indicates New was called without a meter.
	ErrNilMeter = fmt.Errorf("%w: meter is nil", ErrConfiguration)

	// ErrDuplicateGaugeName indicates the status and duration gauges share a name.
	ErrDuplicateGaugeName = fmt.Errorf("%w: status and duration gauge names must differ", ErrConfiguration)
)

var (
	// ErrUnsupportedStatus indicates a health status with no gauge value.
	// It means the status enum and the value table are out of sync.
	ErrUnsupportedStatus = errors.New("healthmetrics: unsupported health status")

	// ErrNilReport indicates the engine returned neither a report nor an error.
	ErrNilReport = errors.New("healthmetrics: engine returned nil report")
)
