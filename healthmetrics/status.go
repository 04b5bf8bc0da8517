package healthmetrics

import (
	"fmt"

	"github.com/jonwraymond/healthotel/health"
)

// Gauge values for each health status.
const (
	UnhealthyValue = 0.0
	DegradedValue  = 0.5
	HealthyValue   = 1.0
)

// StatusValue maps a health status to its gauge value. Statuses outside the
// health enum return an error wrapping ErrUnsupportedStatus; they are never
// coerced to a default.
func StatusValue(s health.Status) (float64, error) {
	switch s {
	case health.StatusUnhealthy:
		return UnhealthyValue, nil
	case health.StatusDegraded:
		return DegradedValue, nil
	case health.StatusHealthy:
		return HealthyValue, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedStatus, int(s))
	}
}
