package health

import "time"

// Entry is the named result of one check within a Report.
type Entry struct {
	// Name is the unique name the check was registered under.
	Name string

	Result
}

// Report is an immutable snapshot produced by one execution of all checks.
//
// Entries are ordered by the engine that produced the report; the Aggregator
// uses registration order. Callers must not modify a Report once it has been
// handed out, since it may be shared between readers.
type Report struct {
	// Entries holds one entry per check. Names are unique.
	Entries []Entry

	// Status is the worst status across all entries.
	Status Status

	// TotalDuration is the wall time spent producing the report.
	TotalDuration time.Duration

	// Timestamp is when the report was produced.
	Timestamp time.Time
}

// NewReport builds a Report from entries and derives its overall status.
// An empty report is healthy.
func NewReport(entries ...Entry) *Report {
	status := StatusHealthy
	for _, e := range entries {
		if e.Status.worse(status) {
			status = e.Status
		}
	}

	return &Report{
		Entries:   entries,
		Status:    status,
		Timestamp: time.Now(),
	}
}

// Len returns the number of entries.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Entries)
}

// Lookup returns the entry for the named check.
func (r *Report) Lookup(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
