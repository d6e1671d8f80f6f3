package flowline

import "time"

// Metrics holds processing metrics for a single input item.
type Metrics struct {
	// Stage is the pipeline stage the item was processed in, if any.
	Stage string
	// Worker is the name of the worker that processed the item.
	Worker string

	Start    time.Time
	Duration time.Duration

	// Dropped indicates the processing function produced no output.
	Dropped bool
}

// Collector receives metrics after each processed item.
// Collectors must be safe for concurrent use; workers call them inline.
type Collector func(*Metrics)
