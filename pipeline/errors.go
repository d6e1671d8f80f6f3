package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle indicates the stage dependency graph contains a cycle.
	ErrCycle = errors.New("cycle detected")
	// ErrUnknownStage indicates a stage name that does not exist in the spec.
	ErrUnknownStage = errors.New("unknown stage")
	// ErrNilProcess indicates a stage without a process function.
	ErrNilProcess = errors.New("missing process function")
	// ErrEmptySpec indicates a spec with no stages.
	ErrEmptySpec = errors.New("empty spec")
	// ErrNotEntry is returned by Submit for a stage that has upstream
	// stages and therefore cannot accept external items.
	ErrNotEntry = errors.New("not an entry stage")
)

// ConfigError describes an invalid pipeline specification. Build returns it
// before any queue or worker is created; no partial pipeline exists.
type ConfigError struct {
	// Stages names the offending stage(s). For cycle errors this is the
	// cycle path in dependency order, first stage repeated at the end.
	Stages []string
	// Err is the violation category (ErrCycle, ErrUnknownStage, ...).
	Err error
}

func (e *ConfigError) Error() string {
	if len(e.Stages) == 0 {
		return fmt.Sprintf("pipeline: %v", e.Err)
	}
	sep := ", "
	if errors.Is(e.Err, ErrCycle) {
		sep = " -> "
	}
	return fmt.Sprintf("pipeline: %v: %s", e.Err, strings.Join(e.Stages, sep))
}

func (e *ConfigError) Unwrap() error { return e.Err }

// WorkerError reports a worker goroutine that terminated abnormally. It is
// collected by the supervisor and surfaced in the aggregated Shutdown report,
// never raised synchronously during normal operation.
type WorkerError struct {
	// Stage is the stage the worker belonged to.
	Stage string
	// Worker is the worker's name.
	Worker string
	// PanicValue is the original value passed to panic().
	PanicValue any
	// StackTrace contains the stack trace at the point of panic.
	StackTrace string
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("pipeline: worker %q in stage %q panicked: %v", e.Worker, e.Stage, e.PanicValue)
}
