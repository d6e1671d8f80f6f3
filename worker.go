package flowline

import (
	"time"

	"github.com/fxsml/flowline/queue"
)

// ProcessFunc maps an input item to zero or one output item.
// Returning false drops the item; no output is forwarded.
//
// Items must be thread-transferable: ownership moves from producer to queue
// to consumer, so an item must carry no reference back to goroutine-local
// shared state.
type ProcessFunc[In, Out any] func(In) (Out, bool)

// WorkerConfig configures a Worker.
type WorkerConfig[In, Out any] struct {
	// Name identifies the worker in logs and metrics.
	Name string

	// Stage is the pipeline stage the worker belongs to, if any.
	// Used only for logs and metrics.
	Stage string

	// Process transforms each received item. Required.
	Process ProcessFunc[In, Out]

	// Input is the receiver handle the worker consumes from. Required.
	// The worker owns the handle and releases it when the loop exits.
	Input *queue.Receiver[In]

	// Outputs are the sender handles produced items are forwarded to.
	// Each output receives every produced item. The worker owns the
	// handles and releases them when the loop exits, so downstream
	// queues close once their last producer is gone.
	Outputs []*queue.Sender[Out]

	// Collector receives per-item metrics. Optional.
	Collector Collector

	// Logger used for lifecycle messages.
	// Default: DefaultLogger().
	Logger Logger
}

func (c WorkerConfig[In, Out]) parse() WorkerConfig[In, Out] {
	if c.Logger == nil {
		c.Logger = DefaultLogger()
	}
	return c
}

// Worker repeatedly consumes from its input queue, transforms items, and
// produces to its output queues. Create with NewWorker and run with Run.
type Worker[In, Out any] struct {
	cfg WorkerConfig[In, Out]
}

// NewWorker creates a worker from cfg.
func NewWorker[In, Out any](cfg WorkerConfig[In, Out]) *Worker[In, Out] {
	return &Worker[In, Out]{cfg: cfg.parse()}
}

// Name returns the worker's name.
func (w *Worker[In, Out]) Name() string { return w.cfg.Name }

// Stage returns the pipeline stage the worker belongs to, if any.
func (w *Worker[In, Out]) Stage() string { return w.cfg.Stage }

// Run executes the worker loop until the input queue is closed and drained,
// or until a downstream queue is found closed. A closed downstream is a valid
// shutdown signal, not a fault, so the loop terminates silently.
//
// Run releases the worker's input and output handles on exit, including on
// panic from the processing function, so sibling workers and downstream
// queues are never left with stale handle counts.
func (w *Worker[In, Out]) Run() {
	cfg := w.cfg
	defer cfg.Input.Close()
	defer func() {
		for _, out := range cfg.Outputs {
			out.Close()
		}
	}()

	cfg.Logger.Debug("flowline: worker started", "stage", cfg.Stage, "worker", cfg.Name)
	defer cfg.Logger.Debug("flowline: worker stopped", "stage", cfg.Stage, "worker", cfg.Name)

	for {
		item, ok := cfg.Input.Recv()
		if !ok {
			return
		}
		out, keep := w.process(item)
		if !keep {
			continue
		}
		for _, dst := range cfg.Outputs {
			if err := dst.Send(out); err != nil {
				// Downstream already shut down.
				return
			}
		}
	}
}

func (w *Worker[In, Out]) process(item In) (Out, bool) {
	if w.cfg.Collector == nil {
		return w.cfg.Process(item)
	}
	start := time.Now()
	out, keep := w.cfg.Process(item)
	w.cfg.Collector(&Metrics{
		Stage:    w.cfg.Stage,
		Worker:   w.cfg.Name,
		Start:    start,
		Duration: time.Since(start),
		Dropped:  !keep,
	})
	return out, keep
}
