// Package pipeline wires workers and queues into a validated acyclic graph
// and supervises its execution.
//
// A pipeline is described by a Spec: one entry per stage with a queue
// capacity, a worker count, a process function, and the names of upstream
// stages whose output feeds it. Build validates the spec (unknown upstream
// references, missing process functions, cycles), constructs one input queue
// per stage, and spawns one goroutine per worker. Stages without upstream
// stages are entry stages and accept external items via Submit.
//
// Data flows from entry queues through workers downstream until sink stages
// are reached. Shutdown flows backward: Shutdown closes the entry queues and
// closure propagates downstream as each stage's last producer handle is
// released, so in-flight work is drained before workers stop.
//
// A stage feeding several downstream stages broadcasts each produced item to
// every one of them.
//
// # Quick Start
//
//	p, err := pipeline.Build(pipeline.Spec[string]{
//		"intake": {Capacity: 4, Process: validate},
//		"serve":  {Capacity: queue.Unbounded, Upstream: []string{"intake"}, Process: serve},
//	})
//	if err != nil {
//		return err
//	}
//	p.Submit(ctx, "intake", "tomato soup")
//	report := p.Shutdown()
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/fxsml/flowline"
	"github.com/fxsml/flowline/queue"
)

// Stage describes one pipeline stage.
type Stage[T any] struct {
	// Capacity of the stage's input queue. Use queue.Unbounded for a
	// queue limited only by available memory.
	Capacity int

	// Workers is the number of concurrent workers consuming the stage's
	// input queue. Default is 1.
	Workers int

	// Upstream names the stages whose output feeds this stage. A stage
	// with no upstream is an entry stage.
	Upstream []string

	// Process transforms each item. Returning false drops the item.
	// Required.
	Process flowline.ProcessFunc[T, T]
}

// Spec maps stage names to their definitions.
type Spec[T any] map[string]Stage[T]

// Pipeline is a running set of workers connected by queues. Create with
// Build. Safe for concurrent use.
type Pipeline[T any] struct {
	opts    options
	stages  map[string]struct{}
	entries map[string]*queue.Sender[T]
	wg      sync.WaitGroup

	mu       sync.Mutex
	failures []error

	shutdownOnce sync.Once
	report       error
}

// Build validates spec, constructs the queues and workers, and starts one
// goroutine per worker. On validation failure it returns a *ConfigError and
// nothing is created.
func Build[T any](spec Spec[T], opts ...Option) (*Pipeline[T], error) {
	if err := validate(spec); err != nil {
		return nil, err
	}

	cfg := parseOptions(opts)
	p := &Pipeline[T]{
		opts:    cfg,
		stages:  make(map[string]struct{}, len(spec)),
		entries: make(map[string]*queue.Sender[T]),
	}

	queues := make(map[string]*queue.Queue[T], len(spec))
	for name, stage := range spec {
		queues[name] = queue.New[T](stage.Capacity)
		p.stages[name] = struct{}{}
	}

	// Invert upstream declarations into downstream edges.
	downstream := make(map[string][]string, len(spec))
	names := sortedNames(spec)
	for _, name := range names {
		for _, up := range spec[name].Upstream {
			downstream[up] = append(downstream[up], name)
		}
	}

	for _, name := range names {
		stage := spec[name]
		if len(stage.Upstream) == 0 {
			p.entries[name] = queues[name].NewSender()
		}

		workers := stage.Workers
		if workers <= 0 {
			workers = 1
		}
		for i := 0; i < workers; i++ {
			outs := make([]*queue.Sender[T], 0, len(downstream[name]))
			for _, d := range downstream[name] {
				outs = append(outs, queues[d].NewSender())
			}
			w := flowline.NewWorker(flowline.WorkerConfig[T, T]{
				Name:      fmt.Sprintf("%s-%d", name, i),
				Stage:     name,
				Process:   stage.Process,
				Input:     queues[name].NewReceiver(),
				Outputs:   outs,
				Collector: cfg.collector,
				Logger:    cfg.logger,
			})
			p.wg.Add(1)
			go p.run(w)
		}
	}

	return p, nil
}

// run executes a worker, capturing abnormal termination for the shutdown
// report. The worker's own defers release its queue handles even on panic,
// so one worker's failure never corrupts shared queue state for siblings.
func (p *Pipeline[T]) run(w *flowline.Worker[T, T]) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			werr := &WorkerError{
				Stage:      w.Stage(),
				Worker:     w.Name(),
				PanicValue: r,
				StackTrace: string(debug.Stack()),
			}
			p.opts.logger.Error("flowline: worker terminated abnormally",
				"stage", w.Stage(), "worker", w.Name(), "error", werr)
			p.mu.Lock()
			p.failures = append(p.failures, werr)
			p.mu.Unlock()
		}
	}()
	w.Run()
}

// Submit pushes item into the named entry stage. It blocks while the entry
// queue is bounded and full, and while the rate limiter (if configured)
// withholds a token; ctx bounds only the limiter wait. Returns
// queue.ErrClosed after Shutdown, ErrUnknownStage or ErrNotEntry for
// invalid stage names.
func (p *Pipeline[T]) Submit(ctx context.Context, stage string, item T) error {
	s, ok := p.entries[stage]
	if !ok {
		if _, exists := p.stages[stage]; exists {
			return fmt.Errorf("pipeline: %w: %q", ErrNotEntry, stage)
		}
		return fmt.Errorf("pipeline: %w: %q", ErrUnknownStage, stage)
	}
	if p.opts.limiter != nil {
		if err := p.opts.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return s.Send(item)
}

// TrySubmit is the non-blocking variant of Submit. It does not consult the
// rate limiter and returns queue.ErrFull if the entry queue is at capacity.
func (p *Pipeline[T]) TrySubmit(stage string, item T) error {
	s, ok := p.entries[stage]
	if !ok {
		if _, exists := p.stages[stage]; exists {
			return fmt.Errorf("pipeline: %w: %q", ErrNotEntry, stage)
		}
		return fmt.Errorf("pipeline: %w: %q", ErrUnknownStage, stage)
	}
	return s.TrySend(item)
}

// Shutdown closes all entry queues, waits for closure to propagate and every
// worker to exit, and returns the aggregated report of abnormal worker
// terminations (nil if all workers exited cleanly). Idempotent; concurrent
// and repeated calls return the same report after the first completes.
func (p *Pipeline[T]) Shutdown() error {
	p.shutdownOnce.Do(func() {
		for _, name := range sortedKeys(p.entries) {
			p.entries[name].Close()
		}
		p.wg.Wait()

		p.mu.Lock()
		defer p.mu.Unlock()
		p.report = multierr.Combine(p.failures...)
	})
	return p.report
}

// Entries returns the names of the entry stages in sorted order.
func (p *Pipeline[T]) Entries() []string {
	return sortedKeys(p.entries)
}

func sortedKeys[T any](m map[string]*queue.Sender[T]) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
