// Package flowline provides building blocks for staged concurrent task
// dispatch: worker loops over reference-counted queues, pluggable logging,
// and per-item metrics collection.
//
// The flowline family includes:
//
//   - [queue] — Bounded/unbounded FIFO queues with sender/receiver handles
//   - [pipeline] — DAG builder, static cycle validation, supervised execution
//   - [config] — YAML pipeline configuration with environment overrides
//   - [broker] — Redis transport bridging external producers and consumers
//   - [metrics] — Prometheus adapter for the Collector callback
//
// # Quick Start
//
//	in := queue.New[string](4)
//	out := queue.New[string](queue.Unbounded)
//	w := flowline.NewWorker(flowline.WorkerConfig[string, string]{
//		Name:    "upper",
//		Process: func(s string) (string, bool) { return strings.ToUpper(s), true },
//		Input:   in.NewReceiver(),
//		Outputs: []*queue.Sender[string]{out.NewSender()},
//	})
//	go w.Run()
//
// For wiring several stages into a validated graph, see the pipeline package.
package flowline
