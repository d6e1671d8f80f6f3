// Package metrics provides a Prometheus adapter for the flowline Collector
// callback.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fxsml/flowline"
)

// Prometheus exposes per-stage processing counters and durations.
type Prometheus struct {
	processed *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowline",
			Name:      "items_processed_total",
			Help:      "Items processed, by stage.",
		}, []string{"stage"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowline",
			Name:      "items_dropped_total",
			Help:      "Items for which the process function produced no output, by stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowline",
			Name:      "process_duration_seconds",
			Help:      "Process function duration, by stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	for _, c := range []prometheus.Collector{p.processed, p.dropped, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Collector returns the callback to pass to pipeline.WithCollector.
func (p *Prometheus) Collector() flowline.Collector {
	return func(m *flowline.Metrics) {
		p.processed.WithLabelValues(m.Stage).Inc()
		if m.Dropped {
			p.dropped.WithLabelValues(m.Stage).Inc()
		}
		p.duration.WithLabelValues(m.Stage).Observe(m.Duration.Seconds())
	}
}
