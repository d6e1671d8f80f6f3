package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fxsml/flowline"
)

func TestPrometheus_Collects(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	collect := p.Collector()
	collect(&flowline.Metrics{Stage: "kitchen", Duration: 5 * time.Millisecond})
	collect(&flowline.Metrics{Stage: "kitchen", Duration: time.Millisecond, Dropped: true})
	collect(&flowline.Metrics{Stage: "serve", Duration: time.Millisecond})

	if got := testutil.ToFloat64(p.processed.WithLabelValues("kitchen")); got != 2 {
		t.Fatalf("expected 2 processed in kitchen, got %v", got)
	}
	if got := testutil.ToFloat64(p.dropped.WithLabelValues("kitchen")); got != 1 {
		t.Fatalf("expected 1 dropped in kitchen, got %v", got)
	}
	if got := testutil.ToFloat64(p.processed.WithLabelValues("serve")); got != 1 {
		t.Fatalf("expected 1 processed in serve, got %v", got)
	}
	if got := testutil.CollectAndCount(p.duration); got != 2 {
		t.Fatalf("expected duration series for 2 stages, got %d", got)
	}
}

func TestPrometheus_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheus(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := NewPrometheus(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}
