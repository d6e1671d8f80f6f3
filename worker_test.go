package flowline

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fxsml/flowline/queue"
)

func TestWorker_Transform(t *testing.T) {
	in := queue.New[int](queue.Unbounded)
	out := queue.New[string](queue.Unbounded)
	s := in.NewSender()
	r := out.NewReceiver()

	w := NewWorker(WorkerConfig[int, string]{
		Name:    "itoa",
		Process: func(v int) (string, bool) { return strconv.Itoa(v), true },
		Input:   in.NewReceiver(),
		Outputs: []*queue.Sender[string]{out.NewSender()},
	})

	go w.Run()

	for i := 0; i < 5; i++ {
		s.Send(i)
	}
	s.Close()

	for i := 0; i < 5; i++ {
		got, ok := r.Recv()
		if !ok {
			t.Fatalf("unexpected end-of-stream at %d", i)
		}
		if want := strconv.Itoa(i); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	// Worker exit releases its output sender, closing the downstream queue.
	if _, ok := r.Recv(); ok {
		t.Fatal("expected end-of-stream after worker exit")
	}
}

func TestWorker_Drop(t *testing.T) {
	in := queue.New[int](queue.Unbounded)
	out := queue.New[int](queue.Unbounded)
	s := in.NewSender()
	r := out.NewReceiver()

	w := NewWorker(WorkerConfig[int, int]{
		Name:    "evens",
		Process: func(v int) (int, bool) { return v, v%2 == 0 },
		Input:   in.NewReceiver(),
		Outputs: []*queue.Sender[int]{out.NewSender()},
	})
	go w.Run()

	for i := 0; i < 10; i++ {
		s.Send(i)
	}
	s.Close()

	var got []int
	for {
		v, ok := r.Recv()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %v", got)
	}
	for i, v := range got {
		if v != i*2 {
			t.Fatalf("expected %d, got %d", i*2, v)
		}
	}
}

func TestWorker_ClosedDownstreamTerminates(t *testing.T) {
	in := queue.New[int](queue.Unbounded)
	out := queue.New[int](queue.Unbounded)
	s := in.NewSender()

	w := NewWorker(WorkerConfig[int, int]{
		Name:    "fwd",
		Process: func(v int) (int, bool) { return v, true },
		Input:   in.NewReceiver(),
		Outputs: []*queue.Sender[int]{out.NewSender()},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run()
	}()

	// Downstream shuts down first: a valid shutdown signal, not a fault.
	out.Close()
	s.Send(1)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not terminate on closed downstream")
	}
	// Input is released on exit even though it was never drained.
	if !in.Closed() {
		t.Fatal("input queue not released after worker exit")
	}
}

func TestWorker_Broadcast(t *testing.T) {
	in := queue.New[int](queue.Unbounded)
	a := queue.New[int](queue.Unbounded)
	b := queue.New[int](queue.Unbounded)
	s := in.NewSender()
	ra := a.NewReceiver()
	rb := b.NewReceiver()

	w := NewWorker(WorkerConfig[int, int]{
		Name:    "tee",
		Process: func(v int) (int, bool) { return v, true },
		Input:   in.NewReceiver(),
		Outputs: []*queue.Sender[int]{a.NewSender(), b.NewSender()},
	})
	go w.Run()

	s.Send(7)
	s.Close()

	if got, ok := ra.Recv(); !ok || got != 7 {
		t.Fatalf("output a: expected 7, got %d (ok=%v)", got, ok)
	}
	if got, ok := rb.Recv(); !ok || got != 7 {
		t.Fatalf("output b: expected 7, got %d (ok=%v)", got, ok)
	}
}

func TestWorker_Collector(t *testing.T) {
	in := queue.New[int](queue.Unbounded)
	s := in.NewSender()

	var mu sync.Mutex
	var collected []*Metrics
	w := NewWorker(WorkerConfig[int, int]{
		Name:    "sink-0",
		Stage:   "sink",
		Process: func(v int) (int, bool) { return v, v > 0 },
		Input:   in.NewReceiver(),
		Collector: func(m *Metrics) {
			mu.Lock()
			collected = append(collected, m)
			mu.Unlock()
		},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run()
	}()

	s.Send(1)
	s.Send(0)
	s.Close()
	<-done

	if len(collected) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(collected))
	}
	if collected[0].Stage != "sink" || collected[0].Worker != "sink-0" {
		t.Fatalf("unexpected labels: %+v", collected[0])
	}
	if collected[0].Dropped || !collected[1].Dropped {
		t.Fatalf("expected drop flags [false true], got [%v %v]",
			collected[0].Dropped, collected[1].Dropped)
	}
}
