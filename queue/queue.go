// Package queue provides a thread-safe FIFO queue connecting producers to
// consumers, optionally capacity-bounded.
//
// Unlike native Go channels, a Queue distinguishes Full from Closed on the
// send side, exposes a non-blocking TrySend, and tracks live Sender and
// Receiver handles: releasing the last Sender implicitly closes the queue so
// downstream consumers observe end-of-stream without an explicit Close call.
//
// # Quick Start
//
//	q := queue.New[int](2)
//	s := q.NewSender()
//	r := q.NewReceiver()
//	s.Send(1)
//	s.Close()
//	v, ok := r.Recv() // 1, true
//	_, ok = r.Recv()  // 0, false: closed and drained
//
// Items already queued at Close are still delivered; receivers observe
// end-of-stream only after the queue is fully drained.
package queue

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Send and TrySend on a closed queue.
	ErrClosed = errors.New("queue: closed")
	// ErrFull is returned by TrySend on a bounded queue at capacity.
	ErrFull = errors.New("queue: full")
)

// Unbounded is the capacity sentinel for queues limited only by available
// memory. Any capacity <= 0 is treated as unbounded: a bounded queue with
// zero capacity could never accept a send and would deadlock by construction.
const Unbounded = 0

// Queue is a FIFO queue safe for concurrent use by multiple senders and
// receivers. FIFO order is guaranteed for a single sender/single receiver
// pair; with multiple senders the interleaving across senders is unspecified,
// and with multiple receivers each item is delivered to exactly one receiver.
//
// Blocked senders and receivers park on condition variables and are woken one
// per state change in the runtime's notify order; no fairness guarantee is
// made beyond that.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	notFull  sync.Cond

	items     []T
	capacity  int
	closed    bool
	senders   int
	receivers int
}

// New creates a queue with the given capacity.
// A capacity <= 0 (see Unbounded) means sends never block.
func New[T any](capacity int) *Queue[T] {
	q := &Queue[T]{capacity: capacity}
	q.notEmpty.L = &q.mu
	q.notFull.L = &q.mu
	return q
}

// Close marks the queue closed. Idempotent. Items already queued are still
// delivered; subsequent sends fail with ErrClosed.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closeLocked()
}

func (q *Queue[T]) closeLocked() {
	if q.closed {
		return
	}
	q.closed = true
	// Wake everyone: blocked senders fail with ErrClosed, blocked
	// receivers drain remaining items or observe end-of-stream.
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Closed reports whether the queue has been closed.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap returns the configured capacity, or Unbounded.
func (q *Queue[T]) Cap() int {
	if q.capacity <= 0 {
		return Unbounded
	}
	return q.capacity
}

func (q *Queue[T]) full() bool {
	return q.capacity > 0 && len(q.items) >= q.capacity
}

// send blocks while the queue is bounded and at capacity.
func (q *Queue[T]) send(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for !q.closed && q.full() {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.notEmpty.Signal()
	return nil
}

func (q *Queue[T]) trySend(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	if q.full() {
		return ErrFull
	}
	q.items = append(q.items, item)
	q.notEmpty.Signal()
	return nil
}

// recv blocks until an item is available or the queue is closed and drained.
func (q *Queue[T]) recv() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	var zero T
	q.items[0] = zero // release the reference for GC
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	q.notFull.Signal()
	return item, true
}
