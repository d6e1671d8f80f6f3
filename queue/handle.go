package queue

import "sync/atomic"

// Sender is a producer handle on a Queue. The queue tracks live Sender
// handles: when the last one is released via Close, the queue itself is
// closed so consumers eventually observe end-of-stream.
//
// A Sender is safe for concurrent use, but by convention each producing
// goroutine owns its own handle; use Clone to hand one out. After Close,
// Send and TrySend fail with ErrClosed regardless of queue state.
type Sender[T any] struct {
	q        *Queue[T]
	released atomic.Bool
}

// NewSender registers and returns a new producer handle.
func (q *Queue[T]) NewSender() *Sender[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.senders++
	return &Sender[T]{q: q}
}

// Send enqueues item, blocking while a bounded queue is at capacity.
// Returns ErrClosed if the queue is closed before space becomes available.
func (s *Sender[T]) Send(item T) error {
	if s.released.Load() {
		return ErrClosed
	}
	return s.q.send(item)
}

// TrySend enqueues item without blocking.
// Returns ErrFull if a bounded queue is at capacity, ErrClosed if closed.
func (s *Sender[T]) TrySend(item T) error {
	if s.released.Load() {
		return ErrClosed
	}
	return s.q.trySend(item)
}

// Clone registers an additional producer handle on the same queue.
func (s *Sender[T]) Clone() *Sender[T] {
	return s.q.NewSender()
}

// Close releases the handle. Idempotent. Releasing the last live Sender
// closes the queue.
func (s *Sender[T]) Close() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	s.q.senders--
	if s.q.senders == 0 {
		s.q.closeLocked()
	}
}

// Receiver is a consumer handle on a Queue. When the last live Receiver is
// released the queue is closed, disconnecting senders that could otherwise
// block forever on a full queue nobody drains.
//
// A Receiver is safe for concurrent use, but by convention each consuming
// goroutine owns its own handle; use Clone to hand one out.
type Receiver[T any] struct {
	q        *Queue[T]
	released atomic.Bool
}

// NewReceiver registers and returns a new consumer handle.
func (q *Queue[T]) NewReceiver() *Receiver[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.receivers++
	return &Receiver[T]{q: q}
}

// Recv blocks until an item is available or the queue is closed and fully
// drained, in which case it returns the zero value and false. When multiple
// receivers compete, exactly one receives each item.
func (r *Receiver[T]) Recv() (T, bool) {
	if r.released.Load() {
		var zero T
		return zero, false
	}
	return r.q.recv()
}

// Clone registers an additional consumer handle on the same queue.
func (r *Receiver[T]) Clone() *Receiver[T] {
	return r.q.NewReceiver()
}

// Close releases the handle. Idempotent. Releasing the last live Receiver
// closes the queue.
func (r *Receiver[T]) Close() {
	if !r.released.CompareAndSwap(false, true) {
		return
	}
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	r.q.receivers--
	if r.q.receivers == 0 {
		r.q.closeLocked()
	}
}
