package future

import (
	"sync"
	"time"
)

// state is the settlement cell shared between a Promise and its Future.
// It is written exactly once; the closed done channel publishes the write.
type state[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func (s *state[T]) settle(val T, err error) bool {
	settled := false
	s.once.Do(func() {
		s.val = val
		s.err = err
		close(s.done)
		settled = true
	})
	return settled
}

// Promise is the producing side of an asynchronous result. It can be
// settled exactly once, after which every holder of the associated Future
// observes the same value or error.
//
// A Promise must not be copied after first use.
type Promise[T any] struct {
	s *state[T]
}

// Future is the consuming side of an asynchronous result. It provides
// methods to wait for completion (Await), check status without blocking
// (IsComplete), and handle timeouts (AwaitWithTimeout).
type Future[T any] struct {
	s *state[T]
}

// New creates a linked Promise/Future pair.
func New[T any]() (*Promise[T], *Future[T]) {
	s := &state[T]{done: make(chan struct{})}
	return &Promise[T]{s: s}, &Future[T]{s: s}
}

// Resolve settles the promise with a value. Returns false if the promise
// was already settled, in which case the call has no effect.
func (p *Promise[T]) Resolve(val T) bool {
	return p.s.settle(val, nil)
}

// Reject settles the promise with an error. Returns false if the promise
// was already settled, in which case the call has no effect.
func (p *Promise[T]) Reject(err error) bool {
	var zero T
	return p.s.settle(zero, err)
}

// Settle settles the promise with a value/error pair in one call.
// Returns false if the promise was already settled.
func (p *Promise[T]) Settle(val T, err error) bool {
	return p.s.settle(val, err)
}

// IsSettled reports whether the promise has been settled.
func (p *Promise[T]) IsSettled() bool {
	select {
	case <-p.s.done:
		return true
	default:
		return false
	}
}

// Future returns the consuming side of the promise. The same shared state
// backs every call, so the returned futures are interchangeable.
func (p *Promise[T]) Future() *Future[T] {
	return &Future[T]{s: p.s}
}

// Await blocks until the future is settled and returns its outcome.
func (f *Future[T]) Await() (T, error) {
	<-f.s.done
	return f.s.val, f.s.err
}

// AwaitWithTimeout waits for settlement with a timeout. If the timeout
// elapses first, the zero value and ErrTimeout are returned; the future
// itself remains unsettled and can still be awaited again.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.s.done:
		return f.s.val, f.s.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// Done returns a channel that is closed when the future settles.
// Useful for select loops.
func (f *Future[T]) Done() <-chan struct{} {
	return f.s.done
}

// IsComplete checks whether the future has settled without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.s.done:
		return true
	default:
		return false
	}
}

// Resolved returns a future that is already settled with val.
func Resolved[T any](val T) *Future[T] {
	p, f := New[T]()
	p.Resolve(val)
	return f
}

// Rejected returns a future that is already settled with err.
func Rejected[T any](err error) *Future[T] {
	p, f := New[T]()
	p.Reject(err)
	return f
}

// WaitAll waits for every future to settle and collects the values in
// order. The first error encountered is returned alongside the partial
// results gathered so far.
func WaitAll[T any](futures ...*Future[T]) ([]T, error) {
	vals := make([]T, 0, len(futures))
	for _, f := range futures {
		v, err := f.Await()
		if err != nil {
			return vals, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
