// Package future provides a minimal promise/future pair for communicating
// the result of an asynchronous computation to one or more waiters.
//
// # Core Types
//
// Promise[T] is the producing side: it is settled exactly once with either
// a value (Resolve) or an error (Reject). Future[T] is the consuming side:
// it exposes blocking (Await), bounded (AwaitWithTimeout), and non-blocking
// (IsComplete, Done) ways to observe the settlement.
//
// # Usage
//
// Basic producer/consumer:
//
//	p, f := future.New[int]()
//
//	go func() {
//		n, err := compute()
//		if err != nil {
//			p.Reject(err)
//			return
//		}
//		p.Resolve(n)
//	}()
//
//	n, err := f.Await()
//
// Using a timeout:
//
//	n, err := f.AwaitWithTimeout(50 * time.Millisecond)
//	if errors.Is(err, future.ErrTimeout) {
//		log.Println("still pending")
//	}
//
// Pre-settled futures are available for fast paths:
//
//	return future.Rejected[int](ErrClosed)
//
// # Concurrency Safety
//
// All operations are safe for concurrent use. Settlement uses sync.Once
// and publishes through a closed channel, so any number of goroutines may
// await the same future; repeated settlement attempts report false and
// have no effect.
package future
