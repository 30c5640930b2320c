// Package debounce coalesces bursts of calls to an asynchronous operation
// into a single execution, handing every caller a future that settles with
// the batch's outcome.
//
// A Debouncer wraps one operation and maintains at most one pending batch:
// each call records its argument (last call wins), joins the batch's waiter
// list, and resets a trailing delay timer. When the quiet period elapses —
// or an optional max-wait ceiling is reached — the operation runs once with
// the latest argument and its result is fanned out to every future from
// that window.
//
// # Core Types
//
// Debouncer[T, R] is the coalescing front. Operation[T, R] is the wrapped
// call. Futures come from the companion future package.
//
// # Usage
//
// Debouncing a search query:
//
//	d, err := debounce.New(func(ctx context.Context, q string) ([]Result, error) {
//		return index.Search(ctx, q)
//	}, 300*time.Millisecond, debounce.WithMaxWait(2*time.Second))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer d.Close()
//
//	// Each keystroke:
//	f := d.Call(ctx, "go debou")
//	f = d.Call(ctx, "go debounce") // previous future settles with this batch too
//
//	results, err := f.Await()
//
// Control operations:
//
//	d.Cancel(nil)                  // reject pending futures with ErrCanceled
//	d.Flush()                      // execute the pending batch now
//	d.Pending()                    // is a batch scheduled?
//	f := d.SettleWith(func() ([]Result, error) {
//		return cached, nil         // resolve pending futures without searching
//	})
//
// # Error Handling
//
// Futures reject with ErrCanceled (wrapping any caller-supplied reason),
// ErrConfigChanged (reconfiguration canceled the window), or ErrClosed
// (debouncer shut down). Errors from the wrapped operation pass through
// unmodified, so callers can distinguish "my call was debounced away" from
// "the operation failed". Every future settles exactly once; none is left
// pending, including across Close.
//
// # Lifecycle
//
// The owning host calls Close exactly once when the debouncer's context
// ends. Close rejects outstanding futures with ErrClosed, and an operation
// still in flight has its outcome discarded in favor of ErrClosed. A closed
// debouncer is not reusable.
//
// # Concurrency Safety
//
// All methods are safe for concurrent use. State transitions serialize on
// an internal mutex; the wrapped operation runs outside it, so a call
// arriving during execution opens a fresh independent window (two
// executions may be in flight, each settling its own waiter set).
package debounce
