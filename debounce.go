package debounce

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/debounce/future"
)

// Operation is the wrapped asynchronous operation. It receives the context
// and argument of the last call in the coalescing window and its outcome is
// fanned out to every caller of that window.
type Operation[T, R any] func(ctx context.Context, arg T) (R, error)

// Debouncer coalesces bursts of calls into a single invocation of the
// wrapped operation. Every call receives a future that settles with the
// outcome of the batch it joined, so callers from one burst all observe
// the identical result.
//
// All methods are safe for concurrent use. Mutating transitions (Call,
// Cancel, Flush, SettleWith, Close, reconfiguration) serialize on an
// internal mutex; only the wrapped operation itself runs outside it.
type Debouncer[T, R any] struct {
	scheduler Scheduler
	logger    *slog.Logger

	// All further fields are protected by mu.
	mu      sync.Mutex
	delay   time.Duration
	maxWait time.Duration // 0 disables the max-wait ceiling
	op      Operation[T, R]
	batch   *pendingBatch[T, R]
	closed  bool

	// Lifecycle context, canceled on Close so in-flight operations can
	// abort early.
	ctx    context.Context
	cancel context.CancelFunc

	// Observability metrics
	calls           atomic.Int64
	batchesExecuted atomic.Int64
	batchesCanceled atomic.Int64
	waitersSettled  atomic.Int64
}

// Stats provides observability metrics for monitoring and debugging.
type Stats struct {
	Calls           int64 // Total calls accepted
	BatchesExecuted int64 // Batches that reached the wrapped operation or an executor
	BatchesCanceled int64 // Batches discarded by Cancel, reconfiguration, or Close
	WaitersSettled  int64 // Futures settled across all batches
	Pending         bool  // Whether a batch is currently scheduled
	Closed          bool  // Whether the debouncer has been closed
}

// pendingBatch is the single coalescing window. Waiters is non-empty
// exactly while a delay timer is scheduled for the batch.
type pendingBatch[T, R any] struct {
	id       uuid.UUID
	ctx      context.Context
	arg      T
	waiters  []*future.Promise[R]
	timer    Timer
	maxTimer Timer
	seq      uint64 // bumped per delay-timer reset; stale fires are no-ops
	openedAt time.Time
}

// New creates a Debouncer around op with the given trailing delay.
func New[T, R any](op Operation[T, R], delay time.Duration, opts ...Option) (*Debouncer[T, R], error) {
	if op == nil {
		return nil, ErrNilOperation
	}
	if delay <= 0 {
		return nil, ErrInvalidDelay
	}

	o := &options{
		scheduler: stdScheduler{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}
	for _, opt := range opts {
		opt(o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer[T, R]{
		delay:     delay,
		maxWait:   o.maxWait,
		scheduler: o.scheduler,
		logger:    o.logger,
		op:        op,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Call records arg as the batch's argument (last call wins), appends a
// waiter for the caller, and resets the trailing delay timer. The returned
// future settles when the batch executes, is canceled, is settled manually,
// or the debouncer closes. Call never blocks.
//
// The context of the last call travels with the batch and is handed to the
// wrapped operation.
func (d *Debouncer[T, R]) Call(ctx context.Context, arg T) *future.Future[R] {
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return future.Rejected[R](ErrClosed)
	}
	d.calls.Add(1)

	b := d.batch
	if b == nil {
		b = &pendingBatch[T, R]{id: uuid.New()}
		d.batch = b
		if d.maxWait > 0 {
			b.openedAt = time.Now()
			b.maxTimer = d.scheduler.Schedule(d.maxWait, func() { d.fireMaxWait(b) })
		}
		d.logger.DebugContext(ctx, "debounce window opened",
			slog.String("batch_id", b.id.String()),
			slog.Duration("delay", d.delay))
	} else if b.timer != nil {
		b.timer.Stop()
	}

	b.ctx = ctx
	b.arg = arg
	p, f := future.New[R]()
	b.waiters = append(b.waiters, p)

	b.seq++
	seq := b.seq
	b.timer = d.scheduler.Schedule(d.delay, func() { d.fireDelay(b, seq) })

	return f
}

// fireDelay handles trailing delay timer expiry. A fire whose batch has
// been replaced, or whose timer was reset after scheduling, is a no-op.
func (d *Debouncer[T, R]) fireDelay(b *pendingBatch[T, R], seq uint64) {
	d.mu.Lock()
	if d.closed || d.batch != b || b.seq != seq {
		d.mu.Unlock()
		return
	}
	op := d.op
	d.detachLocked()
	d.mu.Unlock()

	d.execute(op, b)
}

// fireMaxWait handles max-wait timer expiry, forcing execution regardless
// of pending delay-timer resets.
func (d *Debouncer[T, R]) fireMaxWait(b *pendingBatch[T, R]) {
	d.mu.Lock()
	if d.closed || d.batch != b {
		d.mu.Unlock()
		return
	}
	op := d.op
	d.detachLocked()
	d.mu.Unlock()

	d.logger.Debug("debounce max wait reached",
		slog.String("batch_id", b.id.String()),
		slog.Duration("waited", time.Since(b.openedAt)))
	d.execute(op, b)
}

// detachLocked stops both timers and empties the batch slot, returning the
// detached batch. Calls arriving afterwards start a fresh window. Callers
// must hold d.mu.
func (d *Debouncer[T, R]) detachLocked() *pendingBatch[T, R] {
	b := d.batch
	if b == nil {
		return nil
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.maxTimer != nil {
		b.maxTimer.Stop()
	}
	d.batch = nil
	return b
}

// execute invokes op with the batch's snapshotted context and argument and
// fans the outcome out to the batch's waiters. Runs outside the mutex; a
// call arriving meanwhile opens a new independent window, so two
// invocations can be in flight at once, each with its own waiter set.
func (d *Debouncer[T, R]) execute(op Operation[T, R], b *pendingBatch[T, R]) {
	ctx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	stop := context.AfterFunc(d.ctx, cancel)
	defer stop()

	val, err := runRecovered(func() (R, error) { return op(ctx, b.arg) })
	d.batchesExecuted.Add(1)
	d.settle(b, val, err)

	d.logger.Debug("debounce batch executed",
		slog.String("batch_id", b.id.String()),
		slog.Int("waiters", len(b.waiters)),
		slog.Bool("failed", err != nil))
}

// settle fans one outcome out to every waiter of a detached batch. If the
// debouncer was closed while the operation was in flight, the outcome is
// discarded and the waiters reject with ErrClosed instead.
func (d *Debouncer[T, R]) settle(b *pendingBatch[T, R], val R, err error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		var zero R
		val, err = zero, ErrClosed
	}

	for _, w := range b.waiters {
		if w.Settle(val, err) {
			d.waitersSettled.Add(1)
		}
	}
}

// Cancel discards the pending batch, rejecting all of its futures with a
// cancellation error carrying reason. A nil reason rejects with ErrCanceled;
// a reason already matching ErrCanceled is used verbatim; any other reason
// is wrapped so errors.Is(err, ErrCanceled) still holds. Canceling with
// nothing pending is a no-op, so repeated calls are safe.
func (d *Debouncer[T, R]) Cancel(reason error) {
	d.mu.Lock()
	b := d.detachLocked()
	d.mu.Unlock()
	if b == nil {
		return
	}

	d.rejectBatch(b, cancelError(reason))
	d.batchesCanceled.Add(1)
	d.logger.Debug("debounce batch canceled",
		slog.String("batch_id", b.id.String()),
		slog.Int("waiters", len(b.waiters)))
}

// Flush executes the pending batch immediately, bypassing the remaining
// delay. The operation runs on its own goroutine; its outcome reaches the
// callers through their futures, so Flush does not wait for it. With
// nothing pending Flush is a no-op.
func (d *Debouncer[T, R]) Flush() {
	d.mu.Lock()
	if d.closed {
		b := d.detachLocked()
		d.mu.Unlock()
		d.rejectBatch(b, ErrClosed)
		return
	}
	op := d.op
	b := d.detachLocked()
	d.mu.Unlock()
	if b == nil {
		return
	}

	go d.execute(op, b)
}

// Pending reports whether a batch is currently scheduled. Always false
// after Close.
func (d *Debouncer[T, R]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.batch != nil && !d.closed
}

// SettleWith overrides the pending batch's outcome: the wrapped operation
// is never invoked, and executor's result (or recovered panic) is fanned
// out to every pending future instead. The returned future reflects the
// same outcome, so the caller of SettleWith can await it too. Executor runs
// on its own goroutine. On a closed debouncer the returned future is
// rejected with ErrClosed.
func (d *Debouncer[T, R]) SettleWith(executor func() (R, error)) *future.Future[R] {
	d.mu.Lock()
	if d.closed {
		b := d.detachLocked()
		d.mu.Unlock()
		d.rejectBatch(b, ErrClosed)
		return future.Rejected[R](ErrClosed)
	}
	b := d.detachLocked()
	d.mu.Unlock()

	p, f := future.New[R]()
	go func() {
		val, err := runRecovered(executor)
		d.batchesExecuted.Add(1)

		d.mu.Lock()
		closed := d.closed
		d.mu.Unlock()
		if closed {
			var zero R
			val, err = zero, ErrClosed
		}

		if b != nil {
			for _, w := range b.waiters {
				if w.Settle(val, err) {
					d.waitersSettled.Add(1)
				}
			}
		}
		p.Settle(val, err)
	}()
	return f
}

// SetOperation swaps the wrapped operation. The next batch execution uses
// the most recently supplied operation; a pending window is not disturbed.
func (d *Debouncer[T, R]) SetOperation(op Operation[T, R]) {
	if op == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.op = op
}

// SetDelay changes the trailing delay. A pending batch must never execute
// under a configuration it never agreed to, so it is canceled with
// ErrConfigChanged before the new value takes effect.
func (d *Debouncer[T, R]) SetDelay(delay time.Duration) error {
	if delay <= 0 {
		return ErrInvalidDelay
	}
	return d.reconfigure(func() { d.delay = delay })
}

// SetMaxWait changes the max-wait ceiling; zero disables it. Like SetDelay,
// any pending batch is canceled with ErrConfigChanged first.
func (d *Debouncer[T, R]) SetMaxWait(maxWait time.Duration) error {
	if maxWait < 0 {
		return ErrInvalidMaxWait
	}
	return d.reconfigure(func() { d.maxWait = maxWait })
}

// reconfigure cancels the pending batch (if any) with ErrConfigChanged and
// applies the configuration mutation under the lock.
func (d *Debouncer[T, R]) reconfigure(apply func()) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	b := d.detachLocked()
	apply()
	d.mu.Unlock()

	if b != nil {
		d.rejectBatch(b, ErrConfigChanged)
		d.batchesCanceled.Add(1)
		d.logger.Debug("debounce batch canceled by reconfiguration",
			slog.String("batch_id", b.id.String()))
	}
	return nil
}

// Close permanently shuts the debouncer down: both timers stop, every
// outstanding future rejects with ErrClosed, and the lifecycle context is
// canceled so in-flight operations can abort (their eventual outcome is
// discarded). Subsequent calls yield futures already rejected with
// ErrClosed; Cancel, Flush, and SettleWith become safe no-ops.
//
// The owning host must call Close exactly once when the debouncer's
// context is torn down, and must build a fresh instance instead of reusing
// a closed one. Close itself is idempotent and always returns nil.
func (d *Debouncer[T, R]) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	b := d.detachLocked()
	d.mu.Unlock()

	d.cancel()
	d.rejectBatch(b, ErrClosed)
	if b != nil {
		d.batchesCanceled.Add(1)
	}
	d.logger.Debug("debouncer closed")
	return nil
}

// Stats returns a snapshot of the debouncer's counters.
func (d *Debouncer[T, R]) Stats() Stats {
	d.mu.Lock()
	pending := d.batch != nil && !d.closed
	closed := d.closed
	d.mu.Unlock()

	return Stats{
		Calls:           d.calls.Load(),
		BatchesExecuted: d.batchesExecuted.Load(),
		BatchesCanceled: d.batchesCanceled.Load(),
		WaitersSettled:  d.waitersSettled.Load(),
		Pending:         pending,
		Closed:          closed,
	}
}

// rejectBatch rejects every waiter of a detached batch with err. Safe on a
// nil batch.
func (d *Debouncer[T, R]) rejectBatch(b *pendingBatch[T, R], err error) {
	if b == nil {
		return
	}
	for _, w := range b.waiters {
		if w.Reject(err) {
			d.waitersSettled.Add(1)
		}
	}
}

// runRecovered invokes fn, converting a panic into an error so a buggy
// operation or executor can never leave a batch's futures unsettled.
func runRecovered[R any](fn func() (R, error)) (val R, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("debounce: operation panicked: %w", e)
			} else {
				err = fmt.Errorf("debounce: operation panicked: %v", r)
			}
		}
	}()
	return fn()
}
