package debounce

import "time"

// Timer is a handle to a scheduled callback. Stop cancels the callback and
// reports whether it was still pending; stopping an already-fired or
// already-stopped timer is a no-op.
type Timer interface {
	Stop() bool
}

// Scheduler schedules callbacks to run after a delay. The debouncer uses it
// for both the trailing delay timer and the max-wait timer, so hosts and
// tests can substitute a deterministic implementation via WithScheduler.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Timer
}

// stdScheduler is the default Scheduler backed by time.AfterFunc.
type stdScheduler struct{}

func (stdScheduler) Schedule(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
