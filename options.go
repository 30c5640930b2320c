package debounce

import (
	"log/slog"
	"time"
)

// options holds construction-time settings shared by all Debouncer
// instantiations.
type options struct {
	maxWait   time.Duration
	logger    *slog.Logger
	scheduler Scheduler
}

// Option configures a Debouncer.
type Option func(*options)

// WithMaxWait bounds the total coalescing latency: a batch executes at most
// maxWait after the first call in its window, no matter how frequently new
// calls keep resetting the trailing delay.
func WithMaxWait(maxWait time.Duration) Option {
	return func(o *options) {
		if maxWait > 0 {
			o.maxWait = maxWait
		}
	}
}

// WithLogger sets the logger for internal operations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithScheduler replaces the timer service used for the delay and max-wait
// timers. The default schedules with time.AfterFunc.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}
