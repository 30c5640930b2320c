package fswatch

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/debounce"
)

// Handler receives the set of paths that changed during one coalescing
// window, deduplicated and sorted.
type Handler func(ctx context.Context, paths []string) error

// Watcher watches a directory tree recursively and debounces filesystem
// event bursts: a flurry of writes produces one Handler invocation carrying
// every distinct path touched during the window.
type Watcher struct {
	root    string
	handler Handler
	logger  *slog.Logger
	d       *debounce.Debouncer[[]string, int]

	mu      sync.Mutex
	pending map[string]struct{}
}

// options holds watcher settings.
type options struct {
	delay   time.Duration
	maxWait time.Duration
	logger  *slog.Logger
}

// Option configures a Watcher.
type Option func(*options)

// WithDelay sets the quiet period after the last event before the handler
// runs.
func WithDelay(delay time.Duration) Option {
	return func(o *options) {
		if delay > 0 {
			o.delay = delay
		}
	}
}

// WithMaxWait bounds how long a continuous event stream can postpone the
// handler.
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

// New creates a Watcher for the directory tree rooted at root. The handler
// is invoked once per settled burst of events. Run must be called to start
// watching.
func New(root string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, debounce.ErrNilOperation
	}

	o := &options{
		delay:  200 * time.Millisecond,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	w := &Watcher{
		root:    root,
		handler: handler,
		logger:  o.logger,
		pending: make(map[string]struct{}),
	}

	dopts := []debounce.Option{debounce.WithLogger(o.logger)}
	if o.maxWait > 0 {
		dopts = append(dopts, debounce.WithMaxWait(o.maxWait))
	}
	d, err := debounce.New(w.dispatch, o.delay, dopts...)
	if err != nil {
		return nil, err
	}
	w.d = d

	return w, nil
}

// dispatch is the debounced operation: it forgets the snapshotted paths
// (events arriving during the handler run accumulate into the next window)
// and hands them to the handler.
func (w *Watcher) dispatch(ctx context.Context, paths []string) (int, error) {
	w.mu.Lock()
	for _, p := range paths {
		delete(w.pending, p)
	}
	w.mu.Unlock()

	if err := w.handler(ctx, paths); err != nil {
		return 0, err
	}
	return len(paths), nil
}

// Run starts watching and blocks until ctx is canceled or the underlying
// watcher fails. Handler errors are logged and do not stop the watcher.
// On return the debouncer is closed, so any still-pending window is
// discarded.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()
	defer w.d.Close()

	if err := addRecursive(fsw, w.root); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "fswatch started", slog.String("root", w.root))

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(context.Background(), "fswatch stopping")
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories must be watched before their contents change.
			if ev.Op&fsnotify.Create != 0 {
				if err := addRecursive(fsw, ev.Name); err != nil {
					w.logger.WarnContext(ctx, "fswatch add failed",
						slog.String("path", ev.Name), slog.Any("error", err))
				}
			}
			w.record(ctx, ev.Name)

		case werr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "fswatch error", slog.Any("error", werr))
		}
	}
}

// record adds the path to the pending set and pushes the accumulated
// snapshot through the debouncer. Only the latest snapshot executes, and it
// contains every path recorded so far, so intermediate calls lose nothing.
func (w *Watcher) record(ctx context.Context, path string) {
	w.mu.Lock()
	w.pending[path] = struct{}{}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.mu.Unlock()
	sort.Strings(paths)

	f := w.d.Call(ctx, paths)
	go func() {
		_, err := f.Await()
		if err == nil || errors.Is(err, debounce.ErrCanceled) || errors.Is(err, debounce.ErrClosed) {
			return
		}
		w.logger.WarnContext(ctx, "fswatch handler failed", slog.Any("error", err))
	}()
}

// Flush runs the handler for the pending window immediately, bypassing the
// remaining quiet period. Useful right before shutdown.
func (w *Watcher) Flush() {
	w.d.Flush()
}

// Pending reports whether an event burst is waiting for its quiet period.
func (w *Watcher) Pending() bool {
	return w.d.Pending()
}

// addRecursive watches path and every directory below it. Non-directory
// paths are ignored, as are paths that vanish mid-walk.
func addRecursive(fsw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return fsw.Add(p)
	})
}
