// Package fswatch watches a directory tree recursively and debounces
// filesystem event bursts into single handler invocations.
//
// Editors, build tools, and sync clients touch many files in quick
// succession; reacting to every event wastes work. fswatch accumulates the
// distinct paths changed during a quiet-period window and delivers them to
// the handler once, using the debounce package to manage the window.
//
// # Usage
//
//	w, err := fswatch.New("./site", func(ctx context.Context, paths []string) error {
//		return rebuild(ctx, paths)
//	},
//		fswatch.WithDelay(200*time.Millisecond),
//		fswatch.WithMaxWait(2*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//		log.Fatal(err)
//	}
//
// Run blocks until the context is canceled. Newly created directories are
// added to the watch set automatically. Handler errors are logged, not
// fatal.
package fswatch
