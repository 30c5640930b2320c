package debounce_test

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/debounce"
)

func ExampleDebouncer() {
	d, err := debounce.New(func(ctx context.Context, query string) (string, error) {
		return "results for " + query, nil
	}, 50*time.Millisecond)
	if err != nil {
		panic(err)
	}
	defer d.Close()

	ctx := context.Background()
	d.Call(ctx, "deb")
	d.Call(ctx, "debou")
	f := d.Call(ctx, "debounce")

	// One execution with the last argument; every call's future settles
	// with the same outcome.
	v, err := f.Await()
	fmt.Println(v, err)
	// Output: results for debounce <nil>
}

func ExampleDebouncer_SettleWith() {
	d, err := debounce.New(func(ctx context.Context, query string) (string, error) {
		return "live: " + query, nil
	}, time.Minute)
	if err != nil {
		panic(err)
	}
	defer d.Close()

	pending := d.Call(context.Background(), "query")

	// Serve the pending callers from cache instead of running the search.
	own := d.SettleWith(func() (string, error) { return "cached", nil })

	v1, _ := pending.Await()
	v2, _ := own.Await()
	fmt.Println(v1, v2)
	// Output: cached cached
}
