package common

import (
	"context"
	"sync"
)

// RunParallel runs every task in its own goroutine and waits for all of
// them. errs[i] is the error of tasks[i]; failed counts the non nil ones.
func RunParallel(ctx context.Context, tasks ...func(context.Context) error) (errs []error, failed int) {
	errs = make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = task(ctx)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	return errs, failed
}
