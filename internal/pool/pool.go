// Package pool runs a fixed list of independent items on a bounded set of
// worker goroutines.
package pool

import (
	"runtime"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// maxDefaultWorkers caps the automatic worker count.
const maxDefaultWorkers = 32

// Func processes one item on the worker identified by workerID (1-based).
type Func[T any] func(workerID int, item T) error

// ErrorFunc receives the failure of one item. It may be called from any
// worker goroutine concurrently.
type ErrorFunc[T any] func(workerID int, item T, err error)

// DefaultWorkers returns the worker count used when none is configured:
// one per CPU plus a few extra to cover goroutines blocked on disk.
func DefaultWorkers() int {
	return min(maxDefaultWorkers, runtime.NumCPU()+4)
}

// Size returns how many workers Run starts for n items when asked for
// workers. workers <= 0 selects DefaultWorkers. The result never exceeds n.
func Size(n, workers int) int {
	if n <= 0 {
		return 0
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return min(workers, n)
}

// Run hands every item to exactly one worker and returns once all of them
// have been attempted. A returned error or a panic inside fn is isolated to
// that item and delivered to onErr; the remaining items keep flowing.
// Completion order is unspecified. Run returns the number of workers started.
func Run[T any](items []T, workers int, fn Func[T], onErr ErrorFunc[T]) int {
	n := Size(len(items), workers)
	if n == 0 {
		return 0
	}

	queue := make(chan T, len(items))
	for _, it := range items {
		queue <- it
	}
	close(queue)

	var wg conc.WaitGroup
	for id := 1; id <= n; id++ {
		wg.Go(func() {
			for it := range queue {
				if err := attempt(id, it, fn); err != nil && onErr != nil {
					onErr(id, it, err)
				}
			}
		})
	}
	wg.Wait()
	return n
}

func attempt[T any](workerID int, item T, fn Func[T]) (err error) {
	if r := panics.Try(func() { err = fn(workerID, item) }); r != nil {
		return r.AsError()
	}
	return err
}
