package optimize

import (
	"time"

	"batchOptimize/internal/codec"
	"batchOptimize/internal/stats"
)

// Observer receives run progress so reporting stays out of the coordinator.
// Implementations must be safe for concurrent use: item events arrive from
// every worker goroutine.
type Observer interface {
	// OnStart is called once, before any image is dispatched.
	OnStart(total, workers int)
	// OnItemDone is called after an image was written and counted.
	OnItemDone(workerID int, src string, res codec.Result)
	// OnItemFailed is called for an image that could not be optimized.
	OnItemFailed(workerID int, src string, err error)
	// OnFinish is called once after every image has been attempted.
	OnFinish(snap stats.Snapshot, failed int, elapsed time.Duration)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnStart(int, int) {}
func (NopObserver) OnItemDone(int, string, codec.Result) {}
func (NopObserver) OnItemFailed(int, string, error) {}
func (NopObserver) OnFinish(stats.Snapshot, int, time.Duration) {}
