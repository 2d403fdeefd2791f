package optimize

import (
	"fmt"
	"os"
	"time"

	"batchOptimize/internal/codec"
	"batchOptimize/internal/config"
	"batchOptimize/internal/logging"
	"batchOptimize/internal/pool"
	"batchOptimize/internal/stats"
)

// ProcessFunc converts one image. codec.Process is the production value.
type ProcessFunc func(src, dst string, opts codec.Options) (codec.Result, error)

// Runner executes batch runs. The zero value is ready to use: it converts
// with codec.Process, reports nothing and logs nowhere.
type Runner struct {
	Process  ProcessFunc
	Observer Observer
	Logger   *logging.Logger
}

// Run optimizes every supported image directly inside cfg.InputDir into
// cfg.OutputDir. Only setup problems are returned as errors; an image that
// fails is logged, reported to the observer and left out of the totals.
func (r *Runner) Run(cfg *config.Config) (Summary, error) {
	process := r.Process
	if process == nil {
		process = codec.Process
	}
	obs := r.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	log := r.Logger
	if log == nil {
		log = logging.NopLogger()
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("%w %s: %w", ErrOutputDir, cfg.OutputDir, err)
	}

	sources, err := Scan(cfg.InputDir)
	if err != nil {
		return Summary{}, err
	}
	items := BuildWorkItems(sources, cfg.OutputDir, CodecOptions(cfg))

	workers := pool.Size(len(items), cfg.Workers)
	log.Info("run started",
		"input", cfg.InputDir,
		"output", cfg.OutputDir,
		"images", len(items),
		"workers", workers,
		"quality", cfg.Quality,
		"max_dimension", cfg.MaxDimension,
		"heif", codec.HEIFSupported,
	)
	obs.OnStart(len(items), workers)

	st := stats.New()
	start := time.Now()

	pool.Run(items, cfg.Workers,
		func(workerID int, it WorkItem) error {
			wlog := log.With("worker", workerID)
			res, err := process(it.SourcePath, it.DestPath, it.Options)
			if err != nil {
				return err
			}
			if res.ModTimeErr != nil {
				wlog.Warn("modification time not preserved", "path", it.DestPath, "error", res.ModTimeErr)
			}
			wlog.Debug("image optimized",
				"path", it.SourcePath,
				"format", res.Format,
				"width", res.Width,
				"height", res.Height,
				"original_bytes", res.OriginalBytes,
				"optimized_bytes", res.OptimizedBytes,
			)
			obs.OnItemDone(workerID, it.SourcePath, res)
			// counted after OnItemDone returns; an observer panic fails the item
			st.Update(res.OriginalBytes, res.OptimizedBytes)
			return nil
		},
		func(workerID int, it WorkItem, err error) {
			log.With("worker", workerID).Error("image failed", "path", it.SourcePath, "error", err)
			obs.OnItemFailed(workerID, it.SourcePath, err)
		},
	)

	elapsed := time.Since(start)
	snap := st.Snapshot()
	sum := Summary{
		Snapshot: snap,
		Found:    len(items),
		Failed:   len(items) - snap.Count,
		Workers:  workers,
		Elapsed:  elapsed,
	}

	log.Info("run finished",
		"processed", snap.Count,
		"failed", sum.Failed,
		"original_bytes", snap.OriginalBytes,
		"optimized_bytes", snap.OptimizedBytes,
		"elapsed", elapsed,
	)
	obs.OnFinish(snap, sum.Failed, elapsed)
	return sum, nil
}
