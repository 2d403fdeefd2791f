// Package optimize coordinates a batch run: it scans the input directory,
// fans the images out to the worker pool and aggregates the byte totals.
package optimize

import (
	"errors"
	"time"

	"batchOptimize/internal/codec"
	"batchOptimize/internal/config"
	"batchOptimize/internal/stats"
)

// Setup failures. Per-image failures never surface as these.
var (
	ErrInputDir  = errors.New("cannot list input directory")
	ErrOutputDir = errors.New("cannot create output directory")
)

// WorkItem describes one image to optimize. It is built once before dispatch
// and only read afterwards.
type WorkItem struct {
	SourcePath string
	DestPath   string
	codec.Options
}

// Summary is the outcome of a run.
type Summary struct {
	stats.Snapshot
	Found   int
	Failed  int
	Workers int
	Elapsed time.Duration
}

// CodecOptions extracts the per-image conversion settings from cfg.
func CodecOptions(cfg *config.Config) codec.Options {
	return codec.Options{
		Quality:         cfg.Quality,
		MaxDimension:    cfg.MaxDimension,
		AutoOrient:      cfg.AutoOrient,
		PreserveEXIF:    cfg.PreserveEXIF,
		PreserveModTime: cfg.PreserveModTime,
	}
}
