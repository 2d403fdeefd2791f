package optimize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"batchOptimize/internal/codec"
)

// supportedExts is the allow-list of source file extensions (lowercase).
var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// IsSupported reports whether name carries an allowed image extension.
// The comparison ignores case.
func IsSupported(name string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}

// Scan lists the supported images directly inside dir, sorted by name.
// Subdirectories are not descended into.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInputDir, dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// BuildWorkItems pairs every source with a destination of the same base
// name inside outputDir. The name is kept verbatim, so a .png source yields
// JPEG bytes under a .png name.
func BuildWorkItems(sources []string, outputDir string, opts codec.Options) []WorkItem {
	items := make([]WorkItem, 0, len(sources))
	for _, src := range sources {
		items = append(items, WorkItem{
			SourcePath: src,
			DestPath:   filepath.Join(outputDir, filepath.Base(src)),
			Options:    opts,
		})
	}
	return items
}
