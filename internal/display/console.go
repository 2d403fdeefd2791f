// Package display renders the human-facing report of an optimize run.
package display

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"batchOptimize/internal/codec"
	"batchOptimize/internal/stats"
)

// Color modes accepted by ColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorEnabled resolves a color mode for w. In auto mode color is used only
// when w is a terminal and NO_COLOR is unset.
func ColorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type styles struct {
	worker  lipgloss.Style
	name    lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	label   lipgloss.Style
	heading lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		worker:  r.NewStyle().Foreground(lipgloss.Color("6")),
		name:    r.NewStyle().Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("2")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("1")),
		label:   r.NewStyle().Faint(true),
		heading: r.NewStyle().Bold(true).Underline(true),
	}
}

// Console prints one line per finished image and a closing summary.
// Lines from concurrent workers never interleave.
type Console struct {
	mu sync.Mutex
	w  io.Writer
	st styles
}

// NewConsole returns a Console writing to w, styled only when color is set.
func NewConsole(w io.Writer, color bool) *Console {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Console{w: w, st: newStyles(r)}
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, s)
}

// OnStart announces the batch.
func (c *Console) OnStart(total, workers int) {
	if total == 0 {
		c.println("No images found.")
		return
	}
	c.println(c.st.label.Render(fmt.Sprintf("Optimizing %d images with %d workers", total, workers)))
}

// OnItemDone reports one optimized image.
func (c *Console) OnItemDone(workerID int, src string, res codec.Result) {
	reduction := "n/a"
	if pct, ok := stats.Reduction(res.OriginalBytes, res.OptimizedBytes); ok {
		style := c.st.good
		if pct < 0 {
			style = c.st.bad
		}
		reduction = style.Render(FormatPercent(pct))
	}
	c.println(fmt.Sprintf("%s %s: %s -> %s (%s reduction)",
		c.st.worker.Render(fmt.Sprintf("[worker %d]", workerID)),
		c.st.name.Render(filepath.Base(src)),
		FormatKB(res.OriginalBytes),
		FormatKB(res.OptimizedBytes),
		reduction,
	))
}

// OnItemFailed reports an image that could not be optimized.
func (c *Console) OnItemFailed(workerID int, src string, err error) {
	c.println(fmt.Sprintf("%s %s %s: %v",
		c.st.worker.Render(fmt.Sprintf("[worker %d]", workerID)),
		c.st.bad.Render("Error processing"),
		src,
		err,
	))
}

// OnFinish prints the aggregate totals. Nothing is divided when no image
// was processed.
func (c *Console) OnFinish(snap stats.Snapshot, failed int, elapsed time.Duration) {
	if snap.Count == 0 {
		if failed > 0 {
			c.println(c.st.bad.Render(fmt.Sprintf("No images were optimized (%d failed).", failed)))
		}
		return
	}

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", c.st.label.Render(fmt.Sprintf("%-18s", label+":")), value)
	}

	pct, _ := snap.Reduction()
	lines := []string{
		"",
		c.st.heading.Render("Final statistics"),
		row("Images processed", fmt.Sprint(snap.Count)),
		row("Original size", FormatMB(snap.OriginalBytes)),
		row("Optimized size", FormatMB(snap.OptimizedBytes)),
		row("Total reduction", FormatPercent(pct)),
		row("Space saved", FormatBytesWithSign(snap.SpaceSaved())),
		row("Processing time", FormatSeconds(elapsed)),
	}
	if failed > 0 {
		lines = append(lines, row("Failed", c.st.bad.Render(fmt.Sprint(failed))))
	}
	c.println(strings.Join(lines, "\n"))
}
