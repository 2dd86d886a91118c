package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/fsindex/internal/stats"
)

// plainReporter writes one progress line per tick. On a terminal the line
// is redrawn in place.
type plainReporter struct {
	w        io.Writer
	stats    *stats.Collector
	interval time.Duration
	tty      bool

	drawn bool // a line without trailing newline is on screen
}

func (p *plainReporter) Run(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer p.finish()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			p.printProgress()
		}
	}
}

func (p *plainReporter) printProgress() {
	line := ProgressLine(p.stats.Snapshot())
	if p.tty {
		fmt.Fprintf(p.w, "\r\033[K%s", line)
		p.drawn = true
		return
	}
	fmt.Fprintln(p.w, line)
}

func (p *plainReporter) finish() {
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}

// ProgressLine formats the counters the way the reporter prints them.
func ProgressLine(s stats.Snapshot) string {
	return fmt.Sprintf("Progress: %d items processed (%d dirs, %d files)...", s.Nodes, s.Dirs, s.Files())
}
