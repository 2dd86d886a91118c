package ui

import (
	"fmt"
	"time"

	"github.com/bamsammich/fsindex/internal/stats"
)

// ScanSummary is the input to CompletionSummary.
type ScanSummary struct {
	Stats       stats.Snapshot
	ScanTime    time.Duration
	CommitTime  time.Duration
	Interrupted bool
}

// CompletionSummary builds the final summary line.
// Format: done ✓  dirs 1,204  files 48,917  size 2.1 GiB  scan 3.20s (15,286 items/s)  commit 0.84s  errors 0
func CompletionSummary(s ScanSummary) string {
	icon := "✓"
	if s.Interrupted {
		icon = "✗"
	}

	line := fmt.Sprintf("done %s  dirs %s  files %s  size %s  scan %s (%s)  commit %s  errors %s",
		icon,
		FormatCount(s.Stats.Dirs),
		FormatCount(s.Stats.Files()),
		FormatBytes(s.Stats.Bytes),
		FormatDuration(s.ScanTime),
		FormatItemRate(s.Stats.Rate(s.ScanTime)),
		FormatDuration(s.CommitTime),
		FormatCount(s.Stats.Errors),
	)
	if s.Interrupted {
		line += "  (partial scan due to interruption)"
	}
	return line
}
