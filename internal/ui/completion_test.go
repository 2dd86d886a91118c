package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/fsindex/internal/stats"
)

func TestCompletionSummary(t *testing.T) {
	s := ScanSummary{
		Stats:      stats.Snapshot{Nodes: 1500, Dirs: 204, Errors: 3, Bytes: 1536},
		ScanTime:   2 * time.Second,
		CommitTime: 250 * time.Millisecond,
	}
	assert.Equal(t,
		"done ✓  dirs 204  files 1,296  size 1.5 KiB  scan 2.00s (750 items/s)  commit 0.25s  errors 3",
		CompletionSummary(s))
}

func TestCompletionSummaryInterrupted(t *testing.T) {
	got := CompletionSummary(ScanSummary{
		Stats:       stats.Snapshot{Nodes: 10, Dirs: 2, Bytes: 1536},
		ScanTime:    time.Second,
		Interrupted: true,
	})
	assert.True(t, strings.HasPrefix(got, "done ✗"), got)
	assert.Contains(t, got, "files 8")
	assert.True(t, strings.HasSuffix(got, "(partial scan due to interruption)"), got)
}
