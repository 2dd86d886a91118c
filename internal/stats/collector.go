package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks scan statistics using lock-free atomic counters. The
// walker is the only writer; the progress reporter and the summary read
// snapshots.
type Collector struct {
	nodes     atomic.Int64
	dirs      atomic.Int64
	skipped   atomic.Int64
	errors    atomic.Int64
	bytes     atomic.Int64
	startTime time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	Nodes   int64 // records emitted
	Dirs    int64 // directory records emitted
	Skipped int64 // nodes left out by policy (depth, hidden, exclude)
	Errors  int64 // diagnostics written to the access log
	Bytes   int64 // summed size of file records
	Elapsed time.Duration
}

// Files is the number of non-directory records.
func (s Snapshot) Files() int64 { return s.Nodes - s.Dirs }

// AddNode counts one emitted record.
func (c *Collector) AddNode(dir bool, size int64) {
	c.nodes.Add(1)
	if dir {
		c.dirs.Add(1)
		return
	}
	c.bytes.Add(size)
}

func (c *Collector) AddSkipped(n int64) { c.skipped.Add(n) }
func (c *Collector) AddErrors(n int64)  { c.errors.Add(n) }

// Snapshot returns a point-in-time read of all counters. Dirs is loaded
// before Nodes so Files never goes negative.
func (c *Collector) Snapshot() Snapshot {
	dirs := c.dirs.Load()
	return Snapshot{
		Dirs:    dirs,
		Nodes:   c.nodes.Load(),
		Skipped: c.skipped.Load(),
		Errors:  c.errors.Load(),
		Bytes:   c.bytes.Load(),
		Elapsed: c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// Rate returns records per second over d, or 0 when d is not positive.
func (s Snapshot) Rate(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(s.Nodes) / d.Seconds()
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"nodes=%d dirs=%d files=%d skipped=%d errors=%d bytes=%d",
		s.Nodes, s.Dirs, s.Files(), s.Skipped, s.Errors, s.Bytes,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
