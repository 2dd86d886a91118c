package ui

import (
	"context"
	"io"
	"time"

	"github.com/bamsammich/fsindex/internal/stats"
)

// DefaultInterval is the progress line period.
const DefaultInterval = 5 * time.Second

// Reporter prints periodic progress while a scan runs.
type Reporter interface {
	// Run blocks until ctx is cancelled or stop is closed.
	Run(ctx context.Context, stop <-chan struct{})
}

// Config configures a Reporter.
type Config struct {
	Writer   io.Writer
	Stats    *stats.Collector
	Interval time.Duration
	IsTTY    bool
	Disabled bool
}

// NewReporter creates the appropriate reporter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewReporter(cfg Config) Reporter {
	if cfg.Disabled || cfg.Writer == nil || cfg.Stats == nil {
		return quietReporter{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &plainReporter{
		w:        cfg.Writer,
		stats:    cfg.Stats,
		interval: cfg.Interval,
		tty:      cfg.IsTTY,
	}
}
