package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/bamsammich/fsindex/internal/filter"
	"github.com/bamsammich/fsindex/internal/platform"
	"github.com/bamsammich/fsindex/internal/record"
	"github.com/bamsammich/fsindex/internal/stats"
)

var (
	// ErrMaxDepth is returned by Start when MaxDepth is below 1.
	ErrMaxDepth = errors.New("max depth must be at least 1")
	// ErrNotDir is returned by Start when the root is not a directory.
	ErrNotDir = errors.New("root is not a directory")
	// ErrNoSink is returned by Start when Config.Sink is nil.
	ErrNoSink = errors.New("no record sink")
)

// RecordSink receives records in pre-order and persists them in one
// commit at the end of the scan.
type RecordSink interface {
	Add(rec record.FileRecord) error
	Commit(ctx context.Context) error
}

// ErrorSink receives diagnostic lines and is closed once when the scan
// ends.
type ErrorSink interface {
	LogError(msg string)
	Close(interrupted bool) error
}

// Reporter runs alongside the walk until ctx is cancelled or stop is
// closed.
type Reporter interface {
	Run(ctx context.Context, stop <-chan struct{})
}

// Config describes a scan.
type Config struct {
	Root       string
	MaxDepth   int
	SkipHidden bool
	Filter     *filter.Chain

	Probe    platform.Probe   // nil selects platform.Native
	Sink     RecordSink       // required
	Errors   ErrorSink        // nil discards diagnostics
	Stats    *stats.Collector // nil allocates one
	Reporter Reporter         // nil disables progress
}

// Result is the outcome of a scan.
type Result struct {
	Stats       stats.Snapshot
	Interrupted bool
	ScanTime    time.Duration
	CommitTime  time.Duration
	Err         error
}

// Job is a running scan. Done is closed after the walk, the commit and the
// access log close have all finished.
type Job struct {
	done chan struct{}
	res  Result
}

// Done returns a channel closed when the scan is fully finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the scan is finished and returns its result.
func (j *Job) Wait() Result {
	<-j.done
	return j.res
}

// Run executes a scan, blocking until complete.
func Run(ctx context.Context, cfg Config) Result {
	job, err := Start(ctx, cfg)
	if err != nil {
		return Result{Err: err}
	}
	return job.Wait()
}

// Start validates cfg and begins the scan on a new goroutine. Cancelling
// ctx stops the walk; the records gathered so far are still committed.
func Start(ctx context.Context, cfg Config) (*Job, error) {
	if cfg.MaxDepth < 1 {
		return nil, fmt.Errorf("%w: %d", ErrMaxDepth, cfg.MaxDepth)
	}
	if cfg.Sink == nil {
		return nil, ErrNoSink
	}
	if cfg.Probe == nil {
		cfg.Probe = platform.Native()
	}
	if cfg.Errors == nil {
		cfg.Errors = discard{}
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	info, err := cfg.Probe.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, root)
	}
	cfg.Root = root

	job := &Job{done: make(chan struct{})}
	go func() {
		defer close(job.done)
		job.res = run(ctx, cfg)
	}()
	return job, nil
}

func run(ctx context.Context, cfg Config) (res Result) {
	w := &walker{
		root:       cfg.Root,
		maxDepth:   cfg.MaxDepth,
		skipHidden: cfg.SkipHidden,
		filter:     cfg.Filter,
		probe:      cfg.Probe,
		classifier: NewClassifier(cfg.Probe),
		extractor:  NewExtractor(cfg.Probe),
		sink:       cfg.Sink,
		diags:      cfg.Errors,
		stats:      cfg.Stats,
	}

	// The access log is closed last, after the commit, so its banner
	// reflects the final state.
	defer func() {
		if err := cfg.Errors.Close(res.Interrupted); err != nil {
			res.Err = errors.Join(res.Err, fmt.Errorf("close access log: %w", err))
		}
	}()

	slog.Info("scan started", "root", cfg.Root, "max_depth", cfg.MaxDepth, "skip_hidden", cfg.SkipHidden)

	scanStart := time.Now()
	stopReporter := startReporter(ctx, cfg.Reporter)
	defer stopReporter()
	action := w.run(ctx)
	stopReporter()
	res.ScanTime = time.Since(scanStart)

	res.Interrupted = action == Terminate && w.err == nil && ctx.Err() != nil
	res.Err = w.err

	// Cancellation must not abort persisting what was already gathered.
	commitStart := time.Now()
	if err := cfg.Sink.Commit(context.WithoutCancel(ctx)); err != nil {
		res.Err = errors.Join(res.Err, fmt.Errorf("commit records: %w", err))
	}
	res.CommitTime = time.Since(commitStart)
	res.Stats = cfg.Stats.Snapshot()

	slog.Info("scan finished",
		"nodes", res.Stats.Nodes,
		"dirs", res.Stats.Dirs,
		"errors", res.Stats.Errors,
		"interrupted", res.Interrupted,
		"scan_time", res.ScanTime,
		"commit_time", res.CommitTime,
	)
	return res
}

// startReporter launches r and returns a function that stops it and waits
// for it to exit.
func startReporter(ctx context.Context, r Reporter) func() {
	if r == nil {
		return func() {}
	}
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Run(ctx, stop)
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

type discard struct{}

func (discard) LogError(string)  {}
func (discard) Close(bool) error { return nil }
