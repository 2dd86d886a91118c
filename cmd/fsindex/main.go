package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/fsindex/internal/accesslog"
	"github.com/bamsammich/fsindex/internal/config"
	"github.com/bamsammich/fsindex/internal/engine"
	"github.com/bamsammich/fsindex/internal/filter"
	"github.com/bamsammich/fsindex/internal/platform"
	"github.com/bamsammich/fsindex/internal/shutdown"
	"github.com/bamsammich/fsindex/internal/stats"
	"github.com/bamsammich/fsindex/internal/store"
	"github.com/bamsammich/fsindex/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// filterFlag appends each --exclude value to a shared filter.Chain so the
// CLI order is kept.
type filterFlag struct {
	chain *filter.Chain
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	return f.chain.AddExclude(val)
}

type scanOpts struct {
	root             string
	depth            string
	skipHidden       bool
	verbose          bool
	dbPath           string
	accessLog        string
	logFile          string
	excludeFrom      string
	noProgress       bool
	progressInterval time.Duration
	showVersion      bool

	grace     time.Duration
	outputDir string
	chain     *filter.Chain
}

func run() int {
	opts := scanOpts{chain: filter.NewChain()}

	rootCmd := &cobra.Command{
		Use:   "fsindex [flags]",
		Short: "Index filesystem metadata into a SQLite database",
		Long: `fsindex walks a directory tree to a bounded depth and records the
metadata of every file and directory it visits in a SQLite database.
Nodes that cannot be read are logged to an access error log.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.showVersion {
				fmt.Fprintf(os.Stdout, "fsindex %s\n", version)
				return nil
			}
			return runScan(cmd, &opts)
		},
	}

	rootCmd.Flags().BoolVar(&opts.showVersion, "version", false, "print version and exit")
	rootCmd.Flags().StringVar(&opts.root, "root", "", "directory to scan (default: home directory)")
	rootCmd.Flags().
		StringVarP(&opts.depth, "depth", "d", strconv.Itoa(config.DefaultDepth), "maximum depth to descend (1-20)")
	rootCmd.Flags().BoolVar(&opts.skipHidden, "skip-hidden", false, "skip hidden files and directories")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().
		StringVar(&opts.dbPath, "db", "", "metadata database path (default: <root>-<hash>_metadata.db)")
	rootCmd.Flags().
		StringVar(&opts.accessLog, "access-log", "", "access error log path (default: <root>-<hash>_access_errors.log)")
	rootCmd.Flags().StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().
		VarP(&filterFlag{chain: opts.chain}, "exclude", "", "exclude paths matching PATTERN (repeatable)")
	rootCmd.Flags().StringVar(&opts.excludeFrom, "exclude-from", "", "read filter rules from FILE")
	rootCmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable progress display")
	rootCmd.Flags().
		DurationVar(&opts.progressInterval, "progress-interval", ui.DefaultInterval, "time between progress lines")

	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "exclude" {
			f.NoOptDefVal = ""
		}
	})

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: scan entry point wires every component
func runScan(cmd *cobra.Command, opts *scanOpts) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyConfigDefaults(cmd, cfg.Defaults, opts); err != nil {
		return err
	}

	closeLog, err := setupLogging(opts.verbose, opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	maxDepth, err := config.ParseDepth(opts.depth)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.DepthWarning(opts.depth, err))
	}

	root, err := resolveRoot(opts.root)
	if err != nil {
		return err
	}

	if opts.excludeFrom != "" {
		if err := opts.chain.LoadFile(opts.excludeFrom); err != nil {
			return fmt.Errorf("--exclude-from: %w", err)
		}
	}

	names := artifactNames(root, opts.outputDir)
	if opts.dbPath == "" {
		opts.dbPath = names.db
	}
	if opts.accessLog == "" {
		opts.accessLog = names.accessLog
	}

	scanID := uuid.NewString()
	started := time.Now()
	slog.Debug("starting scan",
		"scan_id", scanID,
		"root", root,
		"max_depth", maxDepth,
		"skip_hidden", opts.skipHidden,
		"db", opts.dbPath,
		"access_log", opts.accessLog,
	)

	db, err := store.Create(opts.dbPath, store.Meta{
		ScanID:     scanID,
		Root:       root,
		MaxDepth:   maxDepth,
		SkipHidden: opts.skipHidden,
		Started:    started,
	})
	if err != nil {
		slog.Error("create database", "path", opts.dbPath, "error", err)
		return &exitError{code: 1}
	}
	defer db.Close()

	alog := accesslog.OpenOrConsole(opts.accessLog, accesslog.Header{
		Started:    started,
		Root:       root,
		MaxDepth:   maxDepth,
		SkipHidden: opts.skipHidden,
		ScanID:     scanID,
	}, os.Stderr)

	ctrl := shutdown.New(os.Stderr, shutdown.WithGrace(opts.grace))
	ctx := ctrl.Arm(cmd.Context())
	defer ctrl.Disarm()

	collector := stats.NewCollector()
	reporter := ui.NewReporter(ui.Config{
		Writer:   os.Stderr,
		Stats:    collector,
		Interval: opts.progressInterval,
		IsTTY:    ui.IsTTY(os.Stderr.Fd()),
		Disabled: opts.noProgress,
	})

	fmt.Fprintf(os.Stderr, "Scanning %s (max depth %d)\n", root, maxDepth)

	job, err := engine.Start(ctx, engine.Config{
		Root:       root,
		MaxDepth:   maxDepth,
		SkipHidden: opts.skipHidden,
		Filter:     opts.chain,
		Sink:       db,
		Errors:     alog,
		Stats:      collector,
		Reporter:   reporter,
	})
	if err != nil {
		_ = alog.Close(false) //nolint:errcheck // start error is the one reported
		return err
	}
	ctrl.Track(job.Done())
	res := job.Wait()

	if err := db.Finish(context.WithoutCancel(ctx), res.Interrupted, res.Stats); err != nil {
		slog.Warn("failed to record scan outcome", "error", err)
	}

	fmt.Fprintln(os.Stderr, ui.CompletionSummary(ui.ScanSummary{
		Stats:       res.Stats,
		ScanTime:    res.ScanTime,
		CommitTime:  res.CommitTime,
		Interrupted: res.Interrupted,
	}))
	fmt.Fprintf(os.Stderr, "Metadata written to %s\n", db.Path())
	if !alog.UsingConsole() {
		fmt.Fprintf(os.Stderr, "Access errors logged to %s\n", alog.Path())
	}

	if res.Err != nil {
		slog.Error("scan failed", "error", res.Err)
		return &exitError{code: 1}
	}
	return nil
}

func setupLogging(verbose bool, logFile string) (func(), error) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	var logHandler slog.Handler = textHandler
	closer := func() {}
	if logFile != "" {
		lf, err := os.Create(logFile)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		closer = func() { lf.Close() }
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(logHandler))
	return closer, nil
}

// resolveRoot defaults to the home directory, makes the path absolute and
// rejects anything that is not an existing directory.
func resolveRoot(root string) (string, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		root = home
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("root directory does not exist: %s", root)
		}
		return "", fmt.Errorf("root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root is not a directory: %s", root)
	}
	warnBoundaryRoot(platform.Native(), root)
	return root, nil
}

// warnBoundaryRoot tells the user up front when the root is a link, mount
// point or junction: the scan will record it and stop there.
func warnBoundaryRoot(p platform.Probe, root string) bool {
	c, err := engine.NewClassifier(p).Classify(root)
	if err != nil || !c.LinkType.IsBoundary() {
		return false
	}
	slog.Warn("root will be recorded but not descended",
		"root", root,
		"link_type", c.LinkType.String(),
	)
	return true
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, opts *scanOpts) error {
	changed := cmd.Flags().Changed
	if !changed("depth") && defaults.Depth != nil {
		opts.depth = strconv.Itoa(*defaults.Depth)
	}
	if !changed("skip-hidden") && defaults.SkipHidden != nil {
		opts.skipHidden = *defaults.SkipHidden
	}
	if !changed("verbose") && defaults.Verbose != nil {
		opts.verbose = *defaults.Verbose
	}
	if !changed("no-progress") && defaults.NoProgress != nil {
		opts.noProgress = *defaults.NoProgress
	}
	if !changed("progress-interval") && defaults.ProgressInterval != nil {
		opts.progressInterval = defaults.ProgressInterval.Duration
	}
	opts.grace = shutdown.DefaultGrace
	if defaults.ShutdownGrace != nil {
		opts.grace = defaults.ShutdownGrace.Duration
	}
	if defaults.OutputDir != nil {
		opts.outputDir = *defaults.OutputDir
	}
	if !changed("exclude") {
		for _, p := range defaults.Exclude {
			if err := opts.chain.AddExclude(p); err != nil {
				return fmt.Errorf("config exclude: %w", err)
			}
		}
	}
	return nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
